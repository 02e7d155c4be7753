package validation

// Predicate is a pluggable per-field check run after the type check passes.
// It returns true when the raw field value is acceptable.
type Predicate func(value any) bool

// FieldSchema describes one field's contract within a message schema.
type FieldSchema struct {
	Name     string
	Type     FieldType
	Required bool
	Validate Predicate // optional; nil means type check only
}

// Schema is an ordered sequence of field contracts. Order defines evaluation
// order: the first failing field short-circuits and is the one reported.
type Schema []FieldSchema

// ValidateAgainstSchema walks the schema against a payload in declaration
// order. Required fields that are absent or null fail immediately; optional
// absent fields are skipped; present fields are type-checked and then run
// through their predicate, if any. No error aggregation is done.
func ValidateAgainstSchema(data map[string]any, schema Schema) Result {
	for _, field := range schema {
		value, present := data[field.Name]
		if !present || value == nil {
			if field.Required {
				return Reject("missing required field: %s", field.Name)
			}
			continue
		}

		actual, known := TypeOf(value)
		if !known {
			return Reject("field %s has unsupported type %T", field.Name, value)
		}
		if actual != field.Type {
			return Reject("field %s must be %s, got %s", field.Name, field.Type, actual)
		}

		if field.Validate != nil && !field.Validate(value) {
			return Reject("validation failed for field: %s", field.Name)
		}
	}
	return Accept()
}

// Registry maps symbolic schema names to message schemas. It is populated at
// process start, sealed, and read-only afterwards, so lookups need no
// locking. Register panics once the registry is sealed.
type Registry struct {
	schemas map[string]Schema
	sealed  bool
}

// NewRegistry creates an empty, unsealed Registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]Schema)}
}

// Register adds a schema under the given name. Re-registering a name replaces
// the previous schema. Calling Register on a sealed registry panics: the
// registry is fixed at startup by contract.
func (r *Registry) Register(name string, schema Schema) {
	if r.sealed {
		panic("validation: Register called on sealed registry")
	}
	r.schemas[name] = schema
}

// Seal marks the registry read-only. Call once startup registration is done.
func (r *Registry) Seal() {
	r.sealed = true
}

// Get returns the schema registered under name, if any.
func (r *Registry) Get(name string) (Schema, bool) {
	schema, ok := r.schemas[name]
	return schema, ok
}

// Validate looks up the named schema and evaluates the payload against it.
// An unknown schema name is a validation failure, not a panic.
func (r *Registry) Validate(name string, data map[string]any) Result {
	schema, ok := r.schemas[name]
	if !ok {
		return Reject("no schema registered for message type: %s", name)
	}
	return ValidateAgainstSchema(data, schema)
}
