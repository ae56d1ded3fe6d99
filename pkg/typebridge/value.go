package typebridge

// Variant is the typed runtime representation of a variant value. Payload
// is nil when the matched case declares none.
type Variant struct {
	Case    string
	Payload interface{}
}

// Result is the typed runtime representation of a result<ok, err> value.
// Value is nil when the matched branch's type is absent.
type Result struct {
	Ok    bool
	Value interface{}
}

// Resource is an opaque handle to a component-model resource, identified
// by the exporting type's name and an implementation-defined handle id.
type Resource struct {
	TypeName string
	Handle   string
}
