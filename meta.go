package extract

// Meta is an opt-in side channel for parsed instances. Embed it in a
// target type to receive a back-reference to the originating [Response]
// after a successful [Parse]:
//
//	type Person struct {
//	    extract.Meta
//	    Name string `json:"name"`
//	}
//
//	person, _ := extract.Parse[Person](resp, extract.ModeToolCall)
//	person.Raw() // the *Response that produced this instance
//
// Meta holds no exported fields, so it never appears in the type's JSON
// serialization or derived schema. The reference is set once at
// construction and never reassigned.
type Meta struct {
	raw *Response
}

// Raw returns the response this instance was parsed from, or nil if the
// instance was not produced by Parse.
func (m *Meta) Raw() *Response {
	return m.raw
}

func (m *Meta) attach(r *Response) {
	if m.raw == nil {
		m.raw = r
	}
}

// metaCarrier is satisfied by pointers to types embedding Meta.
type metaCarrier interface {
	attach(*Response)
}
