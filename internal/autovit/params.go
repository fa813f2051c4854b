package autovit

// Field selects which side of a parameter entry to read.
type Field string

const (
	FieldLabel Field = "label"
	FieldValue Field = "value"
)

// Parameters wraps the advert's parametersDict. Every scalar vehicle
// attribute is read through it.
type Parameters struct {
	dict Node
}

func NewParameters(advert Node) Parameters {
	return Parameters{dict: advert.Get("parametersDict")}
}

// Param returns the first entry's field for key. It reports false when the
// key is missing, has no values, or the field is empty.
func (p Parameters) Param(key string, field Field) (string, bool) {
	return p.dict.Get(key, "values").Index(0).Get(string(field)).Text()
}

func (p Parameters) Label(key string) *string {
	if s, ok := p.Param(key, FieldLabel); ok {
		return &s
	}
	return nil
}

func (p Parameters) Value(key string) *string {
	if s, ok := p.Param(key, FieldValue); ok {
		return &s
	}
	return nil
}
