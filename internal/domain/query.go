package domain

// Query is an optional single equality filter over a collection.
// An empty Field matches every document.
type Query struct {
	Field string
	Value any
	Limit int
}

func (q Query) Matches(f Fields) bool {
	if q.Field == "" {
		return true
	}
	v, ok := f[q.Field]
	return ok && ValuesEqual(v, q.Value)
}
