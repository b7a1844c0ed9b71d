package filter

import "sort"

type FieldType int

const (
	String FieldType = iota
	Number
	Time
	Bool
)

func (t FieldType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	case Time:
		return "time"
	case Bool:
		return "bool"
	}
	return "unknown"
}

// Field is a filterable and sortable field of a resource.
type Field struct {
	// Name used in kwargs.
	Name string
	// Key is the document path, Name when empty.
	Key  string
	Type FieldType
}

func (f Field) DocumentKey() string {
	if f.Key == "" {
		return f.Name
	}
	return f.Key
}

// Schema is the allow-list of fields of a resource type.
type Schema struct {
	fields map[string]Field
}

func NewSchema(fields ...Field) Schema {
	s := Schema{fields: make(map[string]Field, len(fields))}
	for _, f := range fields {
		s.fields[f.Name] = f
	}
	return s
}

func (s Schema) Field(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Fields returns the fields sorted by name.
func (s Schema) Fields() []Field {
	fields := make([]Field, 0, len(s.fields))
	for _, f := range s.fields {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool {
		return fields[i].Name < fields[j].Name
	})
	return fields
}
