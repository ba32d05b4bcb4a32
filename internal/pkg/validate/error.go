package validate

type FieldsError struct {
	Fields map[string]string
}

func NewFieldsError(fields map[string]string) *FieldsError {
	return &FieldsError{
		Fields: fields,
	}
}
func (f *FieldsError) Error() string {
	return "Fields error"
}

// Field returns the message recorded for name, if any.
func (f *FieldsError) Field(name string) (string, bool) {
	msg, ok := f.Fields[name]
	return msg, ok
}
