package schema

// Record holds decoded field values keyed by canonical field name.
// Values are string for KindString and KindEnum, bool for KindBool and
// []string for KindStringList.
type Record map[string]any

// String returns the string value of name, or "" if absent.
func (r Record) String(name string) string {
	s, _ := r[name].(string)
	return s
}

// Bool returns the boolean value of name, or false if absent.
func (r Record) Bool(name string) bool {
	b, _ := r[name].(bool)
	return b
}

// Strings returns the list value of name, or nil if absent.
func (r Record) Strings(name string) []string {
	l, _ := r[name].([]string)
	return l
}
