package om

// Content is a flat offering-memorandum record keyed by camelCase field
// name. A field value is either a raw scalar or a rich object of shape
// {value: <scalar>, ...sourceMetadata}; both shapes must be readable
// interchangeably, so every read goes through Value and collapses to a
// plain scalar immediately.
type Content map[string]any

// Value returns the scalar behind a field, unwrapping the rich
// {value, ...} shape when present.
func Value(c Content, field string) any {
	if c == nil {
		return nil
	}
	raw, ok := c[field]
	if !ok {
		return nil
	}
	return unwrap(raw)
}

// Number reads a field as a numeric value, nil when absent or unparseable.
func Number(c Content, field string) *float64 {
	return ParseNumeric(Value(c, field))
}

// String reads a field as a non-empty string, nil otherwise.
func String(c Content, field string) *string {
	s, ok := Value(c, field).(string)
	if !ok || s == "" {
		return nil
	}
	return &s
}

// Slice reads a field as an array, nil when it is anything else.
func Slice(c Content, field string) []any {
	arr, ok := Value(c, field).([]any)
	if !ok {
		return nil
	}
	return arr
}

func unwrap(raw any) any {
	if m, ok := raw.(map[string]any); ok {
		if inner, ok := m["value"]; ok {
			return inner
		}
	}
	return raw
}

// sections returns the legacy projectSections sub-object, nil when absent.
func sections(c Content) map[string]any {
	if c == nil {
		return nil
	}
	return mapOf(c["projectSections"])
}

func mapOf(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func sliceOf(v any) []any {
	arr, _ := v.([]any)
	return arr
}

// sectionNumber reads a numeric field from a nested section map, tolerating
// the rich shape the same way Value does.
func sectionNumber(section map[string]any, field string) *float64 {
	if section == nil {
		return nil
	}
	return ParseNumeric(unwrap(section[field]))
}

func sectionValue(section map[string]any, field string) any {
	if section == nil {
		return nil
	}
	return unwrap(section[field])
}

// firstNumber implements the documented precedence order: callers list
// explicit flat fields first, projectSections fallbacks last.
func firstNumber(vals ...*float64) *float64 {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}

func firstValue(vals ...any) any {
	for _, v := range vals {
		if v != nil {
			return v
		}
	}
	return nil
}
