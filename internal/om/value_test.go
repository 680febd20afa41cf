package om

import "testing"

func TestValueUnwrapsRichShape(t *testing.T) {
	c := Content{
		"raw": 5.0,
		"rich": map[string]any{
			"value":  5.0,
			"source": map[string]any{"type": "document", "name": "om.pdf"},
		},
	}

	if got := Value(c, "raw"); got != 5.0 {
		t.Fatalf("raw value: got %v", got)
	}
	if got := Value(c, "rich"); got != 5.0 {
		t.Fatalf("rich value: got %v", got)
	}
	if got := Value(c, "missing"); got != nil {
		t.Fatalf("missing field: got %v", got)
	}
	if got := Value(nil, "raw"); got != nil {
		t.Fatalf("nil content: got %v", got)
	}
}

func TestNumberReadsBothShapes(t *testing.T) {
	c := Content{
		"flat":   62.0,
		"string": "62%",
		"rich":   map[string]any{"value": "62%"},
	}
	for _, field := range []string{"flat", "string", "rich"} {
		got := Number(c, field)
		if got == nil || *got != 62 {
			t.Fatalf("%s: got %v, want 62", field, got)
		}
	}
	if got := Number(c, "missing"); got != nil {
		t.Fatalf("missing: got %v", *got)
	}
}

func TestString(t *testing.T) {
	c := Content{
		"name":   "Riverside Commons",
		"empty":  "",
		"number": 5.0,
	}
	if got := String(c, "name"); got == nil || *got != "Riverside Commons" {
		t.Fatalf("name: got %v", got)
	}
	if got := String(c, "empty"); got != nil {
		t.Fatalf("empty string should read as nil, got %q", *got)
	}
	if got := String(c, "number"); got != nil {
		t.Fatalf("non-string should read as nil, got %q", *got)
	}
}

func TestSlice(t *testing.T) {
	c := Content{
		"arr":  []any{1.0, 2.0},
		"rich": map[string]any{"value": []any{"a"}},
		"str":  "not an array",
	}
	if got := Slice(c, "arr"); len(got) != 2 {
		t.Fatalf("arr: got %v", got)
	}
	if got := Slice(c, "rich"); len(got) != 1 {
		t.Fatalf("rich arr: got %v", got)
	}
	if got := Slice(c, "str"); got != nil {
		t.Fatalf("non-array: got %v", got)
	}
}

func TestFirstNumberPrecedence(t *testing.T) {
	a, b := 1.0, 2.0
	if got := firstNumber(nil, &a, &b); got != &a {
		t.Fatalf("expected first non-nil pointer")
	}
	if got := firstNumber(nil, nil); got != nil {
		t.Fatalf("all nil should yield nil, got %v", *got)
	}
}
