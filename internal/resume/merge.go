// Package resume handles borrower and project resume content: merging
// partial updates into stored documents while keeping every field in the
// rich {value, source, warnings, other_values} format, and selecting the
// best existing borrower resume when provisioning a new project.
package resume

import "strings"

// Root-level keys that pass through merges un-wrapped: grouping
// sub-objects and anything underscore-prefixed.
func isRootKey(key string) bool {
	return strings.HasPrefix(key, "_") || key == "projectSections" || key == "borrowerSections"
}

// NormalizeSource coerces the legacy source shapes into the canonical
// source object:
//
//	nil                      -> {type: "user_input"}
//	{type: ..., ...}         -> passed through
//	["user_input"]           -> {type: "user_input"}
//	["document.pdf"]         -> {type: "document", name: "document.pdf"}
//	"user_input"             -> {type: "user_input"}
//	"document.pdf"           -> {type: "document", name: "document.pdf"}
func NormalizeSource(input any) map[string]any {
	switch t := input.(type) {
	case nil:
		return userInputSource()
	case map[string]any:
		if _, ok := t["type"]; ok {
			return t
		}
	case []any:
		if len(t) == 0 {
			break
		}
		if m, ok := t[0].(map[string]any); ok {
			if _, ok := m["type"]; ok {
				return m
			}
		}
		if s, ok := t[0].(string); ok {
			return classifySource(s)
		}
	case string:
		if t != "" {
			return classifySource(t)
		}
	}
	return userInputSource()
}

func classifySource(s string) map[string]any {
	normalized := strings.ToLower(strings.TrimSpace(s))
	if normalized == "user_input" || normalized == "user input" {
		return userInputSource()
	}
	return map[string]any{"type": "document", "name": s}
}

func userInputSource() map[string]any {
	return map[string]any{"type": "user_input"}
}

// FieldMeta is per-field extraction metadata sent alongside updates.
type FieldMeta struct {
	Source      any
	Warnings    []any
	OtherValues []any
}

func metaFor(metadata map[string]any, key string) FieldMeta {
	m := metadata[key]
	meta, ok := m.(map[string]any)
	if !ok {
		return FieldMeta{}
	}
	out := FieldMeta{Source: meta["source"]}
	if out.Source == nil {
		if sources, ok := meta["sources"].([]any); ok && len(sources) > 0 {
			out.Source = sources[0]
		}
	}
	out.Warnings, _ = meta["warnings"].([]any)
	out.OtherValues, _ = meta["other_values"].([]any)
	return out
}

func richField(value, sourceInput any, warnings, otherValues []any) map[string]any {
	if warnings == nil {
		warnings = []any{}
	}
	if otherValues == nil {
		otherValues = []any{}
	}
	return map[string]any{
		"value":        value,
		"source":       NormalizeSource(sourceInput),
		"warnings":     warnings,
		"other_values": otherValues,
	}
}

func isRichField(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	if !ok || m == nil {
		return nil, false
	}
	if _, ok := m["value"]; ok {
		return m, true
	}
	if _, ok := m["source"]; ok {
		return m, true
	}
	if _, ok := m["sources"]; ok {
		return m, true
	}
	return nil, false
}

func primarySource(rich map[string]any) any {
	if src := rich["source"]; src != nil {
		return src
	}
	if sources, ok := rich["sources"].([]any); ok && len(sources) > 0 {
		return sources[0]
	}
	return nil
}

// MergeUpdates merges partial resume updates into existing content.
// Every non-root field of the result is in rich format; fields absent
// from the updates are carried over from existing content, normalized on
// the way through. When metadata carries per-field source info it wins;
// otherwise an updated field keeps the source already stored for it.
// Returns the merged content and the extracted _lockedFields value, if
// the updates carried one.
func MergeUpdates(existing, updates, metadata map[string]any) (map[string]any, any) {
	final := map[string]any{}
	rootKeys := map[string]any{}

	for key, value := range updates {
		if key == "_metadata" {
			continue
		}
		if isRootKey(key) {
			rootKeys[key] = value
		}
	}

	for key, value := range updates {
		if key == "_metadata" || isRootKey(key) {
			continue
		}

		if metadata != nil {
			meta := metaFor(metadata, key)
			final[key] = richField(value, meta.Source, meta.Warnings, meta.OtherValues)
			continue
		}

		// No metadata: keep whatever source the field already carries.
		if rich, ok := isRichField(existing[key]); ok {
			warnings, _ := rich["warnings"].([]any)
			others, _ := rich["other_values"].([]any)
			final[key] = richField(value, primarySource(rich), warnings, others)
		} else {
			final[key] = richField(value, nil, nil, nil)
		}
	}

	// Carry over fields the updates did not touch.
	for key, value := range existing {
		if _, ok := final[key]; ok {
			continue
		}
		if _, ok := rootKeys[key]; ok {
			continue
		}
		if isRootKey(key) {
			rootKeys[key] = value
			continue
		}

		if rich, ok := isRichField(value); ok {
			warnings, _ := rich["warnings"].([]any)
			others, _ := rich["other_values"].([]any)
			final[key] = richField(rich["value"], primarySource(rich), warnings, others)
		} else if value != nil {
			if _, isMap := value.(map[string]any); !isMap {
				final[key] = richField(value, nil, nil, nil)
			} else {
				// A sub-object without value/source metadata: keep as-is.
				final[key] = value
			}
		} else {
			final[key] = value
		}
	}

	lockedFields := rootKeys["_lockedFields"]
	delete(rootKeys, "_lockedFields")

	merged := make(map[string]any, len(rootKeys)+len(final))
	for key, value := range rootKeys {
		merged[key] = value
	}
	for key, value := range final {
		merged[key] = value
	}

	return merged, lockedFields
}
