package resume

import (
	"math"
	"sort"
	"strconv"
	"time"
)

// Bookkeeping keys that never count as meaningful borrower content.
var ignoredContentKeys = map[string]struct{}{
	"completenessPercent": {},
	"createdAt":           {},
	"updatedAt":           {},
	"masterProfileId":     {},
	"lastSyncedAt":        {},
	"customFields":        {},
}

// ParseCompletenessPercent reads a completeness percentage stored as
// number or string; anything else is 0.
func ParseCompletenessPercent(v any) int {
	switch t := v.(type) {
	case float64:
		if math.IsNaN(t) {
			return 0
		}
		return int(t)
	case int:
		return t
	case int64:
		return int(t)
	case string:
		parsed, err := strconv.ParseFloat(t, 64)
		if err != nil || math.IsNaN(parsed) {
			return 0
		}
		return int(parsed)
	default:
		return 0
	}
}

// HasMeaningfulContent reports whether a borrower resume carries any real
// data beyond bookkeeping fields.
func HasMeaningfulContent(content map[string]any) bool {
	for key, value := range content {
		if _, ignored := ignoredContentKeys[key]; ignored {
			continue
		}
		switch t := value.(type) {
		case nil:
			continue
		case []any:
			if len(t) > 0 {
				return true
			}
		case string:
			if trimmedNonEmpty(t) {
				return true
			}
		case float64, int, int64:
			return true
		case bool:
			return true
		case map[string]any:
			if len(t) > 0 {
				return true
			}
		}
	}
	return false
}

func trimmedNonEmpty(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return true
		}
	}
	return false
}

// Candidate is one existing borrower resume considered for copying into a
// newly created project.
type Candidate struct {
	ProjectID    string
	Content      map[string]any
	Completeness int
	LockedFields map[string]any
	CreatedBy    *string
	UpdatedAt    time.Time
}

// PickMostComplete selects the borrower resume to seed a new project
// with: most complete first, most recently updated as the tiebreak;
// resumes with actual content beat empty shells regardless of their
// stored completeness. Nil when there are no candidates.
func PickMostComplete(candidates []Candidate) *Candidate {
	if len(candidates) == 0 {
		return nil
	}

	sorted := make([]Candidate, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Completeness != sorted[j].Completeness {
			return sorted[i].Completeness > sorted[j].Completeness
		}
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	for i := range sorted {
		if sorted[i].Completeness > 0 && HasMeaningfulContent(sorted[i].Content) {
			return &sorted[i]
		}
	}
	for i := range sorted {
		if HasMeaningfulContent(sorted[i].Content) {
			return &sorted[i]
		}
	}
	return &sorted[0]
}
