package internal

// Shared records exchanged between the store, the normalizer and the
// command/serve layers. JSON documents (OM content, resumes) stay loosely
// typed maps end to end; only row-level bookkeeping is typed here.

type ProjectRecord struct {
	ID                string
	Name              string
	OwnerOrgID        string
	AssignedAdvisorID *string
	CreatedAt         string
	UpdatedAt         string
}

// ResumeRow backs both borrower and project resumes. CompletenessPercent and
// LockedFields live in columns, not inside Content.
type ResumeRow struct {
	ProjectID           string
	Content             map[string]any
	CompletenessPercent int
	LockedFields        map[string]any
	CreatedBy           *string
	UpdatedAt           string
}
