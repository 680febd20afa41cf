package storage

import (
	"context"

	"dealdesk/internal"
)

// Store is the per-project document store behind the normalizer and the
// resume services. Get methods return (nil, nil) when no row exists:
// absence is a normal state, not an error.
type Store interface {
	UpsertProject(ctx context.Context, p internal.ProjectRecord) error
	GetProject(ctx context.Context, id string) (*internal.ProjectRecord, error)
	ListProjectsByOrg(ctx context.Context, orgID string) ([]internal.ProjectRecord, error)

	SaveOMContent(ctx context.Context, projectID string, content map[string]any) error
	GetOMContent(ctx context.Context, projectID string) (map[string]any, error)

	SaveBorrowerResume(ctx context.Context, row internal.ResumeRow) error
	GetBorrowerResume(ctx context.Context, projectID string) (*internal.ResumeRow, error)
	ListBorrowerResumesByOrg(ctx context.Context, orgID, excludeProjectID string) ([]internal.ResumeRow, error)

	SaveProjectResume(ctx context.Context, row internal.ResumeRow) error
	GetProjectResume(ctx context.Context, projectID string) (*internal.ResumeRow, error)

	Close() error
}
