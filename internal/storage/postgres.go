package storage

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"dealdesk/internal"
)

// Postgres is the hosted-store driver. The production platform keeps its
// documents in a managed Postgres; this driver speaks to the same tables
// the SQLite driver mirrors locally.
type Postgres struct {
	pool *pgxpool.Pool
}

func OpenPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, err
	}
	p := &Postgres{pool: pool}
	if err := p.init(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return p, nil
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func (p *Postgres) init(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  owner_org_id TEXT NOT NULL,
  assigned_advisor_id TEXT,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_projects_org ON projects(owner_org_id);

CREATE TABLE IF NOT EXISTS om_contents (
  project_id TEXT PRIMARY KEY REFERENCES projects(id),
  content JSONB NOT NULL,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS borrower_resumes (
  project_id TEXT PRIMARY KEY REFERENCES projects(id),
  content JSONB NOT NULL,
  completeness_percent INTEGER NOT NULL DEFAULT 0,
  locked_fields JSONB,
  created_by TEXT,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS project_resumes (
  project_id TEXT PRIMARY KEY REFERENCES projects(id),
  content JSONB NOT NULL,
  completeness_percent INTEGER NOT NULL DEFAULT 0,
  locked_fields JSONB,
  created_by TEXT,
  updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
	_, err := p.pool.Exec(ctx, schema)
	return err
}

func (p *Postgres) UpsertProject(ctx context.Context, rec internal.ProjectRecord) error {
	_, err := p.pool.Exec(ctx, `
INSERT INTO projects (id, name, owner_org_id, assigned_advisor_id)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO UPDATE SET
  name = excluded.name,
  owner_org_id = excluded.owner_org_id,
  assigned_advisor_id = excluded.assigned_advisor_id,
  updated_at = now()
`, rec.ID, rec.Name, rec.OwnerOrgID, rec.AssignedAdvisorID)
	return err
}

func (p *Postgres) GetProject(ctx context.Context, id string) (*internal.ProjectRecord, error) {
	var rec internal.ProjectRecord
	err := p.pool.QueryRow(ctx, `
SELECT id, name, owner_org_id, assigned_advisor_id, created_at::text, updated_at::text
FROM projects WHERE id = $1
`, id).Scan(&rec.ID, &rec.Name, &rec.OwnerOrgID, &rec.AssignedAdvisorID, &rec.CreatedAt, &rec.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (p *Postgres) ListProjectsByOrg(ctx context.Context, orgID string) ([]internal.ProjectRecord, error) {
	rows, err := p.pool.Query(ctx, `
SELECT id, name, owner_org_id, assigned_advisor_id, created_at::text, updated_at::text
FROM projects WHERE owner_org_id = $1 ORDER BY created_at ASC
`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ProjectRecord
	for rows.Next() {
		var rec internal.ProjectRecord
		if err := rows.Scan(&rec.ID, &rec.Name, &rec.OwnerOrgID, &rec.AssignedAdvisorID, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) SaveOMContent(ctx context.Context, projectID string, content map[string]any) error {
	blob, err := json.Marshal(content)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO om_contents (project_id, content) VALUES ($1, $2)
ON CONFLICT (project_id) DO UPDATE SET
  content = excluded.content,
  updated_at = now()
`, projectID, blob)
	return err
}

func (p *Postgres) GetOMContent(ctx context.Context, projectID string) (map[string]any, error) {
	var blob []byte
	err := p.pool.QueryRow(ctx, `SELECT content FROM om_contents WHERE project_id = $1`, projectID).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var content map[string]any
	if err := json.Unmarshal(blob, &content); err != nil {
		return nil, err
	}
	return content, nil
}

func (p *Postgres) SaveBorrowerResume(ctx context.Context, row internal.ResumeRow) error {
	return p.saveResume(ctx, "borrower_resumes", row)
}

func (p *Postgres) GetBorrowerResume(ctx context.Context, projectID string) (*internal.ResumeRow, error) {
	return p.getResume(ctx, "borrower_resumes", projectID)
}

func (p *Postgres) SaveProjectResume(ctx context.Context, row internal.ResumeRow) error {
	return p.saveResume(ctx, "project_resumes", row)
}

func (p *Postgres) GetProjectResume(ctx context.Context, projectID string) (*internal.ResumeRow, error) {
	return p.getResume(ctx, "project_resumes", projectID)
}

func (p *Postgres) saveResume(ctx context.Context, table string, row internal.ResumeRow) error {
	contentBlob, err := json.Marshal(row.Content)
	if err != nil {
		return err
	}
	var lockedBlob []byte
	if row.LockedFields != nil {
		lockedBlob, err = json.Marshal(row.LockedFields)
		if err != nil {
			return err
		}
	}
	_, err = p.pool.Exec(ctx, `
INSERT INTO `+table+` (project_id, content, completeness_percent, locked_fields, created_by)
VALUES ($1, $2, $3, $4, $5)
ON CONFLICT (project_id) DO UPDATE SET
  content = excluded.content,
  completeness_percent = excluded.completeness_percent,
  locked_fields = excluded.locked_fields,
  created_by = excluded.created_by,
  updated_at = now()
`, row.ProjectID, contentBlob, row.CompletenessPercent, lockedBlob, row.CreatedBy)
	return err
}

func (p *Postgres) getResume(ctx context.Context, table, projectID string) (*internal.ResumeRow, error) {
	var row internal.ResumeRow
	var contentBlob []byte
	var lockedBlob []byte
	err := p.pool.QueryRow(ctx, `
SELECT project_id, content, completeness_percent, locked_fields, created_by, updated_at::text
FROM `+table+` WHERE project_id = $1
`, projectID).Scan(&row.ProjectID, &contentBlob, &row.CompletenessPercent, &lockedBlob, &row.CreatedBy, &row.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(contentBlob, &row.Content); err != nil {
		return nil, err
	}
	if lockedBlob != nil {
		_ = json.Unmarshal(lockedBlob, &row.LockedFields)
	}
	return &row, nil
}

func (p *Postgres) ListBorrowerResumesByOrg(ctx context.Context, orgID, excludeProjectID string) ([]internal.ResumeRow, error) {
	rows, err := p.pool.Query(ctx, `
SELECT r.project_id, r.content, r.completeness_percent, r.locked_fields, r.created_by, r.updated_at::text
FROM borrower_resumes r
JOIN projects p ON p.id = r.project_id
WHERE p.owner_org_id = $1 AND r.project_id != $2
`, orgID, excludeProjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ResumeRow
	for rows.Next() {
		var row internal.ResumeRow
		var contentBlob []byte
		var lockedBlob []byte
		if err := rows.Scan(&row.ProjectID, &contentBlob, &row.CompletenessPercent, &lockedBlob, &row.CreatedBy, &row.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(contentBlob, &row.Content); err != nil {
			return nil, err
		}
		if lockedBlob != nil {
			_ = json.Unmarshal(lockedBlob, &row.LockedFields)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
