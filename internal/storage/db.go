package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"dealdesk/internal"
)

// DB is the SQLite-backed store used for local development and tests.
type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS projects (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  ownerOrgId TEXT NOT NULL,
  assignedAdvisorId TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_projects_org ON projects(ownerOrgId);

CREATE TABLE IF NOT EXISTS om_contents (
  projectId TEXT PRIMARY KEY,
  content TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(projectId) REFERENCES projects(id)
);

CREATE TABLE IF NOT EXISTS borrower_resumes (
  projectId TEXT PRIMARY KEY,
  content TEXT NOT NULL,
  completenessPercent INTEGER NOT NULL DEFAULT 0,
  lockedFields TEXT,
  createdBy TEXT,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(projectId) REFERENCES projects(id)
);

CREATE TABLE IF NOT EXISTS project_resumes (
  projectId TEXT PRIMARY KEY,
  content TEXT NOT NULL,
  completenessPercent INTEGER NOT NULL DEFAULT 0,
  lockedFields TEXT,
  createdBy TEXT,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(projectId) REFERENCES projects(id)
);
`

	_, err := d.conn.Exec(schema)
	return err
}

func (d *DB) UpsertProject(ctx context.Context, p internal.ProjectRecord) error {
	_, err := d.conn.ExecContext(ctx, `
INSERT INTO projects (id, name, ownerOrgId, assignedAdvisorId)
VALUES (?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  name=excluded.name,
  ownerOrgId=excluded.ownerOrgId,
  assignedAdvisorId=excluded.assignedAdvisorId,
  updatedAt=CURRENT_TIMESTAMP
`, p.ID, p.Name, p.OwnerOrgID, p.AssignedAdvisorID)
	return err
}

func (d *DB) GetProject(ctx context.Context, id string) (*internal.ProjectRecord, error) {
	var p internal.ProjectRecord
	err := d.conn.QueryRowContext(ctx, `
SELECT id, name, ownerOrgId, assignedAdvisorId, createdAt, updatedAt
FROM projects WHERE id = ?
`, id).Scan(&p.ID, &p.Name, &p.OwnerOrgID, &p.AssignedAdvisorID, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DB) ListProjectsByOrg(ctx context.Context, orgID string) ([]internal.ProjectRecord, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT id, name, ownerOrgId, assignedAdvisorId, createdAt, updatedAt
FROM projects WHERE ownerOrgId = ? ORDER BY createdAt ASC
`, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ProjectRecord
	for rows.Next() {
		var p internal.ProjectRecord
		if err := rows.Scan(&p.ID, &p.Name, &p.OwnerOrgID, &p.AssignedAdvisorID, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (d *DB) SaveOMContent(ctx context.Context, projectID string, content map[string]any) error {
	blob, err := json.Marshal(content)
	if err != nil {
		return err
	}
	_, err = d.conn.ExecContext(ctx, `
INSERT INTO om_contents (projectId, content) VALUES (?, ?)
ON CONFLICT(projectId) DO UPDATE SET
  content=excluded.content,
  updatedAt=CURRENT_TIMESTAMP
`, projectID, string(blob))
	return err
}

func (d *DB) GetOMContent(ctx context.Context, projectID string) (map[string]any, error) {
	var blob string
	err := d.conn.QueryRowContext(ctx, `SELECT content FROM om_contents WHERE projectId = ?`, projectID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var content map[string]any
	if err := json.Unmarshal([]byte(blob), &content); err != nil {
		return nil, err
	}
	return content, nil
}

func (d *DB) SaveBorrowerResume(ctx context.Context, row internal.ResumeRow) error {
	return d.saveResume(ctx, "borrower_resumes", row)
}

func (d *DB) GetBorrowerResume(ctx context.Context, projectID string) (*internal.ResumeRow, error) {
	return d.getResume(ctx, "borrower_resumes", projectID)
}

func (d *DB) SaveProjectResume(ctx context.Context, row internal.ResumeRow) error {
	return d.saveResume(ctx, "project_resumes", row)
}

func (d *DB) GetProjectResume(ctx context.Context, projectID string) (*internal.ResumeRow, error) {
	return d.getResume(ctx, "project_resumes", projectID)
}

func (d *DB) saveResume(ctx context.Context, table string, row internal.ResumeRow) error {
	contentBlob, err := json.Marshal(row.Content)
	if err != nil {
		return err
	}
	var lockedBlob *string
	if row.LockedFields != nil {
		blob, err := json.Marshal(row.LockedFields)
		if err != nil {
			return err
		}
		s := string(blob)
		lockedBlob = &s
	}
	_, err = d.conn.ExecContext(ctx, `
INSERT INTO `+table+` (projectId, content, completenessPercent, lockedFields, createdBy)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(projectId) DO UPDATE SET
  content=excluded.content,
  completenessPercent=excluded.completenessPercent,
  lockedFields=excluded.lockedFields,
  createdBy=excluded.createdBy,
  updatedAt=CURRENT_TIMESTAMP
`, row.ProjectID, string(contentBlob), row.CompletenessPercent, lockedBlob, row.CreatedBy)
	return err
}

func (d *DB) getResume(ctx context.Context, table, projectID string) (*internal.ResumeRow, error) {
	var row internal.ResumeRow
	var contentBlob string
	var lockedBlob *string
	err := d.conn.QueryRowContext(ctx, `
SELECT projectId, content, completenessPercent, lockedFields, createdBy, updatedAt
FROM `+table+` WHERE projectId = ?
`, projectID).Scan(&row.ProjectID, &contentBlob, &row.CompletenessPercent, &lockedBlob, &row.CreatedBy, &row.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(contentBlob), &row.Content); err != nil {
		return nil, err
	}
	if lockedBlob != nil {
		_ = json.Unmarshal([]byte(*lockedBlob), &row.LockedFields)
	}
	return &row, nil
}

func (d *DB) ListBorrowerResumesByOrg(ctx context.Context, orgID, excludeProjectID string) ([]internal.ResumeRow, error) {
	rows, err := d.conn.QueryContext(ctx, `
SELECT r.projectId, r.content, r.completenessPercent, r.lockedFields, r.createdBy, r.updatedAt
FROM borrower_resumes r
JOIN projects p ON p.id = r.projectId
WHERE p.ownerOrgId = ? AND r.projectId != ?
`, orgID, excludeProjectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.ResumeRow
	for rows.Next() {
		var row internal.ResumeRow
		var contentBlob string
		var lockedBlob *string
		if err := rows.Scan(&row.ProjectID, &contentBlob, &row.CompletenessPercent, &lockedBlob, &row.CreatedBy, &row.UpdatedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(contentBlob), &row.Content); err != nil {
			return nil, err
		}
		if lockedBlob != nil {
			_ = json.Unmarshal([]byte(*lockedBlob), &row.LockedFields)
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
