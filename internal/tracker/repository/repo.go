package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prioboard/prioboard-backend/internal/tracker/domain"
)

const projectColumns = "id, name, value_add, value_add_description, priority, created_at, updated_at"

// Repo provides postgres persistence for projects and costs.
type Repo struct {
	db *pgxpool.Pool
}

// NewRepo creates a new postgres-backed repository.
func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{db: db}
}

// EnsureSchema creates the projects and costs tables when they do not exist.
// Costs are cascade-deleted with their owning project.
func (r *Repo) EnsureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS projects (
    id BIGSERIAL PRIMARY KEY,
    name TEXT NOT NULL,
    value_add DOUBLE PRECISION,
    value_add_description TEXT,
    priority INTEGER NOT NULL DEFAULT 0,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS costs (
    id BIGSERIAL PRIMARY KEY,
    project_id BIGINT NOT NULL REFERENCES projects (id) ON DELETE CASCADE,
    description TEXT NOT NULL,
    amount DOUBLE PRECISION NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS costs_project_id_idx ON costs (project_id);
`
	if _, err := r.db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// CreateProject inserts a new project. New projects start at priority 0; they
// are not appended at the end of the order (see docs on the compaction job).
func (r *Repo) CreateProject(ctx context.Context, fields domain.ProjectFields) (*domain.Project, error) {
	const q = `
INSERT INTO projects (name, value_add, value_add_description, priority)
VALUES ($1, $2, $3, 0)
RETURNING ` + projectColumns + `;
`
	var p domain.Project
	err := r.db.QueryRow(ctx, q, fields.Name, fields.ValueAdd, fields.ValueAddDescription).
		Scan(&p.ID, &p.Name, &p.ValueAdd, &p.ValueAddDescription, &p.Priority, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}
	p.Costs = []domain.Cost{}
	return &p, nil
}

// UpdateProject replaces the project's mutable fields and returns the project
// with its current costs and total cost.
func (r *Repo) UpdateProject(ctx context.Context, id int64, fields domain.ProjectFields) (*domain.Project, error) {
	const q = `
UPDATE projects
SET name = $2, value_add = $3, value_add_description = $4, updated_at = now()
WHERE id = $1
RETURNING ` + projectColumns + `;
`
	var p domain.Project
	err := r.db.QueryRow(ctx, q, id, fields.Name, fields.ValueAdd, fields.ValueAddDescription).
		Scan(&p.ID, &p.Name, &p.ValueAdd, &p.ValueAddDescription, &p.Priority, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProjectNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}

	costs, err := r.costsFor(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Costs = costs
	p.TotalCost = domain.TotalCost(costs)
	return &p, nil
}

// DeleteProject removes a project and, via the FK cascade, all its costs.
// Deleting an absent id is not an error.
func (r *Repo) DeleteProject(ctx context.Context, id int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	return nil
}

// CreateCost inserts a new cost for the given project.
func (r *Repo) CreateCost(ctx context.Context, projectID int64, fields domain.CostFields) (*domain.Cost, error) {
	const q = `
INSERT INTO costs (project_id, description, amount)
VALUES ($1, $2, $3)
RETURNING id, project_id, description, amount, created_at;
`
	var c domain.Cost
	err := r.db.QueryRow(ctx, q, projectID, fields.Description, fields.Amount).
		Scan(&c.ID, &c.ProjectID, &c.Description, &c.Amount, &c.CreatedAt)
	if err != nil {
		// foreign key violation → project does not exist
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return nil, domain.ErrProjectMissing
		}
		return nil, fmt.Errorf("create cost: %w", err)
	}
	return &c, nil
}

// UpdateCost replaces the cost's description and amount.
func (r *Repo) UpdateCost(ctx context.Context, id int64, fields domain.CostFields) (*domain.Cost, error) {
	const q = `
UPDATE costs
SET description = $2, amount = $3
WHERE id = $1
RETURNING id, project_id, description, amount, created_at;
`
	var c domain.Cost
	err := r.db.QueryRow(ctx, q, id, fields.Description, fields.Amount).
		Scan(&c.ID, &c.ProjectID, &c.Description, &c.Amount, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCostNotFound
		}
		return nil, fmt.Errorf("update cost: %w", err)
	}
	return &c, nil
}

// GetCost returns a single cost by id.
func (r *Repo) GetCost(ctx context.Context, id int64) (*domain.Cost, error) {
	const q = `SELECT id, project_id, description, amount, created_at FROM costs WHERE id = $1;`
	var c domain.Cost
	err := r.db.QueryRow(ctx, q, id).
		Scan(&c.ID, &c.ProjectID, &c.Description, &c.Amount, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrCostNotFound
		}
		return nil, fmt.Errorf("get cost: %w", err)
	}
	return &c, nil
}

// DeleteCost removes a cost and returns the owning project's id, which the
// cost_deleted event payload needs.
func (r *Repo) DeleteCost(ctx context.Context, id int64) (int64, error) {
	const q = `DELETE FROM costs WHERE id = $1 RETURNING project_id;`
	var projectID int64
	err := r.db.QueryRow(ctx, q, id).Scan(&projectID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrCostNotFound
		}
		return 0, fmt.Errorf("delete cost: %w", err)
	}
	return projectID, nil
}

// ListProjects returns every project with its costs, ordered by
// (priority ASC, id ASC). The id tie-break keeps reads deterministic when
// an incomplete reorder has left duplicate priorities behind.
func (r *Repo) ListProjects(ctx context.Context) ([]domain.Project, error) {
	const q = `SELECT ` + projectColumns + ` FROM projects ORDER BY priority ASC, id ASC;`
	rows, err := r.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Project, 0, 16)
	index := make(map[int64]int)
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(&p.ID, &p.Name, &p.ValueAdd, &p.ValueAddDescription, &p.Priority, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		p.Costs = []domain.Cost{}
		index[p.ID] = len(out)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const cq = `SELECT id, project_id, description, amount, created_at FROM costs ORDER BY id ASC;`
	crows, err := r.db.Query(ctx, cq)
	if err != nil {
		return nil, fmt.Errorf("list costs: %w", err)
	}
	defer crows.Close()

	for crows.Next() {
		var c domain.Cost
		if err := crows.Scan(&c.ID, &c.ProjectID, &c.Description, &c.Amount, &c.CreatedAt); err != nil {
			return nil, err
		}
		if i, ok := index[c.ProjectID]; ok {
			out[i].Costs = append(out[i].Costs, c)
		}
	}
	if err := crows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		out[i].TotalCost = domain.TotalCost(out[i].Costs)
	}
	return out, nil
}

// Reorder assigns priority = index for every id in the given sequence, inside
// one transaction; a torn order must never become visible. Ids absent from the
// sequence keep their current priority.
func (r *Repo) Reorder(ctx context.Context, ids []int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("reorder begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for i, id := range ids {
		if _, err := tx.Exec(ctx, `UPDATE projects SET priority = $1 WHERE id = $2`, i, id); err != nil {
			return fmt.Errorf("reorder update: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("reorder commit: %w", err)
	}
	return nil
}

// NormalizePriorities renumbers all projects to a dense 0..N-1 sequence
// following the current (priority, id) order. The visible order is unchanged;
// only duplicate or gapped priorities left behind by incomplete reorders are
// repaired. Reports whether any row changed.
func (r *Repo) NormalizePriorities(ctx context.Context) (bool, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("normalize begin: %w", err)
	}
	defer tx.Rollback(ctx)

	rows, err := tx.Query(ctx, `SELECT id FROM projects ORDER BY priority ASC, id ASC`)
	if err != nil {
		return false, fmt.Errorf("normalize select: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return false, err
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return false, err
	}

	changed := false
	for i, id := range ids {
		tag, err := tx.Exec(ctx, `UPDATE projects SET priority = $1 WHERE id = $2 AND priority <> $1`, i, id)
		if err != nil {
			return false, fmt.Errorf("normalize update: %w", err)
		}
		if tag.RowsAffected() > 0 {
			changed = true
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("normalize commit: %w", err)
	}
	return changed, nil
}

func (r *Repo) costsFor(ctx context.Context, projectID int64) ([]domain.Cost, error) {
	const q = `SELECT id, project_id, description, amount, created_at FROM costs WHERE project_id = $1 ORDER BY id ASC;`
	rows, err := r.db.Query(ctx, q, projectID)
	if err != nil {
		return nil, fmt.Errorf("costs for project: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Cost, 0, 8)
	for rows.Next() {
		var c domain.Cost
		if err := rows.Scan(&c.ID, &c.ProjectID, &c.Description, &c.Amount, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
