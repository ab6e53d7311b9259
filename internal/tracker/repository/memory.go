package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/prioboard/prioboard-backend/internal/tracker/domain"
)

// MemoryRepo is an in-memory store with the same contract as Repo. It backs
// tests and the DSN-less development mode. Ids are monotonically increasing
// and never reused after deletion, matching the bigserial columns.
type MemoryRepo struct {
	mu         sync.Mutex
	projects   map[int64]*domain.Project
	costs      map[int64]*domain.Cost
	nextProjID int64
	nextCostID int64
}

// NewMemoryRepo creates an empty in-memory repository.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		projects:   make(map[int64]*domain.Project),
		costs:      make(map[int64]*domain.Cost),
		nextProjID: 1,
		nextCostID: 1,
	}
}

func (r *MemoryRepo) CreateProject(_ context.Context, fields domain.ProjectFields) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	p := &domain.Project{
		ID:                  r.nextProjID,
		Name:                fields.Name,
		ValueAdd:            copyFloat(fields.ValueAdd),
		ValueAddDescription: copyString(fields.ValueAddDescription),
		Priority:            0,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	r.nextProjID++
	r.projects[p.ID] = p
	return r.snapshotProject(p), nil
}

func (r *MemoryRepo) UpdateProject(_ context.Context, id int64, fields domain.ProjectFields) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.projects[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	p.Name = fields.Name
	p.ValueAdd = copyFloat(fields.ValueAdd)
	p.ValueAddDescription = copyString(fields.ValueAddDescription)
	p.UpdatedAt = time.Now().UTC()
	return r.snapshotProject(p), nil
}

func (r *MemoryRepo) DeleteProject(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.projects, id)
	for cid, c := range r.costs {
		if c.ProjectID == id {
			delete(r.costs, cid)
		}
	}
	return nil
}

func (r *MemoryRepo) CreateCost(_ context.Context, projectID int64, fields domain.CostFields) (*domain.Cost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.projects[projectID]; !ok {
		return nil, domain.ErrProjectMissing
	}
	c := &domain.Cost{
		ID:          r.nextCostID,
		ProjectID:   projectID,
		Description: fields.Description,
		Amount:      fields.Amount,
		CreatedAt:   time.Now().UTC(),
	}
	r.nextCostID++
	r.costs[c.ID] = c
	cc := *c
	return &cc, nil
}

func (r *MemoryRepo) UpdateCost(_ context.Context, id int64, fields domain.CostFields) (*domain.Cost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.costs[id]
	if !ok {
		return nil, domain.ErrCostNotFound
	}
	c.Description = fields.Description
	c.Amount = fields.Amount
	cc := *c
	return &cc, nil
}

func (r *MemoryRepo) GetCost(_ context.Context, id int64) (*domain.Cost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.costs[id]
	if !ok {
		return nil, domain.ErrCostNotFound
	}
	cc := *c
	return &cc, nil
}

func (r *MemoryRepo) DeleteCost(_ context.Context, id int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.costs[id]
	if !ok {
		return 0, domain.ErrCostNotFound
	}
	delete(r.costs, id)
	return c.ProjectID, nil
}

func (r *MemoryRepo) ListProjects(_ context.Context) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, *r.snapshotProject(p))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *MemoryRepo) Reorder(_ context.Context, ids []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, id := range ids {
		if p, ok := r.projects[id]; ok {
			p.Priority = i
		}
	}
	return nil
}

func (r *MemoryRepo) NormalizePriorities(_ context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ordered := make([]*domain.Project, 0, len(r.projects))
	for _, p := range r.projects {
		ordered = append(ordered, p)
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].Priority != ordered[j].Priority {
			return ordered[i].Priority < ordered[j].Priority
		}
		return ordered[i].ID < ordered[j].ID
	})

	changed := false
	for i, p := range ordered {
		if p.Priority != i {
			p.Priority = i
			changed = true
		}
	}
	return changed, nil
}

// snapshotProject returns a deep copy with costs and total cost attached,
// so callers never alias internal state.
func (r *MemoryRepo) snapshotProject(p *domain.Project) *domain.Project {
	cp := *p
	cp.ValueAdd = copyFloat(p.ValueAdd)
	cp.ValueAddDescription = copyString(p.ValueAddDescription)
	cp.Costs = r.costsOf(p.ID)
	cp.TotalCost = domain.TotalCost(cp.Costs)
	return &cp
}

func (r *MemoryRepo) costsOf(projectID int64) []domain.Cost {
	out := make([]domain.Cost, 0, 4)
	for _, c := range r.costs {
		if c.ProjectID == projectID {
			out = append(out, *c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func copyString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
