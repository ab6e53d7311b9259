package service

import (
	"context"
	"log"

	"github.com/prioboard/prioboard-backend/internal/tracker/domain"
)

// Store is the persistence contract the service runs against. Both the
// postgres and the in-memory repositories implement it. Reorder and
// NormalizePriorities must be atomic: all priority updates apply or none do.
type Store interface {
	CreateProject(ctx context.Context, fields domain.ProjectFields) (*domain.Project, error)
	UpdateProject(ctx context.Context, id int64, fields domain.ProjectFields) (*domain.Project, error)
	DeleteProject(ctx context.Context, id int64) error
	CreateCost(ctx context.Context, projectID int64, fields domain.CostFields) (*domain.Cost, error)
	UpdateCost(ctx context.Context, id int64, fields domain.CostFields) (*domain.Cost, error)
	GetCost(ctx context.Context, id int64) (*domain.Cost, error)
	DeleteCost(ctx context.Context, id int64) (int64, error)
	ListProjects(ctx context.Context) ([]domain.Project, error)
	Reorder(ctx context.Context, ids []int64) error
	NormalizePriorities(ctx context.Context) (bool, error)
}

// Broadcaster publishes one event per committed mutation.
type Broadcaster interface {
	Publish(ctx context.Context, ev domain.Event) error
}

// TrackerService handles tracker business logic: it runs mutations against
// the store and, only after they succeed, broadcasts the matching event.
// A failed mutation changes nothing and emits nothing.
type TrackerService struct {
	store  Store
	events Broadcaster
}

// NewTrackerService creates a new TrackerService.
func NewTrackerService(store Store, events Broadcaster) *TrackerService {
	return &TrackerService{store: store, events: events}
}

// ListProjects returns the full ordered project list with nested costs and
// derived total costs.
func (s *TrackerService) ListProjects(ctx context.Context) ([]domain.Project, error) {
	return s.store.ListProjects(ctx)
}

// Summary recomputes the global aggregate from current state.
func (s *TrackerService) Summary(ctx context.Context) (domain.Summary, error) {
	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summarize(projects), nil
}

// CreateProject creates a project and broadcasts project_created.
func (s *TrackerService) CreateProject(ctx context.Context, fields domain.ProjectFields) (*domain.Project, error) {
	p, err := s.store.CreateProject(ctx, fields)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.ProjectCreated(p))
	return p, nil
}

// UpdateProject updates a project's fields and broadcasts project_updated
// with the project's current costs and total cost.
func (s *TrackerService) UpdateProject(ctx context.Context, id int64, fields domain.ProjectFields) (*domain.Project, error) {
	p, err := s.store.UpdateProject(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.ProjectUpdated(p))
	return p, nil
}

// DeleteProject deletes a project, cascading to its costs, and broadcasts
// project_deleted. Deleting an absent project succeeds silently.
func (s *TrackerService) DeleteProject(ctx context.Context, id int64) error {
	if err := s.store.DeleteProject(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, domain.ProjectDeleted(id))
	return nil
}

// CreateCost attaches a cost to a project and broadcasts cost_added.
func (s *TrackerService) CreateCost(ctx context.Context, projectID int64, fields domain.CostFields) (*domain.Cost, error) {
	c, err := s.store.CreateCost(ctx, projectID, fields)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.CostAdded(c))
	return c, nil
}

// UpdateCost updates a cost and broadcasts cost_updated.
func (s *TrackerService) UpdateCost(ctx context.Context, id int64, fields domain.CostFields) (*domain.Cost, error) {
	c, err := s.store.UpdateCost(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, domain.CostUpdated(c))
	return c, nil
}

// DeleteCost removes a cost and broadcasts cost_deleted with the owning
// project's id.
func (s *TrackerService) DeleteCost(ctx context.Context, id int64) error {
	projectID, err := s.store.DeleteCost(ctx, id)
	if err != nil {
		return err
	}
	s.publish(ctx, domain.CostDeleted(id, projectID))
	return nil
}

// Reorder atomically assigns priority = index for the supplied id sequence
// and broadcasts projects_reordered. Ids omitted from the sequence keep their
// current priority; the nightly compaction repairs any rank collisions that
// leaves behind.
func (s *TrackerService) Reorder(ctx context.Context, ids []int64) error {
	if err := s.store.Reorder(ctx, ids); err != nil {
		return err
	}
	s.publish(ctx, domain.ProjectsReordered())
	return nil
}

// MoveProject moves one project to the 1-based display position pos by
// computing the equivalent full reordering and delegating to Reorder.
// Positions past the end clamp to the last slot. A move to the project's
// current position is a no-op and emits no event. pos < 1 is rejected with
// ErrInvalidPosition before anything is written.
func (s *TrackerService) MoveProject(ctx context.Context, id int64, pos int) error {
	if pos < 1 {
		return domain.ErrInvalidPosition
	}

	projects, err := s.store.ListProjects(ctx)
	if err != nil {
		return err
	}
	ids := make([]int64, len(projects))
	found := false
	for i, p := range projects {
		ids[i] = p.ID
		if p.ID == id {
			found = true
		}
	}
	if !found {
		return domain.ErrProjectNotFound
	}

	seq, changed := domain.Reinsert(ids, id, pos)
	if !changed {
		return nil
	}
	return s.Reorder(ctx, seq)
}

// CompactPriorities renumbers priorities to a dense 0..N-1 sequence without
// changing the visible order, broadcasting projects_reordered only when a row
// actually moved. Run nightly by the cron scheduler.
func (s *TrackerService) CompactPriorities(ctx context.Context) (bool, error) {
	changed, err := s.store.NormalizePriorities(ctx)
	if err != nil {
		return false, err
	}
	if changed {
		s.publish(ctx, domain.ProjectsReordered())
	}
	return changed, nil
}

func (s *TrackerService) publish(ctx context.Context, ev domain.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, ev); err != nil {
		// broadcast is fire-and-forget; the mutation is already durable
		log.Printf("tracker: failed to publish %s: %v", ev.Type, err)
	}
}
