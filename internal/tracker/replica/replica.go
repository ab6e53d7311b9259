package replica

import (
	"context"
	"sync"

	"github.com/prioboard/prioboard-backend/internal/tracker/domain"
)

// ProjectLister is the full-fetch query the replica falls back to.
// *service.TrackerService satisfies it.
type ProjectLister interface {
	ListProjects(ctx context.Context) ([]domain.Project, error)
}

// Replica is a client-side copy of the project list kept current by applying
// broadcast events incrementally. Events it cannot apply unambiguously, and
// every projects_reordered, trigger a full resync against the lister. After
// each applied event the global summary is recomputed from the replica.
type Replica struct {
	mu       sync.Mutex
	lister   ProjectLister
	projects []domain.Project
	summary  domain.Summary
}

// New creates an empty replica. Call Resync to load the initial state.
func New(lister ProjectLister) *Replica {
	return &Replica{lister: lister}
}

// Resync discards local state and refetches the full ordered list.
func (r *Replica) Resync(ctx context.Context) error {
	projects, err := r.lister.ListProjects(ctx)
	if err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.projects = projects
	r.summary = domain.Summarize(projects)
	return nil
}

// Apply folds one broadcast event into the replica.
func (r *Replica) Apply(ctx context.Context, ev domain.Event) error {
	r.mu.Lock()

	switch ev.Type {
	case domain.EventProjectCreated:
		// appended locally; the server-assigned priority only takes effect
		// on the next full fetch
		p := *ev.Project
		if p.Costs == nil {
			p.Costs = []domain.Cost{}
		}
		p.TotalCost = domain.TotalCost(p.Costs)
		r.projects = append(r.projects, p)

	case domain.EventProjectUpdated:
		i := r.indexOf(ev.Project.ID)
		if i == -1 {
			r.mu.Unlock()
			return r.Resync(ctx)
		}
		p := *ev.Project
		p.TotalCost = domain.TotalCost(p.Costs)
		r.projects[i] = p

	case domain.EventProjectDeleted:
		kept := make([]domain.Project, 0, len(r.projects))
		for _, p := range r.projects {
			if p.ID != ev.ID {
				kept = append(kept, p)
			}
		}
		r.projects = kept

	case domain.EventProjectsReordered:
		// the event carries no order; refetch the authoritative list
		r.mu.Unlock()
		return r.Resync(ctx)

	case domain.EventCostAdded:
		i := r.indexOf(ev.ProjectID)
		if i == -1 {
			r.mu.Unlock()
			return r.Resync(ctx)
		}
		r.projects[i].Costs = append(r.projects[i].Costs, *ev.Cost)
		r.projects[i].TotalCost = domain.TotalCost(r.projects[i].Costs)

	case domain.EventCostUpdated:
		applied := false
		for i := range r.projects {
			for j := range r.projects[i].Costs {
				if r.projects[i].Costs[j].ID == ev.Cost.ID {
					r.projects[i].Costs[j] = *ev.Cost
					r.projects[i].TotalCost = domain.TotalCost(r.projects[i].Costs)
					applied = true
					break
				}
			}
		}
		if !applied {
			r.mu.Unlock()
			return r.Resync(ctx)
		}

	case domain.EventCostDeleted:
		i := r.indexOf(ev.ProjectID)
		if i == -1 {
			r.mu.Unlock()
			return r.Resync(ctx)
		}
		kept := make([]domain.Cost, 0, len(r.projects[i].Costs))
		for _, c := range r.projects[i].Costs {
			if c.ID != ev.ID {
				kept = append(kept, c)
			}
		}
		r.projects[i].Costs = kept
		r.projects[i].TotalCost = domain.TotalCost(r.projects[i].Costs)
	}

	r.summary = domain.Summarize(r.projects)
	r.mu.Unlock()
	return nil
}

// Projects returns a copy of the replica's current project list. Cost slices
// are copied too, so later events never mutate a snapshot already handed out.
func (r *Replica) Projects() []domain.Project {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Project, len(r.projects))
	for i, p := range r.projects {
		costs := make([]domain.Cost, len(p.Costs))
		copy(costs, p.Costs)
		p.Costs = costs
		out[i] = p
	}
	return out
}

// Summary returns the aggregate recomputed after the last applied event.
func (r *Replica) Summary() domain.Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.summary
}

func (r *Replica) indexOf(projectID int64) int {
	for i := range r.projects {
		if r.projects[i].ID == projectID {
			return i
		}
	}
	return -1
}
