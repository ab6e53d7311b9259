package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prioboard/prioboard-backend/internal/tracker/domain"
	"github.com/prioboard/prioboard-backend/internal/tracker/repository"
)

// captureBroadcaster records published events in order.
type captureBroadcaster struct {
	mu     sync.Mutex
	events []domain.Event
}

func (b *captureBroadcaster) Publish(_ context.Context, ev domain.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *captureBroadcaster) all() []domain.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.Event, len(b.events))
	copy(out, b.events)
	return out
}

func (b *captureBroadcaster) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = nil
}

func newTestService() (*TrackerService, *captureBroadcaster) {
	bc := &captureBroadcaster{}
	return NewTrackerService(repository.NewMemoryRepo(), bc), bc
}

func TestTrackerService_ProjectLifecycle(t *testing.T) {
	ctx := context.Background()
	svc, bc := newTestService()

	p, err := svc.CreateProject(ctx, domain.ProjectFields{Name: "alpha"})
	require.NoError(t, err)

	t.Run("create emits project_created with empty costs", func(t *testing.T) {
		evs := bc.all()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.EventProjectCreated, evs[0].Type)
		require.NotNil(t, evs[0].Project)
		assert.Empty(t, evs[0].Project.Costs)
		assert.Equal(t, 0.0, evs[0].Project.TotalCost)
	})

	t.Run("update emits project_updated with costs and total", func(t *testing.T) {
		bc.reset()
		_, err := svc.CreateCost(ctx, p.ID, domain.CostFields{Description: "licenses", Amount: 40})
		require.NoError(t, err)
		bc.reset()

		up, err := svc.UpdateProject(ctx, p.ID, domain.ProjectFields{Name: "alpha2"})
		require.NoError(t, err)
		assert.Equal(t, 40.0, up.TotalCost)

		evs := bc.all()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.EventProjectUpdated, evs[0].Type)
		require.NotNil(t, evs[0].Project)
		assert.Len(t, evs[0].Project.Costs, 1)
		assert.Equal(t, 40.0, evs[0].Project.TotalCost)
	})

	t.Run("failed update emits nothing", func(t *testing.T) {
		bc.reset()
		_, err := svc.UpdateProject(ctx, 999, domain.ProjectFields{Name: "x"})
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
		assert.Empty(t, bc.all())
	})

	t.Run("delete emits project_deleted", func(t *testing.T) {
		bc.reset()
		require.NoError(t, svc.DeleteProject(ctx, p.ID))

		evs := bc.all()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.EventProjectDeleted, evs[0].Type)
		assert.Equal(t, p.ID, evs[0].ID)
	})
}

func TestTrackerService_CostEvents(t *testing.T) {
	ctx := context.Background()
	svc, bc := newTestService()

	p, err := svc.CreateProject(ctx, domain.ProjectFields{Name: "alpha"})
	require.NoError(t, err)
	bc.reset()

	c, err := svc.CreateCost(ctx, p.ID, domain.CostFields{Description: "hosting", Amount: 10})
	require.NoError(t, err)

	t.Run("cost_added carries project id and cost", func(t *testing.T) {
		evs := bc.all()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.EventCostAdded, evs[0].Type)
		assert.Equal(t, p.ID, evs[0].ProjectID)
		require.NotNil(t, evs[0].Cost)
		assert.Equal(t, c.ID, evs[0].Cost.ID)
	})

	t.Run("cost_updated carries the full cost", func(t *testing.T) {
		bc.reset()
		_, err := svc.UpdateCost(ctx, c.ID, domain.CostFields{Description: "hosting", Amount: 25})
		require.NoError(t, err)

		evs := bc.all()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.EventCostUpdated, evs[0].Type)
		require.NotNil(t, evs[0].Cost)
		assert.Equal(t, 25.0, evs[0].Cost.Amount)
		assert.Equal(t, p.ID, evs[0].Cost.ProjectID)
	})

	t.Run("cost_deleted carries id and owning project", func(t *testing.T) {
		bc.reset()
		require.NoError(t, svc.DeleteCost(ctx, c.ID))

		evs := bc.all()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.EventCostDeleted, evs[0].Type)
		assert.Equal(t, c.ID, evs[0].ID)
		assert.Equal(t, p.ID, evs[0].ProjectID)
	})

	t.Run("fk violation emits nothing", func(t *testing.T) {
		bc.reset()
		_, err := svc.CreateCost(ctx, 999, domain.CostFields{Description: "x", Amount: 1})
		assert.ErrorIs(t, err, domain.ErrProjectMissing)
		assert.Empty(t, bc.all())
	})
}

func TestTrackerService_Ordering(t *testing.T) {
	ctx := context.Background()
	svc, bc := newTestService()

	var ids []int64
	for _, name := range []string{"A", "B", "C", "D"} {
		p, err := svc.CreateProject(ctx, domain.ProjectFields{Name: name})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	require.NoError(t, svc.Reorder(ctx, ids)) // dense 0..3 in creation order
	bc.reset()

	t.Run("bulk reorder renumbers to the supplied sequence", func(t *testing.T) {
		seq := []int64{ids[2], ids[0], ids[1], ids[3]}
		require.NoError(t, svc.Reorder(ctx, seq))

		list, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		got := make([]int64, len(list))
		for i, p := range list {
			got[i] = p.ID
			assert.Equal(t, i, p.Priority)
		}
		assert.Equal(t, seq, got)

		evs := bc.all()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.EventProjectsReordered, evs[0].Type)
		assert.Nil(t, evs[0].Project)
	})

	t.Run("move to position renumbers everyone", func(t *testing.T) {
		require.NoError(t, svc.Reorder(ctx, ids)) // back to A,B,C,D
		bc.reset()

		// move D to position 2: A,D,B,C
		require.NoError(t, svc.MoveProject(ctx, ids[3], 2))

		list, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		got := make([]int64, len(list))
		for i, p := range list {
			got[i] = p.ID
			assert.Equal(t, i, p.Priority)
		}
		assert.Equal(t, []int64{ids[0], ids[3], ids[1], ids[2]}, got)

		evs := bc.all()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.EventProjectsReordered, evs[0].Type)
	})

	t.Run("move to current position is a no-op with no event", func(t *testing.T) {
		before, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		bc.reset()

		require.NoError(t, svc.MoveProject(ctx, before[1].ID, 2))

		after, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Empty(t, bc.all())
	})

	t.Run("out-of-range position clamps to last", func(t *testing.T) {
		bc.reset()
		require.NoError(t, svc.MoveProject(ctx, ids[0], 99))

		list, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, ids[0], list[len(list)-1].ID)
		require.Len(t, bc.all(), 1)
	})

	t.Run("non-positive position is rejected without mutation", func(t *testing.T) {
		before, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		bc.reset()

		err = svc.MoveProject(ctx, ids[0], 0)
		assert.ErrorIs(t, err, domain.ErrInvalidPosition)

		after, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		assert.Equal(t, before, after)
		assert.Empty(t, bc.all())
	})

	t.Run("moving an unknown project", func(t *testing.T) {
		err := svc.MoveProject(ctx, 999, 1)
		assert.ErrorIs(t, err, domain.ErrProjectNotFound)
	})
}

func TestTrackerService_CompactPriorities(t *testing.T) {
	ctx := context.Background()
	svc, bc := newTestService()

	var ids []int64
	for _, name := range []string{"a", "b", "c"} {
		p, err := svc.CreateProject(ctx, domain.ProjectFields{Name: name})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	// all three sit at priority 0
	bc.reset()

	t.Run("compaction repairs duplicate ranks and broadcasts", func(t *testing.T) {
		before, err := svc.ListProjects(ctx)
		require.NoError(t, err)

		changed, err := svc.CompactPriorities(ctx)
		require.NoError(t, err)
		assert.True(t, changed)

		after, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		for i, p := range after {
			assert.Equal(t, before[i].ID, p.ID)
			assert.Equal(t, i, p.Priority)
		}

		evs := bc.all()
		require.Len(t, evs, 1)
		assert.Equal(t, domain.EventProjectsReordered, evs[0].Type)
	})

	t.Run("already dense order stays silent", func(t *testing.T) {
		bc.reset()
		changed, err := svc.CompactPriorities(ctx)
		require.NoError(t, err)
		assert.False(t, changed)
		assert.Empty(t, bc.all())
	})
}

// total_cost must track the persisted costs exactly through any sequence of
// mutations.
func TestTrackerService_TotalCostNeverDrifts(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	p, err := svc.CreateProject(ctx, domain.ProjectFields{Name: "alpha"})
	require.NoError(t, err)

	c1, err := svc.CreateCost(ctx, p.ID, domain.CostFields{Description: "one", Amount: 100})
	require.NoError(t, err)
	c2, err := svc.CreateCost(ctx, p.ID, domain.CostFields{Description: "two", Amount: 50})
	require.NoError(t, err)

	check := func(want float64) {
		t.Helper()
		list, err := svc.ListProjects(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, want, list[0].TotalCost)
		assert.Equal(t, domain.TotalCost(list[0].Costs), list[0].TotalCost)
	}

	check(150)

	_, err = svc.UpdateCost(ctx, c1.ID, domain.CostFields{Description: "one", Amount: 75})
	require.NoError(t, err)
	check(125)

	require.NoError(t, svc.DeleteCost(ctx, c2.ID))
	check(75)

	require.NoError(t, svc.DeleteCost(ctx, c1.ID))
	check(0)
}

func TestTrackerService_Summary(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	va := 80.0
	p1, err := svc.CreateProject(ctx, domain.ProjectFields{Name: "p1", ValueAdd: &va})
	require.NoError(t, err)
	p2, err := svc.CreateProject(ctx, domain.ProjectFields{Name: "p2"})
	require.NoError(t, err)

	_, err = svc.CreateCost(ctx, p1.ID, domain.CostFields{Description: "a", Amount: 100})
	require.NoError(t, err)
	_, err = svc.CreateCost(ctx, p2.ID, domain.CostFields{Description: "b", Amount: 50})
	require.NoError(t, err)

	s, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, 150.0, s.TotalCost)
	assert.Equal(t, 80.0, s.TotalValueAdd)
	assert.Equal(t, -70.0, s.NetValue)
}
