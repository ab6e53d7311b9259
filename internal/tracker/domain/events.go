package domain

// EventType names a domain event as it appears on the wire.
type EventType string

const (
	EventProjectCreated    EventType = "project_created"
	EventProjectUpdated    EventType = "project_updated"
	EventProjectDeleted    EventType = "project_deleted"
	EventProjectsReordered EventType = "projects_reordered"
	EventCostAdded         EventType = "cost_added"
	EventCostUpdated       EventType = "cost_updated"
	EventCostDeleted       EventType = "cost_deleted"
)

// Event is a single broadcast describing one committed mutation. Exactly one
// event is emitted per successful mutation, after the transaction commits.
// Which payload fields are set depends on Type:
//
//	project_created     Project (costs=[], total_cost=0)
//	project_updated     Project with current nested costs and total_cost
//	project_deleted     ID
//	projects_reordered  no payload; recipients must re-fetch the full list
//	cost_added          ProjectID + Cost
//	cost_updated        Cost
//	cost_deleted        ID + ProjectID
type Event struct {
	Type      EventType `json:"event"`
	Project   *Project  `json:"project,omitempty"`
	Cost      *Cost     `json:"cost,omitempty"`
	ID        int64     `json:"id,omitempty"`
	ProjectID int64     `json:"project_id,omitempty"`
}

func ProjectCreated(p *Project) Event {
	return Event{Type: EventProjectCreated, Project: p}
}

func ProjectUpdated(p *Project) Event {
	return Event{Type: EventProjectUpdated, Project: p}
}

func ProjectDeleted(id int64) Event {
	return Event{Type: EventProjectDeleted, ID: id}
}

func ProjectsReordered() Event {
	return Event{Type: EventProjectsReordered}
}

func CostAdded(c *Cost) Event {
	return Event{Type: EventCostAdded, ProjectID: c.ProjectID, Cost: c}
}

func CostUpdated(c *Cost) Event {
	return Event{Type: EventCostUpdated, Cost: c}
}

func CostDeleted(id, projectID int64) Event {
	return Event{Type: EventCostDeleted, ID: id, ProjectID: projectID}
}
