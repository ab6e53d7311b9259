package domain

import "time"

// Project is a single tracked project with its itemized costs.
// It is storage-agnostic and shared across repository, service and HTTP layers.
// Priority defines the project's rank in the global display order
// (lower value = earlier position); it is renumbered to a dense 0..N-1
// sequence by every reorder operation.
type Project struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	ValueAdd            *float64  `json:"value_add"`
	ValueAddDescription *string   `json:"value_add_description"`
	Priority            int       `json:"priority"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`

	// Derived, never persisted. Recomputed on every read.
	Costs     []Cost  `json:"costs"`
	TotalCost float64 `json:"total_cost"`
}

// Cost is a single expense item owned by exactly one project.
// Its lifetime is bounded by the owning project (cascade delete).
type Cost struct {
	ID          int64     `json:"id"`
	ProjectID   int64     `json:"project_id"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount"`
	CreatedAt   time.Time `json:"created_at"`
}

// ProjectFields carries the caller-supplied mutable fields of a project.
type ProjectFields struct {
	Name                string
	ValueAdd            *float64
	ValueAddDescription *string
}

// CostFields carries the caller-supplied mutable fields of a cost.
type CostFields struct {
	Description string
	Amount      float64
}
