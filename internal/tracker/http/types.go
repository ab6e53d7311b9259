package http

// project create/update share the same body (update always replaces all
// three fields, matching the persistence contract)
type projectReq struct {
	Name                string   `json:"name"`
	ValueAdd            *float64 `json:"value_add"`
	ValueAddDescription *string  `json:"value_add_description"`
}

type costReq struct {
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
}

type reorderReq struct {
	ProjectIDs []int64 `json:"project_ids"`
}

// priority is the 0-based target rank, as the web client sends it
type priorityReq struct {
	Priority *int `json:"priority"`
}
