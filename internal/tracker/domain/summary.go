package domain

// Summary is the global aggregate over all projects.
// NetValue = TotalValueAdd - TotalCost; a nil value_add counts as 0.
type Summary struct {
	Count         int     `json:"count"`
	TotalCost     float64 `json:"total_cost"`
	TotalValueAdd float64 `json:"total_value_add"`
	NetValue      float64 `json:"net_value"`
}

// TotalCost returns the sum of the given cost amounts.
func TotalCost(costs []Cost) float64 {
	var sum float64
	for _, c := range costs {
		sum += c.Amount
	}
	return sum
}

// Summarize computes the global summary from the full project list.
// It sums each project's current costs directly rather than trusting
// any TotalCost value embedded in the input.
func Summarize(projects []Project) Summary {
	s := Summary{Count: len(projects)}
	for _, p := range projects {
		s.TotalCost += TotalCost(p.Costs)
		if p.ValueAdd != nil {
			s.TotalValueAdd += *p.ValueAdd
		}
	}
	s.NetValue = s.TotalValueAdd - s.TotalCost
	return s
}
