package models

// QuoteLine is the estimate for a single job.
type QuoteLine struct {
	Service ServiceType `json:"service"`
	Hours   float64     `json:"hours"`
	Rate    float64     `json:"rate"`
	Price   float64     `json:"price"`
}

// Quote aggregates the per-job estimates of one session. Quotes are
// derived from jobs on demand and never persisted as source of truth.
type Quote struct {
	Lines      []QuoteLine `json:"lines"`
	TotalHours float64     `json:"totalHours"`
	TotalPrice float64     `json:"totalPrice"`
}
