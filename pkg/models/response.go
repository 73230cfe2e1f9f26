package models

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// DashboardStats aggregates the live chart series for the reports tab.
// Every series is derived from the relational store, never hard-coded.
type DashboardStats struct {
	LeadsByStatus      map[string]int     `json:"leads_by_status"`
	LeadsByTemperature map[string]int     `json:"leads_by_temperature"`
	ValueByStatus      map[string]float64 `json:"value_by_status"`
	TasksByStatus      map[string]int     `json:"tasks_by_status"`
	ActivitiesByType   map[string]int     `json:"activities_by_type"`
	NewLeadsByMonth    []MonthCount       `json:"new_leads_by_month"`
	TotalLeads         int                `json:"total_leads"`
	TotalPipelineValue float64            `json:"total_pipeline_value"`
	WonValue           float64            `json:"won_value"`
}

// MonthCount is one point of the monthly new-lead series.
type MonthCount struct {
	Month string `json:"month"` // YYYY-MM
	Count int    `json:"count"`
}
