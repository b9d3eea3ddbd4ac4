package models

// Record is one (area, kpi, view) measurement. Value is already rendered
// as a whole-number percentage such as "12%".
type Record struct {
	Area      string `json:"area"`
	KPI       string `json:"kpi"`
	Direction string `json:"direction"`
	View      string `json:"view"`
	Value     string `json:"value"`
}

// KPIOverview summarizes one (kpi, direction, view) triple across all areas
type KPIOverview struct {
	KPI       string
	Direction string
	View      string
	Median    float64
	Min       float64
	Max       float64
	Areas     int
	Flagged   int
}
