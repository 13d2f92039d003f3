package domain

// CulturalContext is the release-year-based era classification of a seed
// set. Derived once per request and read-only after.
type CulturalContext struct {
	CulturalEra  string   `json:"cultural_era"`
	EraKeywords  []string `json:"era_keywords"`
	AvgYear      int      `json:"avg_year"`
	YearSpread   int      `json:"year_spread"`
	IsFocusedEra bool     `json:"is_focused_era"`
	TimeRange    [2]int   `json:"time_range"` // [min, max]
}
