package dao

import "detectdemo/internal/counts"

// StatsRequest bounds the finish time of the sessions to sum up, RFC3339.
// Defaults: start = 24 hours before end, end = now.
type StatsRequest struct {
	Start string `form:"start" json:"start"`
	End   string `form:"end" json:"end"`
}

// StatsResponse sums the tallies of finished sessions.
type StatsResponse struct {
	Start       string                 `json:"start"`
	End         string                 `json:"end"`
	Sessions    int                    `json:"sessions"`
	Frames      int                    `json:"frames"`
	Totals      *counts.ClassCounts    `json:"totals"`
	Percentages counts.PercentageTable `json:"percentages"`
}
