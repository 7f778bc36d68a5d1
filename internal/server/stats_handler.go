package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"detectdemo/internal/counts"
	"detectdemo/internal/dao"
)

// handleStats sums the tallies of finished sessions
// @Summary Detection statistics
// @Description Totals and percentages over the history records finished between start and end.
// @Tags history
// @Produce json
// @Param start query string false "start time (RFC3339)"
// @Param end query string false "end time (RFC3339)"
// @Success 200 {object} dao.StatsResponse "statistics"
// @Failure 400 {object} ErrorResponse "bad request"
// @Failure 404 {object} ErrorResponse "history disabled"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/stats [get]
func (s *Server) handleStats(c *gin.Context) {
	if s.history == nil {
		s.writeError(c, http.StatusNotFound, errHistoryDisabled)
		return
	}

	var req dao.StatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	end := time.Now().UTC()
	if req.End != "" {
		te, err := time.Parse(time.RFC3339, req.End)
		if err != nil {
			s.writeError(c, http.StatusBadRequest, fmt.Errorf("invalid end: %w", err))
			return
		}
		end = te.UTC()
	}

	start := end.Add(-24 * time.Hour)
	if req.Start != "" {
		ts, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			s.writeError(c, http.StatusBadRequest, fmt.Errorf("invalid start: %w", err))
			return
		}
		start = ts.UTC()
	}
	if !start.Before(end) {
		s.writeError(c, http.StatusBadRequest, fmt.Errorf("start must be before end"))
		return
	}

	records, _, err := s.history.List(0, 0)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}

	agg := counts.NewAggregator()
	resp := dao.StatsResponse{
		Start: start.Format(time.RFC3339),
		End:   end.Format(time.RFC3339),
	}
	for _, rec := range records {
		finished, err := time.Parse(time.RFC3339, rec.FinishTime)
		if err != nil || finished.Before(start) || !finished.Before(end) {
			continue
		}
		agg.Merge(rec.Totals)
		resp.Sessions++
		resp.Frames += rec.Frames
	}
	resp.Totals = agg.Totals()
	resp.Percentages = agg.Percentages()

	c.JSON(http.StatusOK, resp)
}
