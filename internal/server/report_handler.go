package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"detectdemo/internal/report"
	"detectdemo/internal/session"
)

// handleCreateReport renders the one-shot PDF report
// @Summary Download report
// @Description Builds the PDF once the report has been offered. A successful report ends the session.
// @Tags report
// @Produce application/pdf
// @Param session_id path string true "session id"
// @Param key query string true "report action key"
// @Success 200 {file} binary "PDF document"
// @Failure 400 {object} ErrorResponse "unknown report key"
// @Failure 404 {object} ErrorResponse "session not found"
// @Failure 409 {object} ErrorResponse "report not offered"
// @Failure 422 {object} ErrorResponse "report image cannot be read"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/sessions/{session_id}/report [post]
func (s *Server) handleCreateReport(c *gin.Context) {
	if key := c.Query("key"); key != s.conf.Report.Key {
		s.writeError(c, http.StatusBadRequest, fmt.Errorf("unknown report key %q", key))
		return
	}

	sess := c.MustGet(sessionKey).(*session.Session)
	data, err := sess.Report(s.builder)
	if err != nil {
		var readErr *report.ImageReadError
		switch {
		case errors.Is(err, session.ErrInvalidState):
			s.writeError(c, http.StatusConflict, err)
		case errors.As(err, &readErr):
			s.writeError(c, http.StatusUnprocessableEntity, err)
		default:
			s.writeError(c, http.StatusInternalServerError, err)
		}
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, s.conf.Report.FileName))
	c.Data(http.StatusOK, "application/pdf", data)
}
