package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/invopop/jsonschema"

	"detectdemo/internal/dao"
	"detectdemo/internal/history"
)

const defaultHistoryLimit = 20

var errHistoryDisabled = errors.New("history is disabled")

var reflector = jsonschema.Reflector{
	AllowAdditionalProperties: false,
	DoNotReference:            true,
}

// handleListHistory lists finished sessions
// @Summary List history
// @Description Final tallies of finished sessions, newest first.
// @Tags history
// @Produce json
// @Param start query int false "offset"
// @Param limit query int false "page size, at most 50"
// @Success 200 {object} dao.ListHistoryResponse "history"
// @Failure 400 {object} ErrorResponse "bad request"
// @Failure 404 {object} ErrorResponse "history disabled"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/history [get]
func (s *Server) handleListHistory(c *gin.Context) {
	if s.history == nil {
		s.writeError(c, http.StatusNotFound, errHistoryDisabled)
		return
	}

	var req dao.ListHistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}
	if req.Limit == 0 {
		req.Limit = defaultHistoryLimit
	}

	items, total, err := s.history.List(req.Start, req.Limit)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, dao.ListHistoryResponse{
		Items: items,
		Total: total,
	})
}

// handleGetHistory returns one finished session
// @Summary Get history record
// @Tags history
// @Produce json
// @Param session_id path string true "session id"
// @Success 200 {object} dao.HistoryRecord "record"
// @Failure 404 {object} ErrorResponse "not found"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/history/{session_id} [get]
func (s *Server) handleGetHistory(c *gin.Context) {
	if s.history == nil {
		s.writeError(c, http.StatusNotFound, errHistoryDisabled)
		return
	}
	rec, err := s.history.Get(c.Param("session_id"))
	if err != nil {
		if errors.Is(err, history.ErrNotFound) {
			s.writeError(c, http.StatusNotFound, err)
			return
		}
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

// handleGetSessionSchema returns the JSON schema of the session status
// @Summary Session schema
// @Tags session
// @Produce json
// @Success 200 {object} map[string]any "JSON schema"
// @Router /api/v1/schema/session [get]
func (s *Server) handleGetSessionSchema(c *gin.Context) {
	c.JSON(http.StatusOK, reflector.Reflect(&dao.SessionSpec{}))
}
