package server

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"detectdemo/internal/dao"
	"detectdemo/internal/session"
	"detectdemo/pkg/log"
)

const sessionKey = "session"

type uploadFile struct {
	Name string `binding:"required,mediafile"`
}

func (s *Server) SetSessionToContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionId := c.Param("session_id")
		sess, err := s.manager.Get(sessionId)
		if err != nil {
			if errors.Is(err, session.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, ErrorResponse{
					Error: "session not found",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, ErrorResponse{
				Error: "internal server error",
			})
			return
		}
		c.Set(sessionKey, sess)
		c.Set(log.CtxSessionId, sess.Uuid)
		c.Next()
	}
}

// handleCreateSession uploads a file and starts detection on it
// @Summary Upload an image or video
// @Description Stores the file under the upload directory and starts detection.
// @Description Images are processed before the response is sent, videos run in the background.
// @Tags session
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "jpg, jpeg, png or mp4 file"
// @Param kind formData string false "image or video, defaults to the kind of the file extension"
// @Success 200 {object} dao.SessionSpec "image processed"
// @Success 202 {object} dao.SessionSpec "video processing started"
// @Failure 400 {object} ErrorResponse "bad request"
// @Failure 500 {object} ErrorResponse "internal server error"
// @Router /api/v1/sessions [post]
func (s *Server) handleCreateSession(c *gin.Context) {
	var req dao.CreateSessionRequest
	if err := c.ShouldBind(&req); err != nil {
		s.writeError(c, http.StatusBadRequest, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		s.writeError(c, http.StatusBadRequest, fmt.Errorf("missing file: %w", err))
		return
	}
	name := filepath.Base(fh.Filename)
	if err := binding.Validator.ValidateStruct(&uploadFile{Name: name}); err != nil {
		s.writeError(c, http.StatusBadRequest, fmt.Errorf("unsupported file %q, expect jpg, jpeg, png or mp4", name))
		return
	}
	kind := dao.KindOfFile(name)
	if req.Kind != "" && req.Kind != kind {
		s.writeError(c, http.StatusBadRequest, fmt.Errorf("file %q is not a %s", name, req.Kind))
		return
	}

	if err := os.MkdirAll(s.conf.UploadDir, 0755); err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	dst := filepath.Join(s.conf.UploadDir, name)
	if err := c.SaveUploadedFile(fh, dst); err != nil {
		s.writeError(c, http.StatusInternalServerError, fmt.Errorf("save upload: %w", err))
		return
	}

	sess, err := s.manager.Upload(s.ctx, kind, name, dst)
	if err != nil {
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	log.GetLogger(c).Infof("session %s created for %s", sess.Uuid, dst)

	if kind == dao.MediaKindVideo {
		c.JSON(http.StatusAccepted, sess.Spec())
		return
	}

	select {
	case <-sess.Done():
	case <-c.Request.Context().Done():
		return
	}
	c.JSON(http.StatusOK, sess.Spec())
}

// handleListSessions lists live sessions
// @Summary List sessions
// @Description Sessions of this process, newest first.
// @Tags session
// @Produce json
// @Success 200 {array} dao.SessionSpec "sessions"
// @Router /api/v1/sessions [get]
func (s *Server) handleListSessions(c *gin.Context) {
	list := s.manager.List()
	specs := make([]dao.SessionSpec, 0, len(list))
	for _, sess := range list {
		specs = append(specs, sess.Spec())
	}
	c.JSON(http.StatusOK, specs)
}

// handleGetSession returns the session status
// @Summary Get session
// @Description State, frame position, running totals and percentage table.
// @Tags session
// @Produce json
// @Param session_id path string true "session id"
// @Success 200 {object} dao.SessionSpec "session"
// @Failure 404 {object} ErrorResponse "session not found"
// @Router /api/v1/sessions/{session_id} [get]
func (s *Server) handleGetSession(c *gin.Context) {
	sess := c.MustGet(sessionKey).(*session.Session)
	c.JSON(http.StatusOK, sess.Spec())
}

// handleGetOverlay returns the last rendered frame
// @Summary Get overlay frame
// @Tags session
// @Produce jpeg
// @Param session_id path string true "session id"
// @Success 200 {file} binary "JPEG frame"
// @Failure 404 {object} ErrorResponse "no frame yet"
// @Router /api/v1/sessions/{session_id}/overlay [get]
func (s *Server) handleGetOverlay(c *gin.Context) {
	sess := c.MustGet(sessionKey).(*session.Session)
	data := sess.Overlay()
	if data == nil {
		s.writeError(c, http.StatusNotFound, errors.New("no frame rendered yet"))
		return
	}
	c.Data(http.StatusOK, "image/jpeg", data)
}

// handleStopSession stops a running session, or closes one waiting for report
// confirmation without a report
// @Summary Stop session
// @Tags session
// @Produce json
// @Param session_id path string true "session id"
// @Success 200 {object} dao.SessionSpec "stopped"
// @Failure 404 {object} ErrorResponse "session not found"
// @Failure 409 {object} ErrorResponse "session is already done or not started"
// @Router /api/v1/sessions/{session_id}/stop [put]
func (s *Server) handleStopSession(c *gin.Context) {
	sess := c.MustGet(sessionKey).(*session.Session)
	if err := sess.Stop(); err != nil {
		if errors.Is(err, session.ErrInvalidState) {
			s.writeError(c, http.StatusConflict, err)
			return
		}
		s.writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, sess.Spec())
}
