package server

import (
	"context"
	goerrors "errors"
	"net/http"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	_ "detectdemo/docs"
	"detectdemo/internal/config"
	"detectdemo/internal/history"
	"detectdemo/internal/metrics"
	"detectdemo/internal/session"
	"detectdemo/pkg/log"
)

var mediaExts = []string{".jpg", ".jpeg", ".png", ".mp4"}

type Server struct {
	conf       *config.Config
	ctx        context.Context
	manager    *session.Manager
	builder    session.ReportBuilder
	history    *history.Store
	metrics    *metrics.Metrics
	httpServer *http.Server
	logger     *logrus.Entry
}

// NewServer wires the HTTP surface. store and m may be nil.
func NewServer(ctx context.Context, conf *config.Config, manager *session.Manager,
	builder session.ReportBuilder, store *history.Store, m *metrics.Metrics) (*Server, error) {
	s := &Server{
		conf:    conf,
		ctx:     ctx,
		manager: manager,
		builder: builder,
		history: store,
		metrics: m,
		logger:  log.GetLogger(ctx).WithField("component", "server"),
	}

	return s, nil
}

func RequestId() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestId := c.GetHeader(log.HttpXRequestId)
		if requestId == "" {
			requestId = strings.ReplaceAll(uuid.New().String(), "-", "")
		}
		c.Set(log.CtxRequestId, requestId)
		c.Header(log.HttpXRequestId, requestId)
		c.Next()
	}
}

func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		t := time.Now()
		c.Next()
		latency := time.Since(t)
		status := c.Writer.Status()

		log.GetLogger(c).Info("ip: ", c.ClientIP(), " method: ", c.Request.Method, " path: ",
			c.Request.URL.Path, " status: ", status, " latency: ", latency)
	}
}

func (s *Server) Start() {
	gin.SetMode(gin.ReleaseMode)
	router := s.SetUpRouter()
	pprof.Register(router)
	s.httpServer = &http.Server{
		Addr:    s.conf.Addr,
		Handler: router,
	}

	var err error
	if s.conf.SSLCert != "" && s.conf.SSLKey != "" {
		s.logger.Infof("start https server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServeTLS(s.conf.SSLCert, s.conf.SSLKey)
	} else {
		s.logger.Infof("start http server on %s", s.conf.Addr)
		err = s.httpServer.ListenAndServe()
	}
	if err != nil && !goerrors.Is(err, http.ErrServerClosed) {
		s.logger.Fatal(err)
	}
}

func (s *Server) Shutdown() {
	if s.httpServer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		s.logger.Fatalf("server forced to shutdown: %v", err)
	}
}

type ErrorResponse struct {
	// error message
	Error string `json:"error"`
}

func (s *Server) writeError(c *gin.Context, code int, err error) {
	if code >= http.StatusInternalServerError {
		log.GetLogger(c).WithError(err).Error("request failed")
	}
	c.JSON(code, ErrorResponse{
		Error: err.Error(),
	})
}

func isMediaFile(name string) bool {
	return slices.Contains(mediaExts, strings.ToLower(filepath.Ext(name)))
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("mediafile", func(fl validator.FieldLevel) bool {
			return isMediaFile(fl.Field().String())
		})
	}
}
