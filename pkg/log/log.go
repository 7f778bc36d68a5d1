package log

import (
	"context"
	"fmt"
	"os"
	"path"
	"runtime"

	"github.com/sirupsen/logrus"
)

const (
	HttpXRequestId = "X-Request-Id"
	CtxRequestId   = "requestId"
	CtxSessionId   = "sessionId"
)

const timestampFormat = "2006-01-02 15:04:05"

func callerPrettyfier(frame *runtime.Frame) (string, string) {
	return "", fmt.Sprintf("%s:%d", path.Base(frame.File), frame.Line)
}

// InitLog configures the standard logrus logger. format is "text" or "json".
func InitLog(logLevel, format string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Errorf("failed to parse log level: %v, err: %v", logLevel, err)
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
	logrus.SetReportCaller(true)
	logrus.SetOutput(os.Stdout)

	if format == "json" {
		logrus.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat:  timestampFormat,
			CallerPrettyfier: callerPrettyfier,
		})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{
		TimestampFormat:  timestampFormat,
		FullTimestamp:    true,
		DisableColors:    true,
		DisableQuote:     true,
		CallerPrettyfier: callerPrettyfier,
	})
}

// GetLogger returns an entry carrying the request and session ids found in c.
func GetLogger(c context.Context) *logrus.Entry {
	fields := logrus.Fields{}
	if v := c.Value(CtxRequestId); v != nil {
		fields[CtxRequestId] = v
	}
	if v := c.Value(CtxSessionId); v != nil {
		fields[CtxSessionId] = v
	}
	if len(fields) == 0 {
		return logrus.NewEntry(logrus.StandardLogger())
	}
	return logrus.WithFields(fields)
}

func NewLogger() *logrus.Entry {
	return logrus.NewEntry(logrus.StandardLogger())
}
