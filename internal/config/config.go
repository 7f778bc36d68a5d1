package config

import (
	"fmt"
	"os"
	"path"
	"time"
)

const (
	VideoImageSource  = "source"
	VideoImageOverlay = "overlay"
)

type DetectConfig struct {
	ConfThreshold float32 `yaml:"confThreshold"`
	InputSize     int     `yaml:"inputSize"`
}

type TritonConfig struct {
	ServerAddr   string `yaml:"serverAddr"`
	ModelName    string `yaml:"modelName"`
	ModelVersion string `yaml:"modelVersion"`
	// comma separated, index is the class id
	Labels string `yaml:"labels"`
}

type ReportConfig struct {
	Title    string `yaml:"title"`
	FileName string `yaml:"fileName"`
	Key      string `yaml:"key"`
	// source: embed the uploaded file, overlay: embed the last rendered overlay frame
	VideoImage string `yaml:"videoImage"`
}

type S3Config struct {
	Enabled         bool   `yaml:"enabled"`
	Bucket          string `yaml:"bucket"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"accessKeyID"`
	SecretAccessKey string `yaml:"secretAccessKey"`
	UseSSL          bool   `yaml:"useSSL"`
	Region          string `yaml:"region"`
}

type NSQConfig struct {
	Enabled  bool   `yaml:"enabled"`
	NSQDAddr string `yaml:"nsqdAddr"`
	Topic    string `yaml:"topic"`
	Channel  string `yaml:"channel"`
}

// SessionConfig bounds how long finished sessions stay in memory. Zero
// disables either bound.
type SessionConfig struct {
	Retention   time.Duration `yaml:"retention"`
	MaxFinished int           `yaml:"maxFinished"`
}

type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

type Config struct {
	Addr      string        `yaml:"addr"`
	SSLCert   string        `yaml:"sslCert"`
	SSLKey    string        `yaml:"sslKey"`
	UploadDir string        `yaml:"uploadDir"`
	WorkDir   string        `yaml:"workDir"`
	Detect    DetectConfig  `yaml:"detect"`
	Triton    TritonConfig  `yaml:"triton"`
	Report    ReportConfig  `yaml:"report"`
	Session   SessionConfig `yaml:"session"`
	S3        S3Config      `yaml:"s3"`
	NSQ       NSQConfig     `yaml:"nsq"`
	History   HistoryConfig `yaml:"history"`
}

func (c Config) SessionDir(sessionId string) string {
	return path.Join(c.WorkDir, "sessions", sessionId)
}

func (c Config) Validate() error {
	if c.Detect.ConfThreshold < 0 || c.Detect.ConfThreshold > 1 {
		return fmt.Errorf("detect.confThreshold must be within [0, 1], got %v", c.Detect.ConfThreshold)
	}
	if c.Detect.InputSize <= 0 {
		return fmt.Errorf("detect.inputSize must be positive, got %d", c.Detect.InputSize)
	}
	switch c.Report.VideoImage {
	case VideoImageSource, VideoImageOverlay:
	default:
		return fmt.Errorf("report.videoImage must be %q or %q, got %q",
			VideoImageSource, VideoImageOverlay, c.Report.VideoImage)
	}
	if c.Session.Retention < 0 || c.Session.MaxFinished < 0 {
		return fmt.Errorf("session.retention and session.maxFinished must not be negative")
	}
	if c.UploadDir == "" {
		return fmt.Errorf("uploadDir is empty")
	}
	return nil
}

func DefaultConfig() *Config {
	cfg := &Config{
		Addr: "127.0.0.1:8501",
		Detect: DetectConfig{
			ConfThreshold: 0.2,
			InputSize:     640,
		},
		Triton: TritonConfig{
			ServerAddr:   "localhost:8001",
			ModelName:    "tomate2",
			ModelVersion: "1",
		},
		Report: ReportConfig{
			Title:      "Detection Report",
			FileName:   "informe_deteccion.pdf",
			Key:        "download_report",
			VideoImage: VideoImageSource,
		},
		Session: SessionConfig{
			Retention:   30 * time.Minute,
			MaxFinished: 100,
		},
		S3: S3Config{
			Bucket:   "detectdemo",
			Endpoint: "127.0.0.1:9000",
			UseSSL:   false,
			Region:   "us-east-1",
		},
		NSQ: NSQConfig{
			NSQDAddr: "127.0.0.1:4150",
			Topic:    "detectdemo_sessions",
			Channel:  "detectdemo-history",
		},
	}

	dataDir := os.Getenv("DETECTDEMO_DATA")
	if dataDir != "" {
		cfg.UploadDir = path.Join(dataDir, "uploads")
		cfg.WorkDir = path.Join(dataDir, "work")
	} else {
		cfg.UploadDir = "uploads"
		cfg.WorkDir = "./work"
	}
	cfg.History.Dir = path.Join(cfg.WorkDir, "history")

	return cfg
}
