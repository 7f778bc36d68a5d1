package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"detectdemo/internal/config"
	"detectdemo/internal/dao"
	"detectdemo/internal/report"
	"detectdemo/internal/session"
)

var (
	outputFile   string
	overlayImage bool
	skipReport   bool
)

var detectCommand = &cobra.Command{
	Use:   "detect <file>",
	Short: "Run detection on a local image or video and write the PDF report",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runDetect(args[0])
	},
}

func init() {
	detectCommand.Flags().StringVarP(&outputFile, "output", "o", "", "Report path, defaults to report.fileName of the config")
	detectCommand.Flags().BoolVar(&overlayImage, "overlay", false, "Embed the last overlay frame in video reports")
	detectCommand.Flags().BoolVar(&skipReport, "no-report", false, "Only print the tallies")
}

func runDetect(path string) {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}
	if overlayImage {
		conf.Report.VideoImage = config.VideoImageOverlay
	}
	if outputFile == "" {
		outputFile = conf.Report.FileName
	}

	kind := dao.KindOfFile(path)
	if kind == "" {
		logrus.Fatalf("unsupported file %s, expect jpg, jpeg, png or mp4", path)
	}
	if _, err := os.Stat(path); err != nil {
		logrus.Fatalf("cannot read %s: %s", path, err.Error())
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	manager := session.NewManager(ctx, conf, newProcessor(ctx, conf, nil), nil)
	sess, err := manager.Upload(ctx, kind, filepath.Base(path), path)
	if err != nil {
		logrus.Fatalf("start detection failed, %s", err.Error())
	}

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-termChan
		logrus.Infof("stopping...")
		sess.Stop()
	}()

	<-sess.Done()

	spec := sess.Spec()
	fmt.Printf("%s: %d frame(s), state %s\n", spec.FileName, spec.FrameIndex+1, spec.State)
	for _, line := range spec.Percentages.Lines() {
		fmt.Println(line)
	}
	if len(spec.Percentages) == 0 {
		fmt.Println("no detections")
	}

	if skipReport {
		return
	}
	if !spec.ReportReady {
		logrus.Fatalf("report not available: %s", spec.Error)
	}
	data, err := sess.Report(report.NewBuilder(conf.Report.Title))
	if err != nil {
		logrus.Fatalf("build report failed, %s", err.Error())
	}
	if err := os.WriteFile(outputFile, data, 0644); err != nil {
		logrus.Fatalf("write report failed, %s", err.Error())
	}
	logrus.Infof("report written to %s", outputFile)
}
