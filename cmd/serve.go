package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/nsqio/go-nsq"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"detectdemo/internal/config"
	"detectdemo/internal/history"
	"detectdemo/internal/metrics"
	"detectdemo/internal/recorder"
	"detectdemo/internal/report"
	"detectdemo/internal/server"
	"detectdemo/internal/session"
	"detectdemo/pkg/log"
)

var serveCommand = &cobra.Command{
	Use:   "serve",
	Short: "Start detectdemo server",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func runServe() {
	conf, err := config.InitConfig(configFile)
	if err != nil {
		logrus.Fatal("initConfig error, ", err.Error())
	}

	logrus.Infof("config: %+v", conf)

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	m := metrics.New()
	proc := newProcessor(ctx, conf, m)
	manager := session.NewManager(ctx, conf, proc, m)

	var store *history.Store
	if conf.History.Enabled {
		store, err = history.NewStore(conf.History.Dir, log.GetLogger(ctx).WithField("component", "history"))
		if err != nil {
			logrus.Fatalf("failed to open history, %s", err.Error())
		}
		defer store.Close()
	}

	var producer recorder.Publisher
	if conf.NSQ.Enabled {
		p, err := nsq.NewProducer(conf.NSQ.NSQDAddr, nsq.NewConfig())
		if err != nil {
			logrus.Fatalf("create NSQ producer failed: %s", err.Error())
		}
		defer p.Stop()
		producer = p
	}
	rec := recorder.NewRecorder(ctx, conf, store, newMinioClient(ctx, conf), producer)
	manager.OnFinish = rec.SessionFinished

	srv, err := server.NewServer(ctx, conf, manager, report.NewBuilder(conf.Report.Title), store, m)
	if err != nil {
		logrus.Fatalf("newServer error, %s", err.Error())
		return
	}
	go srv.Start()

	termChan := make(chan os.Signal, 1)
	signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

	<-termChan
	logrus.Infof("server is shutting down...")
	srv.Shutdown()
	manager.Shutdown()
}
