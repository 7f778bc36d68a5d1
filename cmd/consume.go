package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"detectdemo/internal/config"
	"detectdemo/internal/consumer"
	"detectdemo/internal/dao"
	"detectdemo/internal/history"
	"detectdemo/pkg/log"
)

var consumeCommand = &cobra.Command{
	Use:   "consume",
	Short: "Consume session events from NSQ into the history store",
	Long: `Consume session events from NSQ into the history store.
Run it against a history dir that no serve process has open.`,
	Run: func(cmd *cobra.Command, args []string) {
		conf, err := config.InitConfig(configFile)
		if err != nil {
			logrus.Fatal("initConfig error, ", err.Error())
		}

		store, err := history.NewStore(conf.History.Dir, log.NewLogger().WithField("component", "history"))
		if err != nil {
			logrus.Fatalf("failed to open history, %s", err.Error())
		}
		defer store.Close()

		c, err := consumer.NewConsumer(conf.NSQ, func(ev *dao.SessionEvent) error {
			rec := ev.Record
			if ev.ReportPath != "" {
				rec.ReportPath = ev.ReportPath
			}
			return store.Put(&rec)
		})
		if err != nil {
			logrus.Fatalf("Failed to create consumer: %v", err)
		}
		if err := c.Start(); err != nil {
			logrus.Fatalf("Failed to start consumer: %v", err)
		}

		termChan := make(chan os.Signal, 1)
		signal.Notify(termChan, syscall.SIGINT, syscall.SIGTERM)

		<-termChan
		logrus.Infof("consumer is shutting down...")
		c.Stop()
	},
}
