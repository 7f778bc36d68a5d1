package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"detectdemo/internal/version"
	"detectdemo/pkg/log"
)

var (
	logLevel   string
	logFormat  string
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "detectdemo",
	Short: "detectdemo counts detected objects in images and videos",
	Long: `Object detection on uploaded images and videos, with per-class tallies and a PDF report.
Version: ` + version.VERSION + `/` + version.COMMIT,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.InitLog(logLevel, logFormat)
	},
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "Log level (debug, info, warn, error, fatal)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "etc/config.yaml", "Path to config file")

	rootCmd.AddCommand(serveCommand)
	rootCmd.AddCommand(detectCommand)
	rootCmd.AddCommand(consumeCommand)
}
