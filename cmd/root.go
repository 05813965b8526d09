package cmd

import (
	"fmt"
	"os"

	"simpleink/config"
	"simpleink/logger"

	"github.com/spf13/cobra"
)

// cfg 在任何子命令运行前加载
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "simpleink",
	Short: "simpleink serves the pontos, playlists and história of the Simple Ink site.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfg = config.Load()
		logger.Init(logger.Config{
			Level:      cfg.LogLevel,
			OutputPath: cfg.LogFile,
			MaxBackups: 5,
			MaxAge:     30,
			Compress:   true,
		})
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
	// 不带子命令时直接启动服务器
	RunE:         runServer,
	SilenceUsage: true,
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
