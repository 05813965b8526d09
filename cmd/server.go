package cmd

import (
	"simpleink/server"

	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "启动 simpleink 服务器",
	Long:  `启动 HTTP 服务器，提供 /api 接口、上传文件访问和前端页面`,
	RunE:  runServer,
}

func runServer(cmd *cobra.Command, args []string) error {
	return server.Start(cfg)
}

func init() {
	rootCmd.AddCommand(serverCmd)
}
