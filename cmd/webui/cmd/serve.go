package cmd

import (
	"github.com/spf13/cobra"

	"github.com/neo-mofox/webui/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the WebUI server",
	Run: func(cmd *cobra.Command, args []string) {
		s := server.New()
		s.RegisterRoutes()
		s.Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
