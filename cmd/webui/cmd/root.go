package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "webui",
	Short: "MoFox WebUI companion server",
	Long: `The WebUI companion server for the MoFox chatbot: live chat monitoring,
log streaming, config editing, a simulated chatroom and self-update,
all behind one HTTP/WebSocket API.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
