// Command wsclient sends files to a wsupload server and mints access tokens.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "wsclient",
		Short: "Client for the wsupload socket",
		Long: `wsclient talks to a wsupload server.

Use "send" to upload one or more files over a single socket, and
"token" to mint an access token when the server has auth enabled.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		sendCmd(),
		tokenCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
