package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/wsupload/service/internal/wsclient"
)

func sendCmd() *cobra.Command {
	var (
		url     string
		token   string
		timeout time.Duration
	)

	cmd := &cobra.Command{
		Use:   "send <file> [file...]",
		Short: "Upload files over one socket",
		Long: `Send each file as a base64 frame and print the server reply.

Files are sent in order and the next file is only sent after the
previous reply arrives. An upload error does not stop the run, but
any other error reply means the server closed the socket.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			c, err := wsclient.Dial(ctx, url, wsclient.Options{Token: token, Timeout: timeout})
			if err != nil {
				return err
			}
			defer c.Close()

			out := cmd.OutOrStdout()
			for _, path := range args {
				reply, err := c.SendFile(path)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s\n", path, reply)
				if strings.HasPrefix(reply, "Error: ") {
					return fmt.Errorf("server closed the connection after %s", path)
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&url, "url", "u", "ws://localhost:8080/ws", "Socket URL")
	cmd.Flags().StringVarP(&token, "token", "t", "", "Access token")
	cmd.Flags().DurationVar(&timeout, "timeout", 30*time.Second, "Per-file timeout")

	return cmd
}
