package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTestConnectionCommand(ctx *commandContext) *cobra.Command {
	var serverURL string
	var credentialsID string
	var topic string

	cmd := &cobra.Command{
		Use:   "test-connection",
		Short: "Send a test notification to verify server, topic and token",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := ctx.dispatcher(cmd, false)
			if err != nil {
				return err
			}
			resp, err := d.TestConnection(cmd.Context(), serverURL, credentialsID, topic)
			if err != nil {
				return fmt.Errorf("test connection: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent (id %s)\n", resp.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&serverURL, "server-url", "", "Notifer server URL (defaults to the configured server)")
	cmd.Flags().StringVar(&credentialsID, "credentials-id", "", "Credentials id holding the topic token")
	cmd.Flags().StringVar(&topic, "topic", "", "Topic to publish the test message to")
	return cmd
}
