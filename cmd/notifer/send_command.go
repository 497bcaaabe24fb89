package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"notifer/internal/dispatch"
	"notifer/internal/notifer"
	"notifer/internal/resolver"
)

type sendResult struct {
	CorrelationID string             `json:"correlation_id"`
	Skipped       bool               `json:"skipped"`
	Sent          bool               `json:"sent"`
	Resolved      *resolver.Resolved `json:"resolved,omitempty"`
	Response      *notifer.Response  `json:"response,omitempty"`
	Error         string             `json:"error,omitempty"`
	Status        int                `json:"status,omitempty"`
}

func newSendResult(report dispatch.Report) sendResult {
	out := sendResult{
		CorrelationID: report.CorrelationID,
		Skipped:       report.Skipped,
		Sent:          report.Sent(),
		Response:      report.Response,
	}
	if !report.Skipped {
		resolved := report.Resolved
		out.Resolved = &resolved
	}
	if report.Failure != nil {
		out.Error = report.Failure.Error()
		out.Status = notifer.StatusCode(report.Failure)
	}
	return out
}

func newSendCommand(ctx *commandContext) *cobra.Command {
	var flags requestFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Resolve and send a build notification",
		Long: "Resolve the notification against the configured defaults and publish it.\n" +
			"Delivery failures are reported but only fail the command with --fail-on-error.",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := ctx.dispatcher(cmd, false)
			if err != nil {
				return err
			}
			job, err := flags.job()
			if err != nil {
				return err
			}
			report, err := d.Notify(cmd.Context(), job)
			if err != nil {
				return err
			}

			if jsonOutput {
				return writeJSON(cmd, newSendResult(report))
			}

			out := cmd.OutOrStdout()
			switch {
			case report.Skipped:
				fmt.Fprintf(out, "Notification skipped: %s builds are not enabled\n", displayOutcome(job.Outcome))
			case report.Failure != nil:
				fmt.Fprintf(out, "Notification failed: %v\n", report.Failure)
				var sendErr *notifer.SendError
				if errors.As(report.Failure, &sendErr) && sendErr.StatusCode == notifer.StatusNoResponse {
					fmt.Fprintln(out, "No response received; check server_url and network access")
				}
			default:
				fmt.Fprintf(out, "Notification sent to %s (id %s)\n", report.Resolved.Payload.Topic, report.Response.ID)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the send report as JSON")
	return cmd
}

var outcomeCaser = cases.Title(language.Und)

func displayOutcome(outcome resolver.Outcome) string {
	return outcomeCaser.String(outcome.Status())
}
