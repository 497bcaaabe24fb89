package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"notifer/internal/notifer"
	"notifer/internal/resolver"
)

type previewResult struct {
	Notify   bool              `json:"notify"`
	Outcome  string            `json:"outcome"`
	Resolved resolver.Resolved `json:"resolved"`
	URL      string            `json:"url"`
}

func newPreviewCommand(ctx *commandContext) *cobra.Command {
	var flags requestFlags
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show the notification send would publish, without sending it",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := ctx.dispatcher(cmd, true)
			if err != nil {
				return err
			}
			job, err := flags.job()
			if err != nil {
				return err
			}
			resolved, err := d.Preview(job)
			if err != nil {
				return err
			}

			result := previewResult{
				Notify:   resolver.ShouldNotify(job.Outcome, job.Preferences),
				Outcome:  job.Outcome.String(),
				Resolved: resolved,
				URL:      notifer.BuildURL(resolved.ServerURL, resolved.Payload.Topic),
			}
			if jsonOutput {
				return writeJSON(cmd, result)
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)
			payload := resolved.Payload
			rows := [][]string{
				{"Notify", colorYesNo(result.Notify, colorize)},
				{"Outcome", result.Outcome},
				{"URL", result.URL},
				{"Credentials ID", resolved.CredentialsID},
				{"Title", payload.Title},
				{"Message", payload.Message},
				{"Priority", strconv.Itoa(payload.Priority)},
				{"Tags", strings.Join(payload.Tags, ", ")},
			}
			fmt.Fprintln(out, renderTable([]string{"Field", "Value"}, rows, []columnAlignment{alignLeft, alignLeft}))
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Write the resolved notification as JSON")
	return cmd
}
