package main

import (
	"os"

	"github.com/spf13/cobra"

	"notifer/internal/dispatch"
	"notifer/internal/expand"
	"notifer/internal/resolver"
)

// requestFlags holds the per-invocation notification parameters shared by
// send and preview.
type requestFlags struct {
	topic         string
	message       string
	title         string
	priority      int
	tags          []string
	credentialsID string
	serverURL     string
	failOnError   bool

	result      string
	jobName     string
	buildNumber string
	buildURL    string

	notifySuccess  bool
	notifyFailure  bool
	notifyUnstable bool
	notifyAborted  bool

	noExpand bool
	envFiles []string
}

func (f *requestFlags) register(cmd *cobra.Command) {
	prefs := resolver.DefaultPreferences()
	flags := cmd.Flags()

	flags.StringVar(&f.topic, "topic", "", "Topic to publish to (defaults to the configured topic)")
	flags.StringVarP(&f.message, "message", "m", "", "Message body (generated from build info when empty)")
	flags.StringVar(&f.title, "title", "", "Notification title (generated from build info when empty)")
	flags.IntVar(&f.priority, "priority", resolver.AutoPriority, "Priority 1-5; 0 derives it from the build result")
	flags.StringArrayVar(&f.tags, "tags", nil, "Extra tags, comma or space separated (repeatable)")
	flags.StringVar(&f.credentialsID, "credentials-id", "", "Credentials id holding the topic token")
	flags.StringVar(&f.serverURL, "server-url", "", "Notifer server URL (defaults to the configured server)")
	flags.BoolVar(&f.failOnError, "fail-on-error", false, "Exit non-zero when the notification cannot be delivered")

	flags.StringVar(&f.result, "result", os.Getenv("BUILD_RESULT"), "Build result: SUCCESS, FAILURE, UNSTABLE, ABORTED (empty while running)")
	flags.StringVar(&f.jobName, "job", os.Getenv("JOB_NAME"), "Job name used in generated text")
	flags.StringVar(&f.buildNumber, "build-number", os.Getenv("BUILD_NUMBER"), "Build number used in generated text")
	flags.StringVar(&f.buildURL, "build-url", os.Getenv("BUILD_URL"), "Build URL used in generated text")

	flags.BoolVar(&f.notifySuccess, "notify-success", prefs.Success, "Notify on successful builds")
	flags.BoolVar(&f.notifyFailure, "notify-failure", prefs.Failure, "Notify on failed builds")
	flags.BoolVar(&f.notifyUnstable, "notify-unstable", prefs.Unstable, "Notify on unstable builds")
	flags.BoolVar(&f.notifyAborted, "notify-aborted", prefs.Aborted, "Notify on aborted builds")

	flags.BoolVar(&f.noExpand, "no-expand", false, "Do not expand $VAR references in topic, message, title and tags")
	flags.StringArrayVar(&f.envFiles, "env-file", nil, "Dotenv file supplying variables for expansion; the process environment wins (repeatable)")
}

func (f *requestFlags) job() (dispatch.Job, error) {
	raw := resolver.RawRequest{
		Topic:         f.topic,
		Message:       f.message,
		Title:         f.title,
		Tags:          resolver.NormalizeTags(f.tags...),
		CredentialsID: f.credentialsID,
		ServerURL:     f.serverURL,
		FailOnError:   f.failOnError,
	}
	raw.SetPriority(f.priority)

	job := dispatch.Job{
		Request: raw,
		Outcome: resolver.ParseOutcome(f.result),
		Preferences: resolver.Preferences{
			Success:  f.notifySuccess,
			Failure:  f.notifyFailure,
			Unstable: f.notifyUnstable,
			Aborted:  f.notifyAborted,
		},
		Build: resolver.BuildInfo{
			JobName: f.jobName,
			Number:  f.buildNumber,
			URL:     f.buildURL,
		},
	}
	if f.noExpand {
		return job, nil
	}
	lookup := expand.Env()
	if len(f.envFiles) > 0 {
		files, err := expand.FromDotenv(f.envFiles...)
		if err != nil {
			return dispatch.Job{}, err
		}
		lookup = expand.Chain(lookup, files)
	}
	job.Expand = expand.Func(lookup)
	return job, nil
}
