package main

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/stolujeme/stolu-cli/internal/session"
)

// getParallelism bounds concurrent requests issued by one get invocation.
const getParallelism = 4

// contentPreviewLimit truncates content in table output.
const contentPreviewLimit = 80

func newGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <path>...",
		Short: "Send GET requests and print the response content",
		Long: `Send a GET request for each path, concurrently, using the current
session. Every response is printed; failures are reported through the
usual error messages.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runGet,
	}
}

// getResult is one row of get output.
type getResult struct {
	Path     string         `json:"path" yaml:"path"`
	Endpoint string         `json:"endpoint,omitempty" yaml:"endpoint,omitempty"`
	Error    string         `json:"error,omitempty" yaml:"error,omitempty"`
	Content  map[string]any `json:"content,omitempty" yaml:"content,omitempty"`

	raw json.RawMessage
}

type getResults []getResult

func (r getResults) Headers() []string { return []string{"PATH", "STATUS", "CONTENT"} }

func (r getResults) Rows() [][]string {
	rows := make([][]string, 0, len(r))

	for i := range r {
		status, content := "ok", preview(r[i].raw)
		if r[i].Error != "" {
			status, content = r[i].Error, ""
		}

		rows = append(rows, []string{r[i].Path, status, content})
	}

	return rows
}

func preview(raw json.RawMessage) string {
	s := string(raw)
	if len(s) > contentPreviewLimit {
		return s[:contentPreviewLimit-3] + "..."
	}

	return s
}

func runGet(cmd *cobra.Command, args []string) error {
	cc := mustCLIContext(cmd.Context())

	app, err := newApp(cmd.Context(), cc)
	if err != nil {
		return err
	}
	defer app.Close()

	outcomes := make([]session.Outcome, len(args))

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(getParallelism)

	for i, path := range args {
		g.Go(func() error {
			outcomes[i] = app.Client.Get(ctx, path)

			cc.Logger.Debug("get finished",
				slog.String("path", path),
				slog.Bool("ok", outcomes[i].OK()),
			)

			return nil
		})
	}

	// Failures are values, not errors, so every request runs to completion.
	if err := g.Wait(); err != nil {
		return err
	}

	results := make(getResults, len(args))
	failed := 0

	for i, out := range outcomes {
		results[i] = getResult{Path: args[i]}

		if !out.OK() {
			failed++
			results[i].Error = string(out.ErrorType())

			if out.Failure != nil {
				results[i].Endpoint = out.Failure.Endpoint
			}

			app.Notifier.Notify(out)

			continue
		}

		results[i].Endpoint = out.Success.Endpoint
		results[i].Content = out.Success.Content
		results[i].raw = out.Success.RawContent
	}

	if err := printResult(cc.Stdout, cc.Cfg.UI.Output, results); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%w: %d of %d requests failed", errReported, failed, len(args))
	}

	return nil
}
