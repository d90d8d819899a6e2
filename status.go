package main

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/stolujeme/stolu-cli/internal/tokeninfo"
)

// Session state constants for status reporting.
const (
	sessionStateAnonymous = "anonymous"
	sessionStateValid     = "valid"
	sessionStateRejected  = "rejected"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Validate the stored session and show its state",
		Long: `Load the stored session token, confirm it with the server, and show the
result. A token that cannot be confirmed, whether the server rejects it or
cannot be reached, is removed from the store.`,
		Args: cobra.NoArgs,
		RunE: runStatus,
	}
}

// statusReport is the output schema of the status command.
type statusReport struct {
	BaseURL       string `json:"base_url" yaml:"base_url"`
	Store         string `json:"store" yaml:"store"`
	State         string `json:"state" yaml:"state"`
	Authenticated bool   `json:"authenticated" yaml:"authenticated"`
	Token         string `json:"token,omitempty" yaml:"token,omitempty"`
	TokenFormat   string `json:"token_format,omitempty" yaml:"token_format,omitempty"`
	Subject       string `json:"subject,omitempty" yaml:"subject,omitempty"`

	ExpiresAt time.Time `json:"expires_at,omitzero" yaml:"expires_at,omitempty"`
	Expired   bool      `json:"expired,omitempty" yaml:"expired,omitempty"`

	// ProbeError is the machine error type of a failed validation probe.
	ProbeError string `json:"probe_error,omitempty" yaml:"probe_error,omitempty"`
}

func (r *statusReport) Headers() []string { return []string{"FIELD", "VALUE"} }

func (r *statusReport) Rows() [][]string {
	rows := [][]string{
		{"api", r.BaseURL},
		{"store", r.Store},
		{"state", r.State},
		{"authenticated", strconv.FormatBool(r.Authenticated)},
	}

	if r.Token != "" {
		rows = append(rows,
			[]string{"token", r.Token},
			[]string{"format", r.TokenFormat},
		)
	}

	if r.Subject != "" {
		rows = append(rows, []string{"subject", r.Subject})
	}

	if !r.ExpiresAt.IsZero() {
		rows = append(rows, []string{"expires", formatTime(r.ExpiresAt)})
	}

	if r.ProbeError != "" {
		rows = append(rows, []string{"probe error", r.ProbeError})
	}

	return rows
}

func runStatus(cmd *cobra.Command, _ []string) error {
	cc := mustCLIContext(cmd.Context())
	ctx := cmd.Context()

	app, err := newApp(ctx, cc)
	if err != nil {
		return err
	}
	defer app.Close()

	stored := app.Session.Credential()

	// Seeding scheduled the validation pass; its probe result is the answer.
	app.Session.Wait()

	report := buildStatusReport(cc, stored, app.Session.Authenticated(), time.Now())

	if probe := app.Session.LastProbe(); probe != nil && !probe.OK() {
		report.ProbeError = string(probe.ErrorType())
	}

	return printResult(cc.Stdout, cc.Cfg.UI.Output, report)
}

func buildStatusReport(cc *CLIContext, stored string, authenticated bool, now time.Time) *statusReport {
	report := &statusReport{
		BaseURL:       cc.Cfg.API.BaseURL,
		Store:         cc.Cfg.Storage.Backend,
		Authenticated: authenticated,
	}

	switch {
	case stored == "":
		report.State = sessionStateAnonymous
	case authenticated:
		report.State = sessionStateValid
	default:
		report.State = sessionStateRejected
	}

	if stored == "" {
		return report
	}

	info := tokeninfo.Inspect(stored, now)
	report.Token = tokeninfo.Redact(stored)
	report.TokenFormat = info.Format
	report.Subject = info.Subject
	report.ExpiresAt = info.ExpiresAt
	report.Expired = info.Expired

	return report
}
