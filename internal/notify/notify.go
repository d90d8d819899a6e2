// Package notify turns classified call failures into user-facing messages.
// It is the notification boundary: callers forward an outcome here, the
// session layer never writes to the user directly.
package notify

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stolujeme/stolu-cli/internal/envelope"
)

// Severity tags a message.
type Severity string

// Severities.
const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Color modes accepted by New.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

const (
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
	ansiReset  = "\x1b[0m"
)

// Classified is anything that carries a machine error type. An empty type
// means success and is not forwarded.
type Classified interface {
	ErrorType() envelope.ErrorType
}

// severities overrides the default error severity per type.
var severities = map[envelope.ErrorType]Severity{
	envelope.TypeAuthenticationInvalid: SeverityWarning,
}

// SeverityFor returns the severity tag for t.
func SeverityFor(t envelope.ErrorType) Severity {
	if s, ok := severities[t]; ok {
		return s
	}

	return SeverityError
}

// Dispatcher writes localized messages to a writer. Safe for concurrent use.
type Dispatcher struct {
	mu      sync.Mutex
	out     io.Writer
	printer *message.Printer
	color   bool
}

// New creates a Dispatcher writing to out in the best match for lang
// ("en", "cs", "cs-CZ", ...). colorMode is auto, always, or never; auto
// colors only when out is a terminal.
func New(out io.Writer, lang string, colorMode string) *Dispatcher {
	return &Dispatcher{
		out:     out,
		printer: message.NewPrinter(matchLanguage(lang), message.Catalog(messages)),
		color:   useColor(out, colorMode),
	}
}

// Message returns the localized text for t, or the generic "unknown error"
// text naming t when no translation exists.
func (d *Dispatcher) Message(t envelope.ErrorType) string {
	return localize(d.printer, t)
}

// Notify writes the message for c if it carries an error type, and reports
// whether anything was written.
func (d *Dispatcher) Notify(c Classified) bool {
	t := c.ErrorType()
	if t == "" {
		return false
	}

	sev := SeverityFor(t)
	msg := d.Message(t)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.color {
		fmt.Fprintf(d.out, "%s%s:%s %s\n", colorFor(sev), sev, ansiReset, msg)
	} else {
		fmt.Fprintf(d.out, "%s: %s\n", sev, msg)
	}

	return true
}

func colorFor(s Severity) string {
	if s == SeverityWarning {
		return ansiYellow
	}

	return ansiRed
}

func useColor(out io.Writer, mode string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}

	if os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := out.(*os.File)
	if !ok {
		return false
	}

	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func matchLanguage(lang string) language.Tag {
	tag, err := language.Parse(lang)
	if err != nil {
		return language.English
	}

	_, idx, _ := language.NewMatcher(supported).Match(tag)

	return supported[idx]
}
