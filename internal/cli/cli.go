package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vk/kamelrun/internal/app"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) error {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// globalOptions are the flags shared by every command.
type globalOptions struct {
	logLevel  string
	logFormat string
	logFile   string
}

func (g *globalOptions) validate() error {
	g.logLevel = strings.ToLower(g.logLevel)
	switch g.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}
	g.logFormat = strings.ToLower(g.logFormat)
	if g.logFormat != "text" && g.logFormat != "json" {
		return usageError("invalid log-format: must be 'text' or 'json'")
	}
	return nil
}

// apply copies the logging flags into an app configuration.
func (g *globalOptions) apply(cfg *app.Config) {
	cfg.LogLevel = g.logLevel
	cfg.LogFormat = g.logFormat
	cfg.LogFile = g.logFile
}

// NewRootCommand creates the kamelrun command tree. Command output goes to
// outW; logs of the run command go there too, while the other commands log
// to errW to keep their output parseable.
func NewRootCommand(outW, errW io.Writer) *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "kamelrun",
		Short: "Run Camel K style integrations locally",
		Long: `kamelrun loads Camel K integration sources (Java, Groovy, Kotlin, JavaScript,
YAML or XML routes with a camel-k modeline), resolves their {{property}}
placeholders and runs every timer route locally. It also prints the
'kamel run' command line and the Integration resource of a source.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return g.validate()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(outW)
	root.SetErr(errW)
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: 2, Message: err.Error()}
	})

	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "Log format (text, json)")
	root.PersistentFlags().StringVar(&g.logFile, "log-file", "", "Also append logs to this file, rotated by size")

	root.AddCommand(
		newRunCmd(g),
		newInspectCmd(g),
		newArgsCmd(),
		newManifestCmd(),
		newInitCmd(),
	)
	return root
}

// Execute runs the command tree with args.
func Execute(ctx context.Context, args []string, outW, errW io.Writer) error {
	root := NewRootCommand(outW, errW)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if err == nil {
		return nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}
	// cobra reports unknown commands and bad positional args as plain errors.
	if strings.HasPrefix(err.Error(), "unknown command") || strings.Contains(err.Error(), "arg(s)") {
		return &ExitError{Code: 2, Message: err.Error()}
	}
	return err
}
