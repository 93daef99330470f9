// Package cli implements the trajmap command line: palette inspection, offline
// and online layer rendering, and triggering backend analysis runs.
package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/TrajMap/internal/application/mapview"
	"github.com/turtacn/TrajMap/internal/backend"
	"github.com/turtacn/TrajMap/internal/config"
	"github.com/turtacn/TrajMap/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/TrajMap/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
	BackendURL   string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	Service      mapview.Service
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
}

// ServiceFactory builds the map service for commands that talk to the
// backend.
type ServiceFactory func(cfg *config.Config, logger logging.Logger) (mapview.Service, error)

type rootSettings struct {
	serviceFactory ServiceFactory
}

// RootOption configures NewRootCommand.
type RootOption func(*rootSettings)

// WithServiceFactory replaces the backend-backed service, mainly for tests.
func WithServiceFactory(f ServiceFactory) RootOption {
	return func(s *rootSettings) {
		if f != nil {
			s.serviceFactory = f
		}
	}
}

// NewRootCommand creates the root cobra command with all global flags and
// subcommands.
func NewRootCommand(options ...RootOption) *cobra.Command {
	opts := &RootOptions{}
	settings := &rootSettings{serviceFactory: defaultServiceFactory}
	for _, o := range options {
		o(settings)
	}

	cmd := &cobra.Command{
		Use:   "trajmap",
		Short: "TrajMap CLI: coloured trajectory and cluster layers",
		Long: "TrajMap draws trajectories, TRACLUS partitions and clusters from the clustering\n" +
			"service as coloured map layers, and triggers TRACLUS and simulated annealing runs.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts, settings)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: environment and built-in defaults)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 30*time.Second, "global operation timeout")
	pf.StringVar(&opts.BackendURL, "backend", "", "clustering service base URL (overrides backend.base_url)")

	cmd.AddCommand(
		NewColorsCmd(),
		NewRenderCmd(),
		NewTraclusCmd(),
		NewAnnealCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config, logger and service, then stores the
// CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions, settings *rootSettings) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "table":
	default:
		return errors.New(errors.ErrCodeValidation, "unsupported output format").WithDetail(opts.OutputFormat)
	}
	if opts.NoColor {
		color.NoColor = true
	}

	cfg, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	svc, err := settings.serviceFactory(cfg, logger)
	if err != nil {
		return fmt.Errorf("service initialization failed: %w", err)
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		Service:      svc,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Verbose:      opts.Verbose,
		NoColor:      opts.NoColor,
		Timeout:      opts.Timeout,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

// initConfig loads configuration with priority: flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, error) {
	var loadOpts []config.LoadOption
	if opts.ConfigPath != "" {
		loadOpts = append(loadOpts, config.WithConfigPath(opts.ConfigPath))
	}
	if opts.BackendURL != "" {
		loadOpts = append(loadOpts, config.WithOverrides(map[string]interface{}{
			"backend.base_url": opts.BackendURL,
		}))
	}
	return config.Load(loadOpts...)
}

// initLogger creates a console logger on stderr so stdout stays clean for
// rendered output.
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := strings.ToLower(opts.LogLevel)
	if opts.Verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

func defaultServiceFactory(cfg *config.Config, logger logging.Logger) (mapview.Service, error) {
	client, err := backend.NewClient(cfg.Backend.BaseURL, cfg.Backend.ClientOptions(logger, nil)...)
	if err != nil {
		return nil, err
	}
	return mapview.NewService(client, logger,
		mapview.WithRenderOptions(cfg.Render.Options()),
		mapview.WithRawColor(cfg.Render.RawColor),
	), nil
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New(errors.ErrCodeInternal, "CLIContext not found in command context")
	}
	return cliCtx, nil
}

// commandContext bounds a command by the global --timeout.
func commandContext(cmd *cobra.Command, cliCtx *CLIContext) (context.Context, context.CancelFunc) {
	if cliCtx.Timeout <= 0 {
		return context.WithCancel(cmd.Context())
	}
	return context.WithTimeout(cmd.Context(), cliCtx.Timeout)
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// tableProvider is implemented by results that know how to lay themselves
// out as rows.
type tableProvider interface {
	TableHeaders() []string
	TableRows() [][]string
}

// PrintResult outputs data in the format specified by CLIContext.
func PrintResult(cmd *cobra.Command, data interface{}) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return printJSON(cmd, data)
	}

	switch cliCtx.OutputFormat {
	case "json":
		return printJSON(cmd, data)
	case "table":
		return printTable(cmd, data)
	default:
		return printText(cmd, data)
	}
}

func printJSON(cmd *cobra.Command, data interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printText(cmd *cobra.Command, data interface{}) error {
	switch v := data.(type) {
	case string:
		fmt.Fprintln(cmd.OutOrStdout(), v)
	case fmt.Stringer:
		fmt.Fprintln(cmd.OutOrStdout(), v.String())
	default:
		fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", v)
	}
	return nil
}

func printTable(cmd *cobra.Command, data interface{}) error {
	if tp, ok := data.(tableProvider); ok {
		fmt.Fprint(cmd.OutOrStdout(), FormatTable(tp.TableHeaders(), tp.TableRows()))
		return nil
	}
	return printText(cmd, data)
}

// PrintError writes a formatted error message to stderr.
func PrintError(cmd *cobra.Command, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.RedString("Error:"), err.Error())
}

// PrintSuccess writes a formatted success message to stderr, leaving stdout
// to the command's result.
func PrintSuccess(cmd *cobra.Command, msg string) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", color.GreenString("OK:"), msg)
}

// FormatTable renders headers and rows as a borderless table.
func FormatTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetHeader(headers)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetColumnSeparator(" ")
	table.SetHeaderLine(true)
	table.AppendBulk(rows)
	table.Render()
	return buf.String()
}

//Personal.AI order the ending
