package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/deploymenttheory/go-minidump/internal/device"
	internal "github.com/deploymenttheory/go-minidump/internal/services"
	"github.com/deploymenttheory/go-minidump/pkg/app"
	"github.com/deploymenttheory/go-minidump/pkg/services"
)

var (
	// Global output flags only
	verbose      bool
	quiet        bool
	outputFormat string
	configFile   string

	// Loaded in PersistentPreRunE
	config *device.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "go-minidump",
	Short: "Windows minidump inspector and memory region extractor",
	Long: `go-minidump is a cross-platform, read-only command-line tool for
inspecting Windows minidump (MDMP) crash dumps.

It validates the container header, walks the stream directory and rebuilds
the captured memory ranges as loadable regions without any Windows tooling.

Commands:
  inspect     Summarize a dump: header, streams and regions
  streams     List the stream directory
  regions     List reconstructed memory regions
  read        Dump captured memory by region or address
  probe       Identify a file's format
  config      Show the effective configuration`,
	Version:           "0.1.0-dev",
	SilenceUsage:      true,
	PersistentPreRunE: loadRuntime,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if code := app.ErrorCode(err); code != "" {
			fmt.Fprintf(os.Stderr, "Code: %s\n", code)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "output format (table, json, yaml)")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default searches for minidump-config.yaml)")

	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// loadRuntime reads configuration and installs the process logger
func loadRuntime(cmd *cobra.Command, args []string) error {
	cfg, err := device.LoadConfig(configFile)
	if err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "failed to load configuration", err)
	}
	if outputFormat != "" {
		cfg.OutputFormat = outputFormat
		if err := cfg.Validate(); err != nil {
			return app.NewError(app.ErrCodeInvalidInput, "invalid --output", err)
		}
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	l, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}

	config = cfg
	logger = l
	internal.SetLogger(logger)
	return nil
}

// newLogger builds a console logger writing to stderr at the given level
func newLogger(level string) (*zap.Logger, error) {
	atomic, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	zc := zap.NewDevelopmentConfig()
	zc.Level = atomic
	zc.DisableStacktrace = true
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	return zc.Build()
}

// newContext creates the application context for a command
func newContext() *app.Context {
	ctx := app.NewContext()
	ctx.OutputFormat = config.OutputFormat
	ctx.Verbose = verbose
	ctx.Quiet = quiet
	ctx.Config = config
	ctx.Logger = logger
	return ctx
}

// newFactory creates the service factory for the loaded configuration
func newFactory() (*services.ServiceFactory, error) {
	factory := services.NewServiceFactory(config)
	if err := factory.Initialize(); err != nil {
		return nil, err
	}
	return factory, nil
}
