// Package cmd implements the terminate command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hostops/terminate/internal/config"
	"github.com/hostops/terminate/internal/diag"
	"github.com/hostops/terminate/internal/disposition"
	"github.com/hostops/terminate/internal/eventlog"
	"github.com/hostops/terminate/internal/lock"
	"github.com/hostops/terminate/internal/proc"
	"github.com/hostops/terminate/internal/reporter"
	"github.com/hostops/terminate/internal/run"
	"github.com/hostops/terminate/internal/style"
	"github.com/hostops/terminate/internal/ui"
)

// configPath is the --config flag.
var configPath string

// Collaborators of the root command. Tests replace them.
var (
	newProvider   = func() proc.Provider { return proc.NewSystemProvider() }
	newTerminator = func() disposition.Terminator { return proc.SystemTerminator{} }
	newResolver   = defaultResolver
	newRunID      = uuid.NewString
)

var rootCmd = &cobra.Command{
	Use:   "terminate TARGET=<name> TTL=<minutes> CONTRACT=<TAG|KILL> [LOG=DEBUG]",
	Short: "Report on or stop processes that have run too long",
	Long:  rootLong,
	Example: `  # stop every notepad.exe started more than 15 minutes ago
  terminate TARGET=notepad.exe TTL=15 CONTRACT=KILL

  # report them to inventory instead
  terminate TARGET=notepad TTL=15 CONTRACT=TAG`,
	Args:          cobra.ArbitraryArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	// Unknown dashed tokens are dropped instead of failing the run.
	FParseErrWhitelist: cobra.FParseErrWhitelist{UnknownFlags: true},
	RunE:               runTerminate,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (TOML or YAML); defaults to $TERMINATE_CONFIG")
}

// Execute runs the command line and returns the process exit code.
func Execute() int {
	ui.InitTheme()
	ui.ApplyThemeMode()

	if err := rootCmd.Execute(); err != nil {
		if code, ok := exitCode(err); ok {
			return code
		}
		fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorPrefix, err)
		return 1
	}
	return 0
}

// runTerminate is the scheduled run. It always exits 0: bad arguments show
// help, and every runtime failure is logged.
func runTerminate(cmd *cobra.Command, args []string) error {
	rc, parseErr := run.ParseArgs(args)

	cfg, cfgErr := config.Load(configPath)
	if cfgErr != nil {
		cfg, _ = config.Fallback()
	}

	runID := newRunID()
	log, logErr := diag.Open(diag.Options{
		Dir:     cfg.Log.Dir,
		Level:   cfg.Log.Level,
		Debug:   rc.Debug,
		RunID:   runID,
		Console: cmd.OutOrStdout(),
		NoColor: !ui.ShouldUseColor(),
	})
	defer log.Close()

	if logErr != nil {
		log.Warn().Err(logErr).Msg("diagnostics log file unavailable, console only")
	}
	if cfgErr != nil {
		log.Warn().Err(cfgErr).Msg("config not loaded, using built-in defaults")
	}

	if parseErr != nil {
		log.Error().Err(parseErr).Msgf("Error pulling command line parameters: %v", parseErr)
		return cmd.Help()
	}
	if !rc.Valid() {
		return cmd.Help()
	}

	tagger := reporter.NewTagger(newResolver(cfg), cfg.Reporter.Executable, cfg.Reporter.Timeout.Duration, log.Logger)
	tagger.NameField = cfg.Reporter.NameField
	tagger.AgeField = cfg.Reporter.AgeField

	d := &run.Driver{
		Provider: newProvider(),
		Engine:   disposition.New(newTerminator(), tagger, log.Logger),
		Log:      log.Logger,
		Events:   eventlog.NewLogger(cfg.Log.Dir, runID),
		RunID:    runID,
	}
	if cfg.LockEnabled() {
		d.Lock = lock.New(cfg.Lock.Dir)
	}

	d.Run(cmd.Context(), rc)
	return nil
}

// defaultResolver prefers a configured install path over the registry.
func defaultResolver(cfg *config.Config) reporter.Resolver {
	var chain reporter.Chain
	if cfg.Reporter.InstallPath != "" {
		chain = append(chain, reporter.StaticResolver(cfg.Reporter.InstallPath))
	}
	return append(chain, reporter.RegistryResolver{
		Key:   cfg.Reporter.RegistryKey,
		Value: cfg.Reporter.RegistryValue,
	})
}
