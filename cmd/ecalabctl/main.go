package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"ecalab/internal/compress"
	"ecalab/internal/metrics"
	"ecalab/internal/storage"
	"ecalab/internal/survey"
	labapi "ecalab/pkg/ecalab"
)

const exportsDir = "exports"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	return execute(ctx, args, os.Stdout, os.Stderr)
}

// execute runs one command line against the given streams and releases the client
// afterwards, writing the metrics textfile when one was requested.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{stdout: stdout, stderr: stderr}
	root := a.rootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

type app struct {
	stdout io.Writer
	stderr io.Writer

	flags    settings
	settings settings
	config   fileConfig

	logger     *log.Logger
	metrics    *metrics.Recorder
	client     *labapi.Client
	storeReady bool
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "ecalabctl [rule] [width] [generations]",
		Short: "Elementary cellular automaton laboratory",
		Long: `ecalabctl runs and analyzes the 256 elementary cellular automata on a ring.

Without a subcommand it traces a rule from a single live cell, like "trace".
Positional numbers that are missing or invalid fall back to the defaults.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.prepare(cmd)
		},
		RunE: a.runTrace,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.ConfigPath, "config", "", "optional YAML config path")
	pf.StringVar(&a.flags.StoreKind, "store", storage.DefaultStoreKind(), "store backend: memory|sqlite|badger")
	pf.StringVar(&a.flags.DBPath, "db-path", "", "sqlite database file or badger directory (badger runs in memory when empty)")
	pf.StringVar(&a.flags.ArtifactsDir, "artifacts-dir", "runs", "directory for saved run artifacts")
	pf.StringVar(&a.flags.Codec, "codec", compress.DeflateName, "compression codec: deflate|zstd")
	pf.IntVar(&a.flags.Workers, "workers", survey.DefaultWorkers, "worker count for 256-rule surveys")
	pf.StringVar(&a.flags.LogLevel, "log-level", "warn", "log level: debug|info|warn|error")
	pf.BoolVar(&a.flags.Save, "save", false, "save the analysis as a run")
	pf.StringVar(&a.flags.MetricsFile, "metrics-file", "", "write Prometheus text metrics to this path on exit")

	root.AddCommand(
		a.traceCommand(),
		a.cycleCommand(),
		a.analyzeCommand(),
		a.entropyCommand(),
		a.entropySurveyCommand(),
		a.compressCommand(),
		a.compressSurveyCommand(),
		a.inferCommand(),
		a.radiusCommand(),
		a.radiusSurveyCommand(),
		a.dependencyCommand(),
		a.dependencyInferCommand(),
		a.rulesCommand(),
		a.runsCommand(),
		a.showCommand(),
		a.exportCommand(),
	)
	return root
}

// prepare resolves settings (defaults < config file < explicit flags) and builds the
// logger, metrics recorder and client shared by every command.
func (a *app) prepare(cmd *cobra.Command) error {
	s := a.flags
	if s.ConfigPath != "" {
		cfg, err := loadConfig(s.ConfigPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		a.config = cfg
		s = cfg.apply(s, cmd.Flags().Changed)
	}
	a.settings = s

	level, err := log.ParseLevel(s.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", s.LogLevel, err)
	}
	a.logger = log.NewWithOptions(a.stderr, log.Options{
		Prefix:          "ecalabctl",
		Level:           level,
		ReportTimestamp: true,
	})
	a.metrics = metrics.NewRecorder()

	client, err := labapi.New(labapi.Options{
		StoreKind:    s.StoreKind,
		DBPath:       s.DBPath,
		ArtifactsDir: s.ArtifactsDir,
		ExportsDir:   exportsDir,
		Codec:        s.Codec,
		Workers:      s.Workers,
		Logger:       a.logger,
		Metrics:      a.metrics,
	})
	if err != nil {
		return err
	}
	a.client = client
	a.logger.Debug("client ready", "store", s.StoreKind, "codec", s.Codec, "workers", s.Workers)
	return nil
}

// initStore opens the store on first use; analyses that are not saved never touch it.
func (a *app) initStore(cmd *cobra.Command) error {
	if a.storeReady {
		return nil
	}
	if err := a.client.Init(cmd.Context()); err != nil {
		return err
	}
	a.storeReady = true
	return nil
}

func (a *app) save(cmd *cobra.Command, req labapi.SaveRequest) error {
	if !a.settings.Save {
		return nil
	}
	if err := a.initStore(cmd); err != nil {
		return err
	}
	item, err := a.client.Save(cmd.Context(), req)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "saved run_id=%s dir=%s\n", item.RunID, item.ArtifactsDir)
	return nil
}

func (a *app) close() error {
	var errs []error
	if a.client != nil {
		errs = append(errs, a.client.Close())
	}
	if a.metrics != nil && a.settings.MetricsFile != "" {
		if err := a.metrics.WriteTextfile(a.settings.MetricsFile); err != nil {
			errs = append(errs, fmt.Errorf("write metrics: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (a *app) out() renderer {
	return renderer{w: a.stdout, styled: isTerminal(a.stdout)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
