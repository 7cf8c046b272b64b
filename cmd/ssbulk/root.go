package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/ssbulk/internal/config"
	"github.com/kailas-cloud/ssbulk/internal/domain"
	logpkg "github.com/kailas-cloud/ssbulk/internal/logger"
	"github.com/kailas-cloud/ssbulk/internal/metrics"
	savedsearchrepo "github.com/kailas-cloud/ssbulk/internal/repository/savedsearch"
	"github.com/kailas-cloud/ssbulk/internal/transport/splunk"
	"github.com/kailas-cloud/ssbulk/internal/usecase/update"
	"github.com/kailas-cloud/ssbulk/internal/version"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1 // remote or runtime failure
	exitConfig  = 2 // invalid flags or profile
)

// options holds the parsed command line.
type options struct {
	app       string
	search    string
	parameter string
	values    []string
	jsonDico  bool
	key       string
	appendTo  bool
	dryRun    bool

	configPath  string
	scheme      string
	host        string
	port        int
	username    string
	insecure    bool
	logLevel    string
	metricsFile string
}

// execute runs the command and maps its error to an exit code.
func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return exitOK
	}

	fmt.Fprintln(stderr, "Error:", err)
	if errors.Is(err, domain.ErrInvalidConfig) {
		return exitConfig
	}
	return exitFailure
}

func newRootCmd() *cobra.Command {
	o := &options{}

	cmd := &cobra.Command{
		Use:   "ssbulk --app APP --parameter NAME --value VALUE [VALUE...]",
		Short: "Bulk-edit a parameter of every saved search in a Splunk app",
		Long: `ssbulk sets one parameter on every saved search of an app, optionally
narrowed to a single search by name.

In direct mode the parameter is replaced by --value. With --json-dico the
parameter is read as a JSON object and --key is set to the list of values,
or extended with them when --append is given.`,
		Version:       version.String(),
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          o.run,
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return domain.InvalidConfig("%v", err)
	})

	f := cmd.Flags()
	f.StringVar(&o.app, "app", "", "Splunk app owning the saved searches (required)")
	f.StringVar(&o.search, "search", "", "only update the saved search with this exact name")
	f.StringVar(&o.parameter, "parameter", "", "saved search parameter to edit (required)")
	f.StringArrayVar(&o.values, "value", nil, "value to set; repeat the flag or list extra values as arguments (required)")
	f.BoolVar(&o.jsonDico, "json-dico", false, "treat the parameter as a JSON object and set --key inside it")
	f.StringVar(&o.key, "key", "", "key to set inside the JSON object (requires --json-dico)")
	f.BoolVar(&o.appendTo, "append", false, "append values to an existing key instead of replacing it (requires --json-dico)")
	f.BoolVar(&o.dryRun, "dry-run", false, "compute and print the changes without writing them")

	f.StringVar(&o.configPath, "config", "", "profile file (default: config/$ENV.yaml)")
	f.StringVar(&o.scheme, "scheme", "https", "management endpoint scheme: https or http")
	f.StringVar(&o.host, "host", "localhost", "Splunk management host")
	f.IntVar(&o.port, "port", 8089, "Splunk management port")
	f.StringVar(&o.username, "username", "admin", "Splunk username; the password is prompted")
	f.BoolVar(&o.insecure, "insecure", true, "skip TLS certificate verification")
	f.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	f.StringVar(&o.metricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this file")

	return cmd
}

// request builds the update request. Positional arguments are extra values.
func (o *options) request(cmd *cobra.Command, args []string) update.Request {
	req := update.Request{
		App:       o.app,
		Search:    o.search,
		Parameter: o.parameter,
		Values:    append(append([]string{}, o.values...), args...),
		JSONDico:  o.jsonDico,
		Append:    o.appendTo,
		DryRun:    o.dryRun,
	}
	if cmd.Flags().Changed("key") {
		key := o.key
		req.Key = &key
	}
	return req
}

// loadConfig reads the profile and applies explicitly set flags on top of it.
func (o *options) loadConfig(cmd *cobra.Command) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(config.GetEnv())
	}
	if err != nil {
		return config.Config{}, err
	}

	f := cmd.Flags()
	if f.Changed("scheme") {
		cfg.Splunk.Scheme = o.scheme
	}
	if f.Changed("host") {
		cfg.Splunk.Host = o.host
	}
	if f.Changed("port") {
		cfg.Splunk.Port = o.port
	}
	if f.Changed("username") {
		cfg.Splunk.Username = o.username
	}
	if f.Changed("insecure") {
		insecure := o.insecure
		cfg.Splunk.InsecureSkipVerify = &insecure
	}
	if f.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if f.Changed("metrics-file") {
		cfg.Metrics.Textfile = o.metricsFile
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (o *options) run(cmd *cobra.Command, args []string) error {
	req := o.request(cmd, args)
	if err := req.Validate(); err != nil {
		return err
	}

	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return domain.InvalidConfig("%v", err)
	}

	env := config.GetEnv()
	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return domain.InvalidConfig("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	// Register metrics explicitly (no init())
	metrics.Register()
	if path := cfg.Metrics.Textfile; path != "" {
		defer func() {
			if err := metrics.WriteTextfile(path); err != nil {
				logger.Warn("Failed to write metrics textfile", zap.String("path", path), zap.Error(err))
			}
		}()
	}

	password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logpkg.ContextWithLogger(ctx, logger)

	logger.Info("Starting bulk update",
		zap.String("version", version.Version),
		zap.String("env", env),
		zap.String("host", cfg.Splunk.Host),
		zap.Int("port", cfg.Splunk.Port),
		zap.String("app", req.App),
		zap.String("parameter", req.Parameter),
		zap.Bool("json_dico", req.JSONDico),
		zap.Bool("dry_run", req.DryRun),
	)

	client, err := splunk.Connect(ctx, &splunk.Config{
		Scheme:             cfg.Splunk.Scheme,
		Host:               cfg.Splunk.Host,
		Port:               cfg.Splunk.Port,
		InsecureSkipVerify: cfg.Insecure(),
		Timeout:            time.Duration(cfg.Splunk.TimeoutSec) * time.Second,
		Logger:             logger,
	}, cfg.Splunk.Username, password)
	if err != nil {
		logger.Error("Failed to connect to Splunk", zap.Error(err))
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Close()

	svc := update.New(savedsearchrepo.New(client), logger).
		WithProgress(progressPrinter(cmd.OutOrStdout()))

	summary, err := svc.Run(ctx, req)
	if err != nil {
		logger.Error("Bulk update failed", zap.Error(err))
		return err
	}

	printSummary(cmd.OutOrStdout(), summary)
	return nil
}
