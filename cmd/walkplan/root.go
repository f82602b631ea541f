package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/walkplan"
	planjson "github.com/fwojciec/walkplan/json"
	"github.com/fwojciec/walkplan/markdown"
	"github.com/fwojciec/walkplan/pipeline"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// env carries the process environment into the command.
type env struct {
	lookup       func(string) (string, bool)
	anthropicKey string
	geminiKey    string
}

type options struct {
	configPath    string
	history       string
	provider      string
	model         string
	apiKey        string
	maxTokens     int
	temperature   float64
	timeout       time.Duration
	retries       int
	concurrency   int
	batch         string
	out           string
	showItinerary bool
	width         int
	verbose       bool
}

func newRootCmd(e env, newCompleter completerFactory) *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "walkplan [request]",
		Short: "Plan a dog walk from a free-text request",
		Long: `walkplan validates a dog walk request, drafts an itinerary and extracts a
structured trip plan (start, end, waypoints, transit) printed as JSON.

When the request is not feasible the suggested rewrite is printed instead and
the exit status is 2.`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, o, e, newCompleter, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&o.configPath, "config", "c", defaultConfigPath, "YAML config file")
	pf.StringVar(&o.history, "history", "", "SQLite file that keeps a history of reports")

	f := cmd.Flags()
	f.StringVar(&o.provider, "provider", "", "provider: anthropic, gemini (auto-detected from env vars if omitted)")
	f.StringVar(&o.model, "model", "", "model ID (default: provider default)")
	f.StringVar(&o.apiKey, "api-key", "", "API key (overrides provider's env var)")
	f.IntVar(&o.maxTokens, "max-tokens", 0, "output token limit per completion (default: provider default)")
	f.Float64Var(&o.temperature, "temperature", 0, "sampling temperature (default: provider default)")
	f.DurationVar(&o.timeout, "timeout", 0, "overall time limit, 0 for none (default 2m)")
	f.IntVar(&o.retries, "retries", 0, fmt.Sprintf("corrective extract retries, at most %d", pipeline.MaxExtractRetries))
	f.IntVar(&o.concurrency, "concurrency", 0, "requests planned at once in batch mode (default 4)")
	f.StringVarP(&o.batch, "batch", "b", "", "file with one request per line (- for stdin)")
	f.StringVarP(&o.out, "out", "o", "", "write a JSON report to this path")
	f.BoolVar(&o.showItinerary, "show-itinerary", false, "print each drafted itinerary to stderr")
	f.IntVar(&o.width, "width", 80, "wrap width for --show-itinerary")
	f.BoolVarP(&o.verbose, "verbose", "v", false, "debug logging to stderr")

	cmd.AddCommand(newHistoryCmd(&o, e))
	return cmd
}

// resolveConfig layers flags over env over the config file over defaults.
func resolveConfig(cmd *cobra.Command, o options, e env) (config, error) {
	cfg, err := loadConfig(o.configPath, cmd.Flags().Changed("config"))
	if err != nil {
		return config{}, err
	}
	if e.lookup != nil {
		if err := applyEnv(&cfg, e.lookup); err != nil {
			return config{}, err
		}
	}
	changed := cmd.Flags().Changed
	if changed("history") {
		cfg.History = o.history
	}
	if changed("provider") {
		cfg.Provider = o.provider
	}
	if changed("model") {
		cfg.Model = o.model
	}
	if changed("max-tokens") {
		cfg.MaxTokens = o.maxTokens
	}
	if changed("temperature") {
		t := o.temperature
		cfg.Temperature = &t
	}
	if changed("timeout") {
		cfg.Timeout = o.timeout
	}
	if changed("retries") {
		cfg.Retries = o.retries
	}
	if changed("concurrency") {
		cfg.Concurrency = o.concurrency
	}
	if err := cfg.validate(); err != nil {
		return config{}, err
	}
	return cfg, nil
}

func runPlan(cmd *cobra.Command, o options, e env, newCompleter completerFactory, args []string) error {
	cfg, err := resolveConfig(cmd, o, e)
	if err != nil {
		return err
	}
	requests, err := collectRequests(cmd.InOrStdin(), o.batch, args)
	if err != nil {
		return err
	}

	logger := newLogger(cmd.ErrOrStderr(), o.verbose)
	defer func() { _ = logger.Sync() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	completer, err := newCompleter(ctx, providerSettings{
		Provider:    cfg.Provider,
		APIKey:      o.apiKey,
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
	}, e.anthropicKey, e.geminiKey)
	if err != nil {
		return err
	}

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithExtractRetries(cfg.Retries),
	}
	if o.showItinerary {
		opts = append(opts, pipeline.WithEventHandler(itineraryPrinter(cmd.ErrOrStderr(), o.width)))
	}
	planner := pipeline.New(completer, opts...)

	var results []walkplan.Result
	if o.batch == "" {
		plan, err := planner.Plan(ctx, requests[0])
		results = []walkplan.Result{{Request: requests[0], Plan: plan, Err: err}}
	} else {
		results = planner.PlanAll(ctx, requests, cfg.Concurrency)
	}
	logger.Debug("planning finished", zap.Int("requests", len(results)))

	report := walkplan.Report{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Results:   results,
	}
	if o.out != "" {
		if err := planjson.Save(o.out, report); err != nil {
			return fmt.Errorf("save report: %w", err)
		}
	}
	if cfg.History != "" {
		if err := saveHistory(context.WithoutCancel(ctx), cfg.History, report); err != nil {
			return err
		}
		logger.Debug("report saved to history", zap.String("report_id", report.ID), zap.String("path", cfg.History))
	}

	if o.batch == "" {
		res := results[0]
		if res.Err != nil {
			return res.Err
		}
		data, err := planjson.MarshalPlan(res.Plan)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}

	if o.out == "" {
		data, err := planjson.MarshalReport(report)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(data)); err != nil {
			return err
		}
	}
	if sum := report.Summary(); sum.Failed > 0 {
		return fmt.Errorf("%d of %d requests failed", sum.Failed, sum.Total)
	}
	return nil
}

// collectRequests returns the single request from args or the requests in
// the batch file. Blank lines and lines starting with # are skipped.
func collectRequests(stdin io.Reader, batch string, args []string) ([]string, error) {
	if batch == "" {
		req := strings.TrimSpace(strings.Join(args, " "))
		if req == "" {
			return nil, fmt.Errorf("no request given")
		}
		return []string{req}, nil
	}
	if len(args) > 0 {
		return nil, fmt.Errorf("--batch cannot be combined with a request argument")
	}

	r := stdin
	if batch != "-" {
		f, err := os.Open(batch)
		if err != nil {
			return nil, fmt.Errorf("open batch file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var requests []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		requests = append(requests, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read batch file: %w", err)
	}
	if len(requests) == 0 {
		return nil, fmt.Errorf("batch file has no requests")
	}
	return requests, nil
}

// itineraryPrinter renders completed itinerary stages to w. Batch runs call
// it from several goroutines.
func itineraryPrinter(w io.Writer, width int) func(walkplan.Event) {
	var mu sync.Mutex
	theme := markdown.DefaultTheme()
	return func(evt walkplan.Event) {
		done, ok := evt.(walkplan.EventStageCompleted)
		if !ok || done.Stage != walkplan.StageItinerary {
			return
		}
		rendered := markdown.Render(done.Output, width, theme)
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintf(w, "itinerary (%s):\n%s\n", done.RequestID, rendered)
	}
}
