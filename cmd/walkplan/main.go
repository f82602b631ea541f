// Command walkplan turns a free-text dog walk request into a structured trip
// plan using an LLM provider.
//
// Usage:
//
//	ANTHROPIC_API_KEY=sk-... walkplan "Walk my dog for 20 minutes near downtown"
//	GEMINI_API_KEY=gk-...   walkplan --batch requests.txt --out report.json
//
// Settings come from flags, then WALKPLAN_* environment variables, then the
// YAML config file (default .walkplan.yaml), then built-in defaults. A .env
// file in the working directory is loaded first when present.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"

	"github.com/fwojciec/walkplan"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		var pe *walkplan.PipelineError
		if errors.As(err, &pe) && pe.Cause == nil {
			fmt.Fprintf(os.Stderr, "walkplan: request is not feasible\nsuggested request: %s\n", pe.Feedback)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "walkplan: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Existing environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(env{
		lookup:       os.LookupEnv,
		anthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		geminiKey:    os.Getenv("GEMINI_API_KEY"),
	}, resolveCompleter)
	cmd.SetOut(os.Stdout)
	cmd.SetErr(os.Stderr)
	return cmd.ExecuteContext(ctx)
}
