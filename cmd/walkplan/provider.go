package main

import (
	"context"
	"fmt"

	"github.com/fwojciec/walkplan"
	"github.com/fwojciec/walkplan/anthropic"
	"github.com/fwojciec/walkplan/gemini"
)

// providerSettings selects and tunes the completion provider.
type providerSettings struct {
	Provider    string
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature *float64
}

// completerFactory builds the Completer for the resolved settings. Tests
// substitute a factory returning a mock.
type completerFactory func(ctx context.Context, s providerSettings, anthropicEnvKey, geminiEnvKey string) (walkplan.Completer, error)

// resolveCompleter selects and constructs the provider. All env var values
// are passed in as parameters; env is only read in main().
func resolveCompleter(ctx context.Context, s providerSettings, anthropicEnvKey, geminiEnvKey string) (walkplan.Completer, error) {
	provider, err := detectProvider(s.Provider, anthropicEnvKey, geminiEnvKey)
	if err != nil {
		return nil, err
	}

	// Explicit key overrides env var.
	key := s.APIKey
	switch provider {
	case "anthropic":
		if key == "" {
			key = anthropicEnvKey
		}
		if key == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set (use --api-key flag or environment variable)")
		}
		opts := []anthropic.Option{anthropic.WithModel(s.Model), anthropic.WithMaxTokens(s.MaxTokens)}
		if s.Temperature != nil {
			opts = append(opts, anthropic.WithTemperature(*s.Temperature))
		}
		return anthropic.New(key, opts...), nil
	case "gemini":
		if key == "" {
			key = geminiEnvKey
		}
		if key == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY not set (use --api-key flag or environment variable)")
		}
		opts := []gemini.Option{gemini.WithModel(s.Model), gemini.WithMaxTokens(s.MaxTokens)}
		if s.Temperature != nil {
			opts = append(opts, gemini.WithTemperature(*s.Temperature))
		}
		client, err := gemini.New(ctx, key, opts...)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown provider %q: must be \"anthropic\" or \"gemini\"", provider)
	}
}

// detectProvider returns the named provider, or picks one from whichever
// API key is present.
func detectProvider(name, anthropicEnvKey, geminiEnvKey string) (string, error) {
	if name != "" {
		return name, nil
	}
	hasAnthropic := anthropicEnvKey != ""
	hasGemini := geminiEnvKey != ""
	switch {
	case hasAnthropic && hasGemini:
		return "", fmt.Errorf("multiple API keys found (ANTHROPIC_API_KEY, GEMINI_API_KEY): use --provider flag to select")
	case hasAnthropic:
		return "anthropic", nil
	case hasGemini:
		return "gemini", nil
	default:
		return "", fmt.Errorf("no API key found: set ANTHROPIC_API_KEY or GEMINI_API_KEY (or use --provider and --api-key flags)")
	}
}
