// Package gemini implements [walkplan.Completer] for the Google Gemini API.
//
// It wraps the google.golang.org/genai SDK. Completions use the SDK's
// streaming iterator and keep only the non-thought text parts.
package gemini

const (
	defaultModel     = "gemini-3.1-pro-preview"
	defaultMaxTokens = 65536
)
