package gemini

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"google.golang.org/genai"
)

// ErrTruncated is returned when the response hit the output token limit.
var ErrTruncated = errors.New("gemini: response truncated at max tokens")

// collect drains a streaming response and returns its text. Thought parts
// are skipped. Only the first candidate is read.
func collect(chunks iter.Seq2[*genai.GenerateContentResponse, error]) (string, error) {
	var b strings.Builder
	var finish genai.FinishReason
	for resp, err := range chunks {
		if err != nil {
			return "", fmt.Errorf("gemini: %w", err)
		}
		if resp == nil {
			continue
		}
		if pf := resp.PromptFeedback; pf != nil && pf.BlockReason != "" {
			return "", fmt.Errorf("gemini: prompt blocked: %s", pf.BlockReason)
		}
		if len(resp.Candidates) == 0 {
			continue
		}
		cand := resp.Candidates[0]
		if cand.FinishReason != "" {
			finish = cand.FinishReason
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			b.WriteString(part.Text)
		}
	}

	switch finish {
	case genai.FinishReasonMaxTokens:
		return "", ErrTruncated
	case genai.FinishReasonSafety:
		return "", fmt.Errorf("gemini: response blocked: %s", finish)
	}
	return b.String(), nil
}
