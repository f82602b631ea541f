package anthropic

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrTruncated is returned when the response hit the output token limit.
var ErrTruncated = errors.New("anthropic: response truncated at max_tokens")

// stream reads SSE events from an HTTP response body and accumulates the
// text of the assistant message.
type stream struct {
	scanner    *bufio.Scanner
	buf        strings.Builder
	stopReason string
	done       bool
}

func newStream(body io.Reader) *stream {
	return &stream{scanner: bufio.NewScanner(body)}
}

// text reads the stream to message_stop and returns the assembled text.
func (s *stream) text() (string, error) {
	for !s.done {
		eventType, data, err := s.readSSEEvent()
		if errors.Is(err, io.EOF) {
			return "", fmt.Errorf("anthropic: unexpected end of stream")
		}
		if err != nil {
			return "", err
		}
		if err := s.processEvent(eventType, data); err != nil {
			return "", err
		}
	}
	if s.stopReason == "max_tokens" {
		return "", ErrTruncated
	}
	return s.buf.String(), nil
}

// readSSEEvent reads lines until a complete SSE event is assembled.
// Returns the event type and the data payload.
func (s *stream) readSSEEvent() (string, string, error) {
	var eventType string
	var dataBuf strings.Builder

	for s.scanner.Scan() {
		line := s.scanner.Text()

		if line == "" {
			if dataBuf.Len() > 0 {
				return eventType, dataBuf.String(), nil
			}
			continue
		}

		if strings.HasPrefix(line, "event: ") {
			eventType = strings.TrimPrefix(line, "event: ")
		} else if strings.HasPrefix(line, "data: ") {
			if dataBuf.Len() > 0 {
				dataBuf.WriteByte('\n')
			}
			dataBuf.WriteString(strings.TrimPrefix(line, "data: "))
		}
		// Ignore comments (lines starting with ':') and unknown fields.
	}

	if err := s.scanner.Err(); err != nil {
		return "", "", fmt.Errorf("anthropic: %w", err)
	}

	if dataBuf.Len() > 0 {
		return eventType, dataBuf.String(), nil
	}
	return "", "", io.EOF
}

func (s *stream) processEvent(eventType, data string) error {
	switch eventType {
	case "content_block_delta":
		return s.handleContentBlockDelta(data)
	case "message_delta":
		return s.handleMessageDelta(data)
	case "message_stop":
		s.done = true
		return nil
	case "error":
		return s.handleError(data)
	default:
		// message_start, content_block_start/stop, ping and unknown events
		// carry nothing the text needs.
		return nil
	}
}

func (s *stream) handleContentBlockDelta(data string) error {
	var evt sseContentBlockDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse content_block_delta: %w", err)
	}
	if evt.Delta.Type == "text_delta" {
		s.buf.WriteString(evt.Delta.Text)
	}
	return nil
}

func (s *stream) handleMessageDelta(data string) error {
	var evt sseMessageDelta
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse message_delta: %w", err)
	}
	if evt.Delta.StopReason != nil {
		s.stopReason = *evt.Delta.StopReason
	}
	return nil
}

func (s *stream) handleError(data string) error {
	var evt sseError
	if err := json.Unmarshal([]byte(data), &evt); err != nil {
		return fmt.Errorf("anthropic: failed to parse error event: %w", err)
	}
	return fmt.Errorf("anthropic: %s: %s", evt.Error.Type, evt.Error.Message)
}
