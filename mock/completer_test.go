package mock_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/walkplan/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompleter_Complete(t *testing.T) {
	t.Parallel()

	t.Run("delegates to CompleteFn", func(t *testing.T) {
		t.Parallel()
		c := mock.Completer{
			CompleteFn: func(ctx context.Context, system, user string) (string, error) {
				return system + "|" + user, nil
			},
		}
		got, err := c.Complete(context.Background(), "sys", "usr")
		require.NoError(t, err)
		assert.Equal(t, "sys|usr", got)
	})

	t.Run("returns error", func(t *testing.T) {
		t.Parallel()
		wantErr := errors.New("quota exceeded")
		c := mock.Completer{
			CompleteFn: func(ctx context.Context, system, user string) (string, error) {
				return "", wantErr
			},
		}
		_, err := c.Complete(context.Background(), "", "")
		assert.ErrorIs(t, err, wantErr)
	})

	t.Run("panics when CompleteFn not set", func(t *testing.T) {
		t.Parallel()
		c := mock.Completer{}
		assert.Panics(t, func() {
			_, _ = c.Complete(context.Background(), "", "")
		})
	})
}
