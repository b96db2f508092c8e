package task

import (
	"context"
	"testing"

	sq "github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	lite, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = lite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": lite,
	}
}

func TestStore_CompleteLifecycle(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Create(ctx, Task{ID: "t-1"}))
			assert.ErrorIs(t, s.Create(ctx, Task{ID: "t-1"}), ErrAlreadyExists)

			got, err := s.Get(ctx, "t-1")
			require.NoError(t, err)
			assert.Equal(t, StatusProcessing, got.Status)
			assert.Equal(t, MessageProcessing, got.Message)
			assert.Empty(t, got.ResultID)
			assert.False(t, got.CreatedAt.IsZero())

			require.NoError(t, s.Complete(ctx, "t-1", "r-1", []byte(`{"score":7}`)))
			got, err = s.Get(ctx, "t-1")
			require.NoError(t, err)
			assert.Equal(t, StatusCompleted, got.Status)
			assert.Equal(t, "r-1", got.ResultID)

			raw, err := s.Result(ctx, "r-1")
			require.NoError(t, err)
			assert.JSONEq(t, `{"score":7}`, string(raw))

			assert.ErrorIs(t, s.Fail(ctx, "t-1", "late", true), ErrNotProcessing)
		})
	}
}

func TestStore_FailLeavesNoResult(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, s.Create(ctx, Task{ID: "t-2"}))
			require.NoError(t, s.Fail(ctx, "t-2", "stage findings failed", true))

			got, err := s.Get(ctx, "t-2")
			require.NoError(t, err)
			assert.Equal(t, StatusFailed, got.Status)
			assert.Equal(t, "stage findings failed", got.Error)
			assert.True(t, got.Retryable)
			assert.Empty(t, got.ResultID)

			assert.ErrorIs(t, s.Complete(ctx, "t-2", "r-2", []byte(`{}`)), ErrNotProcessing)
			_, err = s.Result(ctx, "r-2")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_NotFound(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, s.Complete(ctx, "missing", "r", nil), ErrNotFound)
			assert.ErrorIs(t, s.Fail(ctx, "missing", "x", false), ErrNotFound)
			_, err = s.Result(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestPlaceholders_PerDialect(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{DialectPostgres, "UPDATE analysis_tasks SET status = $1 WHERE id = $2"},
		{DialectSQLite, "UPDATE analysis_tasks SET status = ? WHERE id = ?"},
	}
	for _, tt := range tests {
		t.Run(string(tt.dialect), func(t *testing.T) {
			query, args, err := sq.StatementBuilder.PlaceholderFormat(placeholders(tt.dialect)).
				Update("analysis_tasks").
				Set("status", StatusCompleted).
				Where(sq.Eq{"id": "t-1"}).
				ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.want, query)
			assert.Len(t, args, 2)
		})
	}
}
