package errors

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors work as expected.
	sentinel := NewSentinel("test error")
	require.NotErrorIs(t, err, NewSentinel("test error"))
	wrapped := Wrap(sentinel, "lookup", slog.String("session_id", "abc"))
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "lookup: test error", wrapped.Error())
	require.NoError(t, Wrap(nil, "nothing to wrap"))

	// Ensure log values are coming through.
	var annotated *AnnotatedError
	require.True(t, As(err, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.GreaterOrEqual(t, sourceIdx, 0)
	require.Contains(t, group[sourceIdx].Value.String(), "annotatederror_test.go")
}

func TestSlogError_CollectsNestedAttributes(t *testing.T) {
	inner := New("inner", slog.String("tool", "get_location"))
	outer := Wrap(inner, "use tool", slog.String("session_id", "abc"))

	attr := SlogError(outer)
	require.Equal(t, "error", attr.Key)
	group := attr.Value.Resolve().Group()
	require.Contains(t, group, slog.String("tool", "get_location"))
	require.Contains(t, group, slog.String("session_id", "abc"))
	require.Contains(t, group, slog.String("msg", "use tool: inner"))
}
