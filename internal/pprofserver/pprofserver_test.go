package pprofserver_test

import (
	"context"
	"io"
	"testing"

	"github.com/myrjola/murderai/internal/pprofserver"
	"github.com/myrjola/murderai/internal/testhelpers"
	"github.com/stretchr/testify/require"
)

func TestListenAndServe_RejectsPublicAddress(t *testing.T) {
	logger := testhelpers.NewLogger(io.Discard)
	tests := []struct {
		name string
		addr string
	}{
		{name: "all interfaces", addr: ":6060"},
		{name: "public ip", addr: "203.0.113.7:6060"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pprofserver.ListenAndServe(context.Background(), tt.addr, logger)
			require.ErrorIs(t, err, pprofserver.ErrNotLoopback)
		})
	}
}

func TestListenAndServe_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pprofserver.ListenAndServe(ctx, "127.0.0.1:0", testhelpers.NewLogger(io.Discard))
	require.NoError(t, err)
}
