// SPDX-License-Identifier: MIT

package daemon

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CMRapp/Slideshow-sub000/internal/config"
)

func testServerConfig() config.ServerConfig {
	return config.ServerConfig{
		ListenAddr:      "127.0.0.1:0",
		ReadTimeout:     2 * time.Second,
		IdleTimeout:     5 * time.Second,
		MaxHeaderBytes:  1 << 20,
		ShutdownTimeout: 5 * time.Second,
	}
}

func testDeps() Deps {
	return Deps{
		Logger: zerolog.New(io.Discard),
		APIHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("api"))
		}),
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("metrics"))
		}),
		MetricsAddr: "127.0.0.1:0",
	}
}

func tryGet(url string) (int, string, error) {
	client := &http.Client{Timeout: 5 * time.Second, Transport: &http.Transport{DisableKeepAlives: true}}
	resp, err := client.Get(url)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body), err
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	code, body, err := tryGet(url)
	require.NoError(t, err)
	return code, body
}

func TestNewManager_ValidatesDeps(t *testing.T) {
	_, err := NewManager(testServerConfig(), Deps{Logger: zerolog.New(io.Discard)})
	assert.ErrorIs(t, err, ErrMissingAPIHandler)

	deps := testDeps()
	deps.Logger = zerolog.New(io.Discard).Level(zerolog.Disabled)
	_, err = NewManager(testServerConfig(), deps)
	assert.ErrorIs(t, err, ErrMissingLogger)
}

func TestManager_StartServeShutdown(t *testing.T) {
	mgr, err := NewManager(testServerConfig(), testDeps())
	require.NoError(t, err)
	m := mgr.(*manager)

	var (
		mu    sync.Mutex
		order []string
	)
	for _, name := range []string{"first", "second"} {
		mgr.RegisterShutdownHook(name, func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
			return nil
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- mgr.Start(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	apiAddr, metricsAddr, err := m.listenAddrs(waitCtx)
	require.NoError(t, err)

	code, body := get(t, "http://"+apiAddr.String()+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "api", body)

	code, body = get(t, "http://"+metricsAddr.String()+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "metrics", body)

	assert.ErrorIs(t, mgr.Start(ctx), ErrManagerStarted)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("manager did not stop")
	}

	assert.Equal(t, []string{"second", "first"}, order)
	assert.NoError(t, mgr.Shutdown(context.Background()), "second shutdown is a no-op")
}

func TestManager_ShutdownBeforeStart(t *testing.T) {
	mgr, err := NewManager(testServerConfig(), testDeps())
	require.NoError(t, err)
	assert.ErrorIs(t, mgr.Shutdown(context.Background()), ErrManagerNotStarted)
}

func TestManager_BindFailureRunsHooks(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testServerConfig()
	cfg.ListenAddr = ln.Addr().String()
	deps := testDeps()
	deps.MetricsAddr = ""

	mgr, err := NewManager(cfg, deps)
	require.NoError(t, err)

	hookErr := errors.New("flush failed")
	hookRan := false
	mgr.RegisterShutdownHook("flush", func(context.Context) error {
		hookRan = true
		return hookErr
	})

	err = mgr.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to start API server")
	assert.ErrorIs(t, err, hookErr)
	assert.True(t, hookRan)
}
