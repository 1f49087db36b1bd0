// SPDX-License-Identifier: MIT

package config

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHolder(t *testing.T, body string) (*ConfigHolder, string) {
	t.Helper()
	path := writeConfig(t, t.TempDir(), body)
	loader := NewLoader(path, "test")
	cfg, err := loader.Load()
	require.NoError(t, err)
	return NewConfigHolder(cfg, loader), path
}

func TestConfigHolder_Reload(t *testing.T) {
	h, path := newHolder(t, minimalYAML)
	assert.Equal(t, DefaultReshuffleEvery, h.Get().Playback.ReshuffleEvery)

	updates := make(chan AppConfig, 1)
	h.RegisterListener(updates)

	require.NoError(t, os.WriteFile(path, []byte(minimalYAML+"playback:\n  reshuffleEvery: 2\n"), 0o600))
	require.NoError(t, h.Reload(context.Background()))

	assert.Equal(t, 2, h.Get().Playback.ReshuffleEvery)
	select {
	case cfg := <-updates:
		assert.Equal(t, 2, cfg.Playback.ReshuffleEvery)
	default:
		t.Fatal("listener not notified")
	}
}

func TestConfigHolder_ReloadKeepsOldConfigOnError(t *testing.T) {
	h, path := newHolder(t, minimalYAML)
	before := h.Get()

	require.NoError(t, os.WriteFile(path, []byte(minimalYAML+"polling:\n  capMultiplier: 0\n"), 0o600))
	require.Error(t, h.Reload(context.Background()))
	assert.Equal(t, before, h.Get())
}

func TestConfigHolder_ListenerFullDoesNotBlock(t *testing.T) {
	h, _ := newHolder(t, minimalYAML)
	full := make(chan AppConfig)
	h.RegisterListener(full)

	done := make(chan error, 1)
	go func() { done <- h.Reload(context.Background()) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("reload blocked on listener")
	}
}

func TestConfigHolder_WatchReloadsOnWrite(t *testing.T) {
	h, path := newHolder(t, minimalYAML)
	h.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Watch(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// Give the watcher time to register before writing.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(minimalYAML+"playback:\n  advanceInterval: 9s\n"), 0o600))

	require.Eventually(t, func() bool {
		return h.Get().Playback.AdvanceInterval == 9*time.Second
	}, 3*time.Second, 10*time.Millisecond)
}

func TestConfigHolder_WatchWithoutFile(t *testing.T) {
	t.Setenv(EnvSourceURL, "https://media.example.com/api/media")
	loader := NewLoader("", "")
	cfg, err := loader.Load()
	require.NoError(t, err)

	h := NewConfigHolder(cfg, loader)
	assert.NoError(t, h.Watch(context.Background()))
}

func TestMaskURL(t *testing.T) {
	assert.Equal(t, "", MaskURL(""))
	assert.Equal(t, "https://media.example.com/api/media",
		MaskURL("https://user:pw@media.example.com/api/media?token=abc"))
	assert.Equal(t, "***redacted***", MaskURL("not a url"))
}
