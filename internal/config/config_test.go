package config

import (
	"io"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dreamware/ipsearch/internal/partition"
	"github.com/dreamware/ipsearch/internal/search"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestDefault(t *testing.T) {
	cfg, args, err := Load(nil, env(nil), io.Discard)
	require.NoError(t, err)
	assert.Empty(t, args)

	assert.Equal(t, runtime.NumCPU(), cfg.Workers)
	assert.Equal(t, uint64(search.DefaultBatchSize), cfg.BatchSize)
	assert.Equal(t, time.Second, cfg.Interval)
	assert.Equal(t, "info", cfg.LogLevel)

	r, err := cfg.Range()
	require.NoError(t, err)
	assert.Equal(t, partition.Full, r)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	cfg, _, err := Load(nil, env(map[string]string{
		"IPSEARCH_WORKERS":     "3",
		"IPSEARCH_BATCH":       "500",
		"IPSEARCH_INTERVAL":    "250ms",
		"IPSEARCH_FROM":        "10.0.0.0",
		"IPSEARCH_TO":          "10.0.255.255",
		"IPSEARCH_STATUS_ADDR": ":9100",
		"IPSEARCH_LOG_FORMAT":  "json",
		"IPSEARCH_RESERVE_CPU": "true",
		"IPSEARCH_NO_GC":       "1",
	}), io.Discard)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 2, cfg.EffectiveWorkers())
	assert.Equal(t, uint64(500), cfg.BatchSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Interval)
	assert.Equal(t, ":9100", cfg.StatusAddr)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.True(t, cfg.NoGC)

	r, err := cfg.Range()
	require.NoError(t, err)
	assert.Equal(t, partition.Range{Start: 0x0A000000, End: 0x0A00FFFF}, r)
}

// TestFlagsOverrideEnvironment checks precedence and positional arguments.
func TestFlagsOverrideEnvironment(t *testing.T) {
	cfg, args, err := Load(
		[]string{"-workers", "8", "-to", "0.0.3.232", "-quiet", "deadbeef"},
		env(map[string]string{"IPSEARCH_WORKERS": "3"}),
		io.Discard,
	)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Workers)
	assert.True(t, cfg.Quiet)
	assert.Equal(t, []string{"deadbeef"}, args)

	r, err := cfg.Range()
	require.NoError(t, err)
	assert.Equal(t, partition.Range{Start: 0, End: 1000}, r)
}

func TestInvalidSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
	}{
		{"zero workers", []string{"-workers", "0"}, nil},
		{"zero batch", []string{"-batch", "0"}, nil},
		{"zero interval", []string{"-interval", "0s"}, nil},
		{"bad from", []string{"-from", "1.2.3"}, nil},
		{"inverted range", []string{"-from", "10.0.0.0", "-to", "9.255.255.255"}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Load(tt.args, env(tt.env), io.Discard)
			assert.ErrorIs(t, err, search.ErrInvalidConfiguration)
		})
	}
}

func TestMalformedEnvironment(t *testing.T) {
	for _, key := range []string{"IPSEARCH_WORKERS", "IPSEARCH_BATCH", "IPSEARCH_INTERVAL", "IPSEARCH_RESERVE_CPU", "IPSEARCH_NO_GC"} {
		_, _, err := Load(nil, env(map[string]string{key: "nope"}), io.Discard)
		assert.Error(t, err, key)
	}
}

func TestUnknownFlag(t *testing.T) {
	_, _, err := Load([]string{"-bogus"}, env(nil), io.Discard)
	assert.Error(t, err)
}

func TestEffectiveWorkersNeverBelowOne(t *testing.T) {
	cfg := Default()
	cfg.Workers = 1
	cfg.ReserveCPU = true
	assert.Equal(t, 1, cfg.EffectiveWorkers())
}
