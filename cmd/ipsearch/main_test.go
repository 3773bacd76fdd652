package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dreamware/ipsearch/internal/digest"
	"github.com/dreamware/ipsearch/internal/progress"
	"github.com/dreamware/ipsearch/internal/status"
)

func noEnv(string) string { return "" }

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr, noEnv)
	return code, stdout.String(), stderr.String()
}

func TestRunFindsAddress(t *testing.T) {
	target := digest.Of([]byte("0.0.3.100")).String()

	code, out, errOut := runCLI(t, "-to", "0.0.3.232", "-workers", "3", "-batch", "50", "-quiet", target)
	assert.Equal(t, exitFound, code, errOut)
	assert.Contains(t, out, "Searching for: "+target)
	assert.Contains(t, out, "Found! IP: 0.0.3.100")
}

// TestRunExhaustsRange searches [0,1000] for the all-zero digest.
func TestRunExhaustsRange(t *testing.T) {
	zero := strings.Repeat("00", digest.Size)

	code, out, errOut := runCLI(t, "-to", "0.0.3.232", "-workers", "2", zero)
	assert.Equal(t, exitNotFound, code, errOut)
	assert.Contains(t, out, "No address in [0,1000]")
	assert.Contains(t, errOut, "1001/1001 IPs")
}

func TestRunRejectsBadInput(t *testing.T) {
	valid := digest.Of([]byte("x")).String()

	tests := []struct {
		name string
		args []string
	}{
		{"no digest", nil},
		{"two digests", []string{valid, valid}},
		{"odd length", []string{"abc"}},
		{"non-hex", []string{strings.Repeat("zz", digest.Size)}},
		{"short digest", []string{"deadbeef"}},
		{"zero workers", []string{"-workers", "0", valid}},
		{"bad range", []string{"-from", "1.2.3.4", "-to", "1.2.3.3", valid}},
		{"bad log level", []string{"-log-level", "loud", valid}},
		{"unknown flag", []string{"-bogus", valid}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := runCLI(t, tt.args...)
			assert.Equal(t, exitUsage, code)
		})
	}
}

func TestRunHelp(t *testing.T) {
	code, _, errOut := runCLI(t, "-h")
	assert.Equal(t, exitOK, code)
	assert.Contains(t, errOut, "usage: ipsearch")
}

// TestRunInterrupted cancels the context of an unmatchable full search.
func TestRunInterrupted(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	var stdout, stderr bytes.Buffer
	code := run(ctx, []string{"-workers", "2", "-quiet", strings.Repeat("00", digest.Size)}, &stdout, &stderr, noEnv)
	assert.Equal(t, exitInterrupted, code)
	assert.Contains(t, stderr.String(), "interrupted")
}

func TestRunWithStatusServer(t *testing.T) {
	target := digest.Of([]byte("0.0.0.9")).String()

	code, out, errOut := runCLI(t, "-to", "0.0.0.255", "-workers", "1", "-quiet", "-status-addr", "127.0.0.1:0", target)
	assert.Equal(t, exitFound, code, errOut)
	assert.Contains(t, out, "Found! IP: 0.0.0.9")
	assert.Contains(t, errOut, "status server listening")
}

func TestRunStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/progress", r.URL.Path)
		_ = json.NewEncoder(w).Encode(status.Progress{
			RunID:    "abc",
			Snapshot: progress.Compute(1000, 4000, 2*time.Second),
		})
	}))
	defer ts.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"status", "-addr", ts.URL}, &stdout, &stderr, noEnv)
	assert.Equal(t, exitOK, code, stderr.String())
	assert.Equal(t, "run abc: 1000/4000 IPs | 500.00 IPs/sec | Progress: 25.00% | ETA: 6s | Elapsed: 2s\n", stdout.String())
}

func TestRunStatusUnreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	ts.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"status", "-addr", ts.URL}, &stdout, &stderr, noEnv)
	assert.Equal(t, exitFault, code)
	assert.Contains(t, stderr.String(), "ipsearch status:")
}
