package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// CountMessages returns how many text-format log records carry exactly msg.
// msg must need quoting (contain a space) for the match to hold.
func CountMessages(logs, msg string) int {
	return strings.Count(logs, fmt.Sprintf("msg=%q", msg))
}

// AssertMessageLogged checks that msg was logged at least min times.
func AssertMessageLogged(t *testing.T, result *HarnessResult, msg string, min int) {
	t.Helper()
	got := CountMessages(result.LogOutput, msg)
	require.GreaterOrEqual(t, got, min,
		"expected message %q at least %d times, got %d", msg, min, got)
}

// AssertNothingEmitted checks that no route produced an exchange.
func AssertNothingEmitted(t *testing.T, result *HarnessResult) {
	t.Helper()
	require.NotContains(t, result.LogOutput, "Starting routes",
		"no route should have started")
}
