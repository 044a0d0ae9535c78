package commands

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konstantinWDK/github-light-calendar/domain/calendar"
	"github.com/konstantinWDK/github-light-calendar/pkg/stats"
)

var week = calendar.Result{
	Weeks: []calendar.Week{{Days: []calendar.Day{
		{Date: "2026-10-11", Count: 0},
		{Date: "2026-10-12", Count: 2},
		{Date: "2026-10-13", Count: 5},
		{Date: "2026-10-14", Count: 8},
		{Date: "2026-10-15", Count: 1200},
		{Date: "2026-10-16", Count: 0},
		{Date: "2026-10-17", Count: 0},
	}}},
	User:  "octocat",
	Total: 1215,
}

func TestRenderGrid(t *testing.T) {
	var buf bytes.Buffer

	renderGrid(&buf, week)

	lines := strings.Split(buf.String(), "\n")
	assert.Equal(t, "1,215 contributions in the last year for octocat", lines[0])
	assert.Equal(t, "Sun ·", lines[2])
	assert.Equal(t, "    ░", lines[3])
	assert.Equal(t, "Tue ▒", lines[4])
	assert.Equal(t, "    ▓", lines[5])
	assert.Equal(t, "Thu █", lines[6])
}

func TestRenderStats(t *testing.T) {
	var buf bytes.Buffer

	renderStats(&buf, "octocat", stats.Stats{
		Total:           1215,
		CurrentStreak:   4,
		LongestStreak:   1,
		AveragePerDay:   3.3,
		MostActiveDay:   "2026-10-15",
		MostActiveCount: 1200,
	})

	out := buf.String()
	assert.Contains(t, out, "octocat")
	assert.Contains(t, out, "1,215")
	assert.Contains(t, out, "4 days")
	assert.Contains(t, out, "1 day")
	assert.Contains(t, out, "3.3")
	assert.Contains(t, out, "2026-10-15 (1,200)")
}

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "ghcal", SilenceUsage: true, SilenceErrors: true}
	AddSourceFlags(root)
	root.AddCommand(NewStatsCommand(), NewGridCommand())
	return root
}

func TestGridCommand_ViaProxy(t *testing.T) {
	// Arrange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "octocat", r.URL.Query().Get("username"))
		_ = json.NewEncoder(w).Encode(week)
	}))
	defer srv.Close()

	var out bytes.Buffer
	root := newRoot()
	root.SetOut(&out)
	root.SetArgs([]string{"grid", "octocat", "--proxy", srv.URL})

	// Act
	err := root.Execute()

	// Assert
	require.NoError(t, err)
	assert.Contains(t, out.String(), "for octocat")
}

func TestStatsCommand_ProxyError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"GitHub user 'ghost' not found"}`))
	}))
	defer srv.Close()

	root := newRoot()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"stats", "ghost", "--proxy", srv.URL})

	err := root.Execute()

	assert.ErrorContains(t, err, "could not load calendar for ghost")
	assert.ErrorContains(t, err, "GitHub user 'ghost' not found")
}

func TestStatsCommand_RejectsUnknownTimezone(t *testing.T) {
	root := newRoot()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"stats", "octocat", "--proxy", "http://127.0.0.1:1", "--timezone", "Mars/Olympus"})

	err := root.Execute()

	assert.ErrorContains(t, err, `invalid --timezone "Mars/Olympus"`)
}
