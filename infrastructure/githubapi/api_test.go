package githubapi

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/konstantinWDK/github-light-calendar/domain/remote"
)

func TestContributionCalendar_FlattensWeeks(t *testing.T) {
	// Arrange
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/graphql", r.URL.Path)

		var body graphQLRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "octocat", body.Variables["username"])
		assert.Contains(t, body.Query, "contributionCalendar")

		_, _ = w.Write([]byte(`{"data":{"user":{"contributionsCollection":{"contributionCalendar":{
			"totalContributions":5,
			"weeks":[
				{"contributionDays":[{"date":"2026-10-11","contributionCount":2},{"date":"2026-10-12","contributionCount":0}]},
				{"contributionDays":[{"date":"2026-10-18","contributionCount":3}]}
			]}}}}}`))
	}), Options{Token: testToken})

	// Act
	days, outcome := client.ContributionCalendar(context.Background(), "octocat")

	// Assert
	require.True(t, outcome.OK(), outcome.String())
	assert.Equal(t, []remote.DayCount{
		{Date: "2026-10-11", Count: 2},
		{Date: "2026-10-12", Count: 0},
		{Date: "2026-10-18", Count: 3},
	}, days)
}

func TestContributionCalendar_ErrorsPayloadIsTransportError(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":null,"errors":[{"type":"NOT_FOUND","message":"Could not resolve to a User"}]}`))
	}), Options{Token: testToken})

	days, outcome := client.ContributionCalendar(context.Background(), "ghost")

	assert.Nil(t, days)
	assert.Equal(t, remote.TransportError, outcome.Kind)
	assert.Contains(t, outcome.Detail, "Could not resolve")
}

func TestPublicEvents_SinglePage(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/events/public", r.URL.Path)
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[
			{"type":"PushEvent","created_at":"2026-10-14T10:00:00Z"},
			{"type":"WatchEvent","created_at":"2026-09-01T23:30:00Z"},
			{"type":"ForkEvent"}
		]`))
	}), Options{})

	times, outcome := client.PublicEvents(context.Background(), "octocat")

	require.True(t, outcome.OK())
	assert.Equal(t, []time.Time{
		time.Date(2026, 10, 14, 10, 0, 0, 0, time.UTC),
		time.Date(2026, 9, 1, 23, 30, 0, 0, time.UTC),
	}, utc(times))
}

func TestRecentRepositories_SortedByUpdate(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/octocat/repos", r.URL.Path)
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "2", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[
			{"full_name":"octocat/hello","updated_at":"2026-10-01T00:00:00Z"},
			{"full_name":"octocat/spoon","updated_at":"2024-01-01T00:00:00Z"},
			{"full_name":"octocat/extra","updated_at":"2023-01-01T00:00:00Z"}
		]`))
	}), Options{})

	repos, outcome := client.RecentRepositories(context.Background(), "octocat", 2)

	require.True(t, outcome.OK())
	require.Len(t, repos, 2)
	assert.Equal(t, "octocat/hello", repos[0].FullName)
	assert.Equal(t, time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), repos[0].UpdatedAt.UTC())
}

func TestCommits_FiltersByAuthorAndSince(t *testing.T) {
	since := time.Date(2025, 10, 15, 0, 0, 0, 0, time.UTC)
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/octocat/hello/commits", r.URL.Path)
		assert.Equal(t, "octocat", r.URL.Query().Get("author"))
		assert.Equal(t, "2025-10-15T00:00:00Z", r.URL.Query().Get("since"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		_, _ = w.Write([]byte(`[
			{"sha":"a","commit":{"author":{"date":"2026-10-13T08:00:00Z"}}},
			{"sha":"b","commit":{}}
		]`))
	}), Options{})

	times, outcome := client.Commits(context.Background(), "octocat/hello", "octocat", since)

	require.True(t, outcome.OK())
	assert.Equal(t, []time.Time{time.Date(2026, 10, 13, 8, 0, 0, 0, time.UTC)}, utc(times))
}

func utc(times []time.Time) []time.Time {
	out := make([]time.Time, len(times))
	for i, t := range times {
		out[i] = t.UTC()
	}
	return out
}
