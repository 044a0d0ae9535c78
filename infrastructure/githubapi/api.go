package githubapi

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/go-github/v62/github"

	"github.com/konstantinWDK/github-light-calendar/domain/remote"
)

const (
	eventsPageSize  = 100
	commitsPageSize = 100
)

const contributionCalendarQuery = `query ContributionCalendar($username: String!) {
  user(login: $username) {
    contributionsCollection {
      contributionCalendar {
        totalContributions
        weeks {
          contributionDays {
            date
            contributionCount
          }
        }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables"`
}

type graphQLError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type contributionCalendarResponse struct {
	Data struct {
		User *struct {
			ContributionsCollection struct {
				ContributionCalendar struct {
					TotalContributions int `json:"totalContributions"`
					Weeks              []struct {
						ContributionDays []struct {
							Date              string `json:"date"`
							ContributionCount int    `json:"contributionCount"`
						} `json:"contributionDays"`
					} `json:"weeks"`
				} `json:"contributionCalendar"`
			} `json:"contributionsCollection"`
		} `json:"user"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// LookupUser checks that username exists and returns GitHub's canonical login.
func (c *Client) LookupUser(ctx context.Context, username string) (string, remote.Outcome) {
	var user github.User
	outcome := c.Do(ctx, Request{
		Name:   "users",
		Method: http.MethodGet,
		Path:   fmt.Sprintf("users/%s", url.PathEscape(username)),
	}, &user)
	if !outcome.OK() {
		return "", outcome
	}

	login := user.GetLogin()
	if login == "" {
		login = username
	}
	return login, outcome
}

// ContributionCalendar fetches the user's contribution calendar over GraphQL.
// A response carrying GraphQL errors, or no user, is a transport error.
func (c *Client) ContributionCalendar(ctx context.Context, login string) ([]remote.DayCount, remote.Outcome) {
	var resp contributionCalendarResponse
	outcome := c.Do(ctx, Request{
		Name:   "graphql",
		Method: http.MethodPost,
		Path:   "graphql",
		Body: graphQLRequest{
			Query:     contributionCalendarQuery,
			Variables: map[string]interface{}{"username": login},
		},
	}, &resp)
	if !outcome.OK() {
		return nil, outcome
	}
	if len(resp.Errors) > 0 {
		return nil, remote.Failure(outcome.Status, fmt.Sprintf("graphql: %s", resp.Errors[0].Message))
	}
	if resp.Data.User == nil {
		return nil, remote.Failure(outcome.Status, "graphql: user missing from response")
	}

	var days []remote.DayCount
	for _, week := range resp.Data.User.ContributionsCollection.ContributionCalendar.Weeks {
		for _, day := range week.ContributionDays {
			days = append(days, remote.DayCount{Date: day.Date, Count: day.ContributionCount})
		}
	}
	return days, outcome
}

// PublicEvents returns creation times from a single page of public events.
func (c *Client) PublicEvents(ctx context.Context, login string) ([]time.Time, remote.Outcome) {
	var events []*github.Event
	outcome := c.Do(ctx, Request{
		Name:   "events",
		Method: http.MethodGet,
		Path:   fmt.Sprintf("users/%s/events/public?per_page=%d", url.PathEscape(login), eventsPageSize),
	}, &events)
	if !outcome.OK() {
		return nil, outcome
	}

	times := make([]time.Time, 0, len(events))
	for _, e := range events {
		if e.CreatedAt == nil {
			continue
		}
		times = append(times, e.GetCreatedAt().Time)
	}
	return times, outcome
}

// RecentRepositories returns up to limit repositories owned by login,
// most recently updated first.
func (c *Client) RecentRepositories(ctx context.Context, login string, limit int) ([]remote.Repository, remote.Outcome) {
	var repos []*github.Repository
	outcome := c.Do(ctx, Request{
		Name:   "repos",
		Method: http.MethodGet,
		Path:   fmt.Sprintf("users/%s/repos?sort=updated&per_page=%d", url.PathEscape(login), limit),
	}, &repos)
	if !outcome.OK() {
		return nil, outcome
	}

	out := make([]remote.Repository, 0, len(repos))
	for _, r := range repos {
		if r.GetFullName() == "" {
			continue
		}
		out = append(out, remote.Repository{
			FullName:  r.GetFullName(),
			UpdatedAt: r.GetUpdatedAt().Time,
		})
		if len(out) == limit {
			break
		}
	}
	return out, outcome
}

// Commits returns author dates from a single page of commits in repo
// (owner/name) authored by author since the given time.
func (c *Client) Commits(ctx context.Context, repo, author string, since time.Time) ([]time.Time, remote.Outcome) {
	q := url.Values{}
	q.Set("author", author)
	q.Set("since", since.UTC().Format(time.RFC3339))
	q.Set("per_page", fmt.Sprint(commitsPageSize))

	var commits []*github.RepositoryCommit
	outcome := c.Do(ctx, Request{
		Name:   "commits",
		Method: http.MethodGet,
		Path:   fmt.Sprintf("repos/%s/commits?%s", repo, q.Encode()),
	}, &commits)
	if !outcome.OK() {
		return nil, outcome
	}

	times := make([]time.Time, 0, len(commits))
	for _, rc := range commits {
		date := rc.GetCommit().GetAuthor().GetDate()
		if date.IsZero() {
			continue
		}
		times = append(times, date.Time)
	}
	return times, outcome
}
