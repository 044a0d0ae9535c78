// Package remote describes the classified result of a single call against the
// GitHub API. Callers branch on the Kind; they never see transport errors.
package remote

import (
	"fmt"
	"net/http"
)

// Kind classifies a remote call.
type Kind int

const (
	OK Kind = iota
	NotFound
	RateLimited
	TransportError
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "ok"
	case NotFound:
		return "not_found"
	case RateLimited:
		return "rate_limited"
	case TransportError:
		return "transport_error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Outcome is the classified result of a remote call. Status is the HTTP status
// when a response was received, 0 otherwise.
type Outcome struct {
	Kind   Kind
	Status int
	Detail string
}

// Success returns an OK outcome.
func Success(status int) Outcome {
	return Outcome{Kind: OK, Status: status}
}

// Failure returns a TransportError outcome with the given detail.
func Failure(status int, detail string) Outcome {
	return Outcome{Kind: TransportError, Status: status, Detail: detail}
}

// FromStatus classifies a non-2xx HTTP status.
func FromStatus(status int, detail string) Outcome {
	switch {
	case status >= 200 && status < 300:
		return Success(status)
	case status == http.StatusNotFound:
		return Outcome{Kind: NotFound, Status: status, Detail: detail}
	case status == http.StatusForbidden, status == http.StatusTooManyRequests:
		return Outcome{Kind: RateLimited, Status: status, Detail: detail}
	default:
		return Failure(status, detail)
	}
}

// OK reports whether the call succeeded.
func (o Outcome) OK() bool {
	return o.Kind == OK
}

// Retryable reports whether repeating the same call could succeed: a network
// failure or a server-side error. Rate limits and missing resources are final.
func (o Outcome) Retryable() bool {
	return o.Kind == TransportError && (o.Status == 0 || o.Status >= 500)
}

func (o Outcome) String() string {
	if o.Status == 0 {
		if o.Detail == "" {
			return o.Kind.String()
		}
		return fmt.Sprintf("%s: %s", o.Kind, o.Detail)
	}
	if o.Detail == "" {
		return fmt.Sprintf("%s (HTTP %d)", o.Kind, o.Status)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", o.Kind, o.Status, o.Detail)
}

// Worse returns whichever outcome is more severe for fallback decisions.
// A rate limit outranks a transport error since it changes which fallback runs.
func Worse(a, b Outcome) Outcome {
	rank := func(o Outcome) int {
		switch o.Kind {
		case RateLimited:
			return 3
		case TransportError:
			return 2
		case NotFound:
			return 1
		default:
			return 0
		}
	}
	if rank(b) > rank(a) {
		return b
	}
	return a
}
