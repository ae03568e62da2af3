package health

import (
	"context"
	"net/http"
	"time"
)

// DefaultTimeout bounds a single probe when the caller's client has none.
const DefaultTimeout = 2 * time.Second

// Status represents the status of the deployed app
type Status int

const (
	StatusUnknown Status = iota
	StatusUp
	StatusDown
)

func (s Status) String() string {
	switch s {
	case StatusUp:
		return "up"
	case StatusDown:
		return "down"
	default:
		return "unknown"
	}
}

// Result is the outcome of one probe.
type Result struct {
	URL        string
	Status     Status
	StatusCode int
	Latency    time.Duration
	Err        error
}

// Check issues a GET against url. Only HTTP 200 counts as up.
func Check(ctx context.Context, client *http.Client, url string) Result {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}

	result := Result{URL: url, Status: StatusDown}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		result.Status = StatusUnknown
		result.Err = err
		return result
	}

	start := time.Now()
	resp, err := client.Do(req)
	result.Latency = time.Since(start)
	if err != nil {
		result.Err = err
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	if resp.StatusCode == http.StatusOK {
		result.Status = StatusUp
	}

	return result
}
