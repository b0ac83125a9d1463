// Package notify pushes case status changes from the hospital server back
// to the ambulance server.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// StatusNotifier delivers acceptance status updates to the ambulance
// server's receive endpoint. Deliveries are best effort; callers decide
// whether a failure matters.
type StatusNotifier struct {
	baseURL    string
	httpClient *http.Client
	log        zerolog.Logger
}

// Option configures a StatusNotifier.
type Option func(*StatusNotifier)

// WithHTTPClient overrides the default HTTP client used for deliveries.
func WithHTTPClient(c *http.Client) Option {
	return func(n *StatusNotifier) { n.httpClient = c }
}

// NewStatusNotifier builds a notifier targeting the ambulance server at
// baseURL (scheme and host, no trailing slash required).
func NewStatusNotifier(baseURL string, timeout time.Duration, log zerolog.Logger, opts ...Option) *StatusNotifier {
	n := &StatusNotifier{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

type statusPayload struct {
	Status string `json:"status"`
}

// PushStatus POSTs the new acceptance status for a case to the ambulance
// server. A non-2xx response is an error.
func (n *StatusNotifier) PushStatus(ctx context.Context, caseID int64, status string) error {
	payload, err := json.Marshal(statusPayload{Status: status})
	if err != nil {
		return fmt.Errorf("marshal status payload: %w", err)
	}

	url := n.baseURL + "/api/receive_hospital_update/" + strconv.FormatInt(caseID, 10)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build status request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("push status for case %d: %w", caseID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	n.log.Debug().
		Int64("case_id", caseID).
		Str("status", status).
		Int("code", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("status pushed to ambulance server")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("push status for case %d: non-2xx response: %d", caseID, resp.StatusCode)
	}
	return nil
}
