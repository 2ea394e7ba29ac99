// Package mirror talks to the remote mirror: a namespace-keyed blob store
// holding the last-pushed snapshot for each sync code.
package mirror

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"time"

	"github.com/pantrysync/restock/internal/client/models"
	"github.com/pantrysync/restock/internal/common"
	"github.com/pantrysync/restock/internal/logging"
)

// MaxHistoryPush bounds how many history records a push carries. Active
// records are always pushed in full; older history has no actionable value
// on other devices.
const MaxHistoryPush = 100

// ErrNotFound reports that the namespace has no snapshot yet. It is distinct
// from transport failures so the caller can safely seed the remote from
// local only in this case.
var ErrNotFound = common.ErrorNotFound

// Client performs pull/push against the mirror over HTTP.
type Client struct {
	baseURL string
	http    *http.Client
	logger  logging.Logger
}

// New builds a Client for the mirror at baseURL. timeout applies to each
// pull/push request; zero selects a 10s default.
func New(baseURL string, timeout time.Duration, logger logging.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: timeout},
		logger:  logger.With("module", "mirror"),
	}
}

// Pull fetches the snapshot for code.
//
// A 404, or a successful response with an empty/null body, returns
// ErrNotFound ("namespace never pushed"). Any other failure (network
// error, non-2xx status, payload that is not a JSON array) is returned as
// a transport error. Callers must not treat transport errors as absence.
func (c *Client) Pull(ctx context.Context, code string) ([]models.Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/"+code, nil)
	if err != nil {
		return nil, fmt.Errorf("building pull request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pull failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("pull failed: %s", resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading pull response: %w", err)
	}
	if len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, ErrNotFound
	}

	var items []models.Item
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("malformed snapshot: %w", err)
	}
	return items, nil
}

// Push uploads the sanitized projection of items to code: all active
// records plus the MaxHistoryPush most recent history records. Returns
// success as a boolean and never panics; failures are logged.
func (c *Client) Push(ctx context.Context, code string, items []models.Item) bool {
	payload, err := json.Marshal(Projection(items))
	if err != nil {
		c.logger.Error(ctx, "encoding push payload", "error", err)
		return false
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/"+code, bytes.NewReader(payload))
	if err != nil {
		c.logger.Error(ctx, "building push request", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn(ctx, "push failed", "error", err)
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn(ctx, "push rejected", "status", resp.Status)
		return false
	}
	return true
}

// Projection is the sanitized collection a push uploads: every active
// record in original order, then history records sorted most recent first,
// truncated to MaxHistoryPush.
func Projection(items []models.Item) []models.Item {
	active := make([]models.Item, 0, len(items))
	history := make([]models.Item, 0, len(items))
	for _, item := range items {
		if item.Status == models.StatusActive {
			active = append(active, item)
		} else {
			history = append(history, item)
		}
	}

	slices.SortStableFunc(history, func(a, b models.Item) int {
		switch {
		case a.AddedDate > b.AddedDate:
			return -1
		case a.AddedDate < b.AddedDate:
			return 1
		default:
			return 0
		}
	})
	if len(history) > MaxHistoryPush {
		history = history[:MaxHistoryPush]
	}

	return append(active, history...)
}

// IsNotFound reports whether err marks an absent namespace.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
