// Package sheets talks to the Google Apps Script endpoint that fronts the
// reviews spreadsheet.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"festive/internal/domain/reviews"

	"go.uber.org/zap"
)

const maxBodyBytes = 2 << 20 // 2mb

// Client reads and appends reviews through the script endpoint. With an empty
// script URL it is unconfigured: reads return the fallback dataset and
// writes fail.
type Client struct {
	scriptURL  string
	httpClient *http.Client
	logger     *zap.SugaredLogger
	now        func() time.Time

	fallbacks atomic.Int64
	fetches   atomic.Int64
}

func NewClient(scriptURL string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{
		scriptURL:  strings.TrimSpace(scriptURL),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		now:        time.Now,
	}
}

// Configured reports whether a script URL was provided.
func (c *Client) Configured() bool {
	return c.scriptURL != ""
}

// Fallbacks is the number of reads answered from the built-in dataset.
func (c *Client) Fallbacks() int64 { return c.fallbacks.Load() }

// Fetches is the number of reads attempted.
func (c *Client) Fetches() int64 { return c.fetches.Load() }

type listResponse struct {
	Success bool     `json:"success"`
	Data    []rawRow `json:"data"`
}

type rawRow struct {
	ID         flexString `json:"id"`
	Name       flexString `json:"name"`
	StarCount  flexString `json:"starcount"`
	EventType  flexString `json:"eventtype"`
	Review     flexString `json:"review"`
	DateOfPost flexString `json:"dateofpost"`
}

// ListReviews returns the sheet contents, normalised. Any failure to reach or
// understand the endpoint is answered with Fallback(). The only error
// returned is ctx.Err() when the caller has gone away.
func (c *Client) ListReviews(ctx context.Context) ([]reviews.Review, error) {
	c.fetches.Add(1)
	if !c.Configured() {
		return c.fallback("script url not configured", nil), nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.scriptURL, nil)
	if err != nil {
		return c.fallback("build request", err), nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return c.fallback("request failed", err), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fallback("unexpected status", fmt.Errorf("http=%d", resp.StatusCode)), nil
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return c.fallback("read body", err), nil
	}

	var payload listResponse
	if err := json.Unmarshal(raw, &payload); err != nil {
		return c.fallback("decode body", err), nil
	}
	if !payload.Success || len(payload.Data) == 0 {
		return c.fallback("empty payload", nil), nil
	}

	return c.normalize(payload.Data), nil
}

func (c *Client) fallback(reason string, err error) []reviews.Review {
	c.fallbacks.Add(1)
	if err != nil {
		c.logger.Warnw("serving fallback reviews", "reason", reason, "error", err)
	} else {
		c.logger.Infow("serving fallback reviews", "reason", reason)
	}
	return Fallback()
}

func (c *Client) normalize(rows []rawRow) []reviews.Review {
	today := reviews.FormatDate(c.now())
	out := make([]reviews.Review, 0, len(rows))
	for i, row := range rows {
		r := reviews.Review{
			ID:         orDefault(row.ID.String(), fmt.Sprintf("review-%d", i)),
			Name:       orDefault(row.Name.String(), "Anonymous"),
			StarCount:  parseRating(row.StarCount.String()),
			EventType:  reviews.ParseEventType(row.EventType.String()),
			Review:     row.Review.String(),
			DateOfPost: orDefault(reviews.NormalizeDate(row.DateOfPost.String()), today),
		}
		// Name always has a value by now, so this drops rows with no body,
		// including those missing both name and body.
		if r.Review == "" {
			continue
		}
		out = append(out, r)
	}
	return out
}

// SubmitReview appends d to the sheet. The draft travels as query
// parameters on a GET so the browser never needs a preflight the script
// cannot answer. Any failure yields false.
func (c *Client) SubmitReview(ctx context.Context, d reviews.Draft) bool {
	if !c.Configured() {
		c.logger.Warnw("review submit skipped", "reason", "script url not configured")
		return false
	}

	u, err := url.Parse(c.scriptURL)
	if err != nil {
		c.logger.Errorw("invalid script url", "error", err)
		return false
	}
	q := u.Query()
	q.Set("action", "add")
	q.Set("name", d.Name)
	q.Set("starcount", strconv.Itoa(reviews.ClampRating(d.StarCount)))
	q.Set("eventtype", string(reviews.ParseEventType(string(d.EventType))))
	q.Set("review", d.Review)
	q.Set("dateofpost", reviews.FormatDate(c.now()))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		c.logger.Errorw("build submit request", "error", err)
		return false
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warnw("review submit failed", "error", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warnw("review submit failed", "status", resp.StatusCode)
		return false
	}

	var out struct {
		Success bool `json:"success"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&out); err != nil {
		c.logger.Warnw("review submit decode", "error", err)
		return false
	}
	return out.Success
}

// flexString accepts a JSON string, number or bool. Sheets cells come back
// typed by whatever the spreadsheet guessed.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	*f = flexString(b)
	return nil
}

func (f flexString) String() string {
	return strings.TrimSpace(string(f))
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// parseRating reads a leading integer the way a lenient form parser would
// ("4", "4.5", "5 stars"). Zero and garbage become DefaultRating; the result
// is clamped.
func parseRating(s string) int {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return reviews.DefaultRating
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil || n == 0 {
		return reviews.DefaultRating
	}
	return reviews.ClampRating(n)
}
