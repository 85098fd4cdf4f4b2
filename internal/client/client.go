// Package client is the front-end aggregator's view of the content and
// interaction services. Every call degrades to a default value when the
// upstream is slow, failing or tripped; callers never see transport errors.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"culturemap/internal/apperror"
	"culturemap/internal/metrics"
	"culturemap/internal/models"
	"culturemap/internal/services"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	upstreamContent      = "content"
	upstreamInteractions = "interactions"

	maxRetries = 2
)

// statusError is a non-2xx answer. 4xx answers are the caller's problem and
// count as breaker successes, as do calls the caller abandoned.
type statusError struct {
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("upstream status %d", e.code)
}

func clientError(err error) bool {
	var se *statusError
	return errors.As(err, &se) && se.code < http.StatusInternalServerError
}

type upstream struct {
	name    string
	baseURL string
	breaker *gobreaker.CircuitBreaker
}

type Client struct {
	http         *http.Client
	timeout      time.Duration
	content      *upstream
	interactions *upstream
	log          *zap.Logger
}

// New builds a client with one circuit breaker per upstream. timeout bounds
// each call including retries.
func New(contentURL, interactionURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		http:         &http.Client{Timeout: timeout},
		timeout:      timeout,
		content:      newUpstream(upstreamContent, contentURL, log),
		interactions: newUpstream(upstreamInteractions, interactionURL, log),
		log:          log,
	}
}

func newUpstream(name, baseURL string, log *zap.Logger) *upstream {
	settings := gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || clientError(err) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state change", zap.String("name", name), zap.String("from", from.String()), zap.String("to", to.String()))
		},
	}
	return &upstream{
		name:    name,
		baseURL: strings.TrimRight(baseURL, "/"),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// getJSON fetches path from up into out. Server errors and transport failures
// are retried with exponential backoff; 4xx answers and an open breaker are not.
func (c *Client) getJSON(ctx context.Context, up *upstream, path, token string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	operation := func() error {
		_, err := up.breaker.Execute(func() (interface{}, error) {
			return nil, c.fetch(ctx, up, path, token, out)
		})
		if err == nil {
			return nil
		}
		if clientError(err) || errors.Is(err, context.Canceled) || errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return backoff.Permanent(err)
		}
		return err
	}

	expBackoff := backoff.NewExponentialBackOff()
	expBackoff.InitialInterval = 50 * time.Millisecond
	expBackoff.MaxElapsedTime = c.timeout
	return backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(expBackoff, maxRetries), ctx))
}

func (c *Client) fetch(ctx context.Context, up *upstream, path, token string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, up.baseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &statusError{code: resp.StatusCode}
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) degraded(up *upstream, path string, err error) {
	if errors.Is(err, context.Canceled) {
		c.log.Debug("upstream call abandoned", zap.String("upstream", up.name), zap.String("path", path))
		return
	}
	metrics.UpstreamDegraded.WithLabelValues(up.name).Inc()
	c.log.Warn("upstream degraded",
		zap.String("upstream", up.name),
		zap.String("path", path),
		zap.Error(err))
}

// ListContent returns one page of items. An unavailable content service
// yields an empty page.
func (c *Client) ListContent(ctx context.Context, kind models.Kind, query url.Values, token string) (services.ContentPage, bool) {
	path := fmt.Sprintf("/content/%s", kind)
	if encoded := query.Encode(); encoded != "" {
		path += "?" + encoded
	}

	var page services.ContentPage
	if err := c.getJSON(ctx, c.content, path, token, &page); err != nil {
		c.degraded(c.content, path, err)
		return services.ContentPage{Items: []models.ContentItem{}, Page: 1, TotalPages: 1}, false
	}
	if page.Items == nil {
		page.Items = []models.ContentItem{}
	}
	return page, true
}

// Item returns apperror.ErrNotFound when the content service answers 404.
// Any other failure yields (nil, nil): the item is absent but the page is not.
func (c *Client) Item(ctx context.Context, kind models.Kind, id uint, token string) (*models.ContentItem, error) {
	path := fmt.Sprintf("/content/%s/%d", kind, id)

	var item models.ContentItem
	err := c.getJSON(ctx, c.content, path, token, &item)
	var se *statusError
	switch {
	case err == nil:
		return &item, nil
	case errors.As(err, &se) && se.code == http.StatusNotFound:
		return nil, apperror.ErrNotFound
	default:
		c.degraded(c.content, path, err)
		return nil, nil
	}
}

// Summary falls back to {mean: null, count: 0}.
func (c *Client) Summary(ctx context.Context, t models.Target) (models.VoteSummary, bool) {
	path := fmt.Sprintf("/interactions/votes/summary/%s/%d", t.Kind, t.ID)

	var sum models.VoteSummary
	if err := c.getJSON(ctx, c.interactions, path, "", &sum); err != nil {
		c.degraded(c.interactions, path, err)
		return models.VoteSummary{}, false
	}
	return sum, true
}

// Comments falls back to an empty first page.
func (c *Client) Comments(ctx context.Context, t models.Target) (services.CommentPage, bool) {
	path := fmt.Sprintf("/interactions/comments/%s/%d", t.Kind, t.ID)

	var page services.CommentPage
	if err := c.getJSON(ctx, c.interactions, path, "", &page); err != nil {
		c.degraded(c.interactions, path, err)
		return services.CommentPage{Items: []models.Comment{}, Page: 1, TotalPages: 1}, false
	}
	if page.Items == nil {
		page.Items = []models.Comment{}
	}
	return page, true
}
