// SPDX-License-Identifier: MIT

// Package feed fetches the list of displayable media descriptors from the
// external media-list endpoint. It performs exactly one request per call;
// retry policy belongs to the caller.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	xglog "github.com/CMRapp/Slideshow-sub000/internal/log"
	"github.com/CMRapp/Slideshow-sub000/internal/media"
)

const (
	// DefaultListField is the JSON field holding the descriptor array.
	DefaultListField = "media"

	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 8 << 20
)

// Options tunes the client. Zero values fall back to defaults.
type Options struct {
	Timeout      time.Duration
	ListField    string
	MaxBodyBytes int64
	HTTPClient   *http.Client
}

// Client reads the media list from a single endpoint.
type Client struct {
	endpoint  string
	listField string
	maxBody   int64
	http      *http.Client
}

// New creates a client for the given media-list endpoint.
func New(endpoint string, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if strings.TrimSpace(opts.ListField) == "" {
		opts.ListField = DefaultListField
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		endpoint:  strings.TrimSpace(endpoint),
		listField: opts.ListField,
		maxBody:   opts.MaxBodyBytes,
		http:      hc,
	}
}

// Endpoint returns the configured media-list URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Fetch calls the media-list endpoint once and returns the descriptors in source order.
// Any failure is returned as a *FetchError.
func (c *Client) Fetch(ctx context.Context) ([]media.Descriptor, error) {
	ctx = xglog.ContextWithFetchID(ctx, uuid.NewString())
	logger := xglog.WithComponentFromContext(ctx, "feed")
	start := time.Now()

	items, fe := c.fetch(ctx)
	elapsed := time.Since(start)
	if fe != nil {
		observeFetch(fe.Reason(), elapsed.Seconds())
		logger.Warn().
			Err(fe).
			Str(xglog.FieldEvent, "feed.fetch_failed").
			Str("reason", fe.Reason()).
			Dur("duration", elapsed).
			Msg("playlist fetch failed")
		return nil, fe
	}

	observeFetch("success", elapsed.Seconds())
	unplayable := 0
	for _, it := range items {
		if !it.HasPlayableURL() {
			unplayable++
		}
	}
	if unplayable > 0 {
		unplayableDescriptors.Add(float64(unplayable))
		logger.Warn().
			Str(xglog.FieldEvent, "feed.unplayable_descriptors").
			Int("count", unplayable).
			Msg("source returned descriptors without a network URL")
	}
	logger.Debug().
		Str(xglog.FieldEvent, "feed.fetched").
		Int(xglog.FieldLength, len(items)).
		Dur("duration", elapsed).
		Msg("playlist fetched")
	return items, nil
}

func (c *Client) fetch(ctx context.Context) ([]media.Descriptor, *FetchError) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, &FetchError{Sentinel: ErrUnavailable, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if rid := xglog.FetchIDFromContext(ctx); rid != "" {
		req.Header.Set("X-Request-ID", rid)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, wrapError(err, 0, nil)
	}
	defer func() { _ = res.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(res.Body, c.maxBody+1))
	if err != nil {
		return nil, wrapError(err, 0, nil)
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		return nil, wrapError(nil, res.StatusCode, body)
	}
	if int64(len(body)) > c.maxBody {
		return nil, wrapError(fmt.Errorf("response exceeds %d bytes", c.maxBody), res.StatusCode, nil)
	}

	items, err := decodeList(body, c.listField)
	if err != nil {
		return nil, wrapError(err, res.StatusCode, nil)
	}
	return items, nil
}

// decodeList extracts the descriptor array stored under field.
func decodeList(body []byte, field string) ([]media.Descriptor, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	raw, ok := envelope[field]
	if !ok {
		return nil, fmt.Errorf("response has no %q field", field)
	}
	var items []media.Descriptor
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode %q: %w", field, err)
	}
	if items == nil {
		items = []media.Descriptor{}
	}
	return items, nil
}
