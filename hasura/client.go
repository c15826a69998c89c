package hasura

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	graphql "github.com/hasura/go-graphql-client"
	"github.com/pranshuj73/gifzoo/logger"
)

// AdminSecretHeader carries the shared secret on every upstream request
const AdminSecretHeader = "x-hasura-admin-secret"

// Client talks to a single Hasura GraphQL endpoint. Construct one per
// process and hand it to whatever needs upstream access.
type Client struct {
	gql     *graphql.Client
	metrics *Metrics
}

// Option configures a Client
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	metrics    *Metrics
}

// WithHTTPClient sets the base HTTP client. Its transport is wrapped, not
// replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithMetrics records every call in m
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// NewClient creates a client for endpoint. adminSecret may be empty.
func NewClient(endpoint, adminSecret string, opts ...Option) *Client {
	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	base := http.DefaultTransport
	timeout := time.Duration(0)
	if o.httpClient != nil {
		if o.httpClient.Transport != nil {
			base = o.httpClient.Transport
		}
		timeout = o.httpClient.Timeout
	}

	hc := &http.Client{
		Transport: &tracingTransport{base: base},
		Timeout:   timeout,
	}

	gql := graphql.NewClient(endpoint, hc).WithRequestModifier(func(req *http.Request) {
		if adminSecret != "" {
			req.Header.Set(AdminSecretHeader, adminSecret)
		}
	})

	logger.Debug("Created Hasura client", map[string]interface{}{
		"endpoint":  endpoint,
		"hasSecret": adminSecret != "",
	})

	return &Client{
		gql:     gql,
		metrics: o.metrics,
	}
}

// exec runs one GraphQL document and decodes its data into result
func (c *Client) exec(ctx context.Context, op, query string, variables map[string]interface{}, result interface{}) error {
	logger.Debug("Executing Hasura GraphQL operation", map[string]interface{}{
		"operation": op,
		"variables": variables,
	})

	p := &callTrace{}
	ctx = context.WithValue(ctx, traceKey{}, p)

	start := time.Now()
	data, err := c.gql.ExecRaw(ctx, query, variables)
	if err != nil {
		err = classify(op, err, p)
		c.metrics.observe(op, err, time.Since(start))
		logger.Error("Hasura operation failed", err, map[string]interface{}{
			"operation":  op,
			"statusCode": p.status,
		})
		return err
	}

	if err := json.Unmarshal(data, result); err != nil {
		err = &UpstreamError{Op: op, Message: fmt.Sprintf("failed to decode %s response", op), StatusCode: p.status, Err: err}
		c.metrics.observe(op, err, time.Since(start))
		logger.Error("Failed to unmarshal GraphQL data", err, map[string]interface{}{
			"operation": op,
		})
		return err
	}

	c.metrics.observe(op, nil, time.Since(start))
	logger.Debug("GraphQL operation successful", map[string]interface{}{
		"operation":  op,
		"statusCode": p.status,
	})
	return nil
}

// SearchGifs returns up to limit GIFs whose category contains category,
// starting at offset.
func (c *Client) SearchGifs(ctx context.Context, category string, limit, offset int) ([]Gif, error) {
	variables := map[string]interface{}{
		"category": "%" + category + "%",
		"limit":    limit,
		"offset":   offset,
	}

	var result GifsResponse
	if err := c.exec(ctx, "SearchGifs", SearchGifsQuery, variables, &result); err != nil {
		return nil, err
	}

	logger.Debug("GIF page fetched", map[string]interface{}{
		"category": category,
		"offset":   offset,
		"count":    len(result.Gifs),
	})
	return result.Gifs, nil
}

// SampleGifs returns up to limit GIFs whose category matches category
// case-insensitively.
func (c *Client) SampleGifs(ctx context.Context, category string, limit int) ([]Gif, error) {
	variables := map[string]interface{}{
		"category": category,
		"limit":    limit,
	}

	var result GifsResponse
	if err := c.exec(ctx, "SampleGifs", SampleGifsQuery, variables, &result); err != nil {
		return nil, err
	}
	return result.Gifs, nil
}

// Users lists every user
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var result UsersResponse
	if err := c.exec(ctx, "Users", UsersQuery, nil, &result); err != nil {
		return nil, err
	}
	return result.Users, nil
}

// UserByID returns the user with id, or nil when there is none
func (c *Client) UserByID(ctx context.Context, id int) (*User, error) {
	variables := map[string]interface{}{
		"id": id,
	}

	var result UserByPKResponse
	if err := c.exec(ctx, "UserByPK", UserByPKQuery, variables, &result); err != nil {
		return nil, err
	}
	return result.User, nil
}

// InsertUser creates a user and returns the stored row
func (c *Client) InsertUser(ctx context.Context, name, email string, mobile int) (*User, error) {
	logger.Info("Inserting user", map[string]interface{}{
		"name": name,
	})

	variables := map[string]interface{}{
		"name":   name,
		"email":  email,
		"mobile": mobile,
	}

	var result InsertUserResponse
	if err := c.exec(ctx, "InsertUser", InsertUserMutation, variables, &result); err != nil {
		return nil, err
	}
	return result.User, nil
}

type traceKey struct{}

// maxErrorBody caps how much of a non-2xx body is kept for error messages
const maxErrorBody = 64 << 10

// callTrace records what the transport saw for one call. body is only kept
// for non-2xx responses, which the GraphQL client reports without it.
type callTrace struct {
	status       int
	body         []byte
	transportErr error
}

type tracingTransport struct {
	base http.RoundTripper
}

func (t *tracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.base.RoundTrip(req)
	if p, ok := req.Context().Value(traceKey{}).(*callTrace); ok {
		if err != nil {
			p.transportErr = err
			return resp, err
		}
		p.status = resp.StatusCode
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			body, readErr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
			_ = resp.Body.Close()
			if readErr != nil {
				p.transportErr = readErr
				return nil, readErr
			}
			p.body = body
			resp.Body = io.NopCloser(bytes.NewReader(body))
		}
	}
	return resp, err
}
