// Package petapi is the HTTP client of the clinic REST API.
package petapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/inovacc/vetlink/internal/application"
	"github.com/inovacc/vetlink/internal/model"
)

const (
	// DefaultBaseURL is where the clinic API listens in development
	DefaultBaseURL = "http://localhost:8000"

	// PetsPath is the pet listing endpoint
	PetsPath = "/api/consult-mascotas/"

	// CreatePetPath is the pet creation endpoint
	CreatePetPath = "/api/create-pet/"

	// OwnersPath is the client listing endpoint
	OwnersPath = "/api/consult-client/"

	// AddClientPath is the client registration endpoint
	AddClientPath = "/api/add-client/"

	// RequestIDHeader carries the per-request id
	RequestIDHeader = "X-Request-ID"

	defaultTimeout = 30 * time.Second
	maxErrorBody   = 4096
)

// Client is a client for the clinic API
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	logger     *slog.Logger
}

// Options configures the client
type Options struct {
	Logger *slog.Logger

	// HTTPClient replaces the default client; Timeout is ignored when set.
	HTTPClient *http.Client

	// Timeout bounds each request, 30s when zero.
	Timeout time.Duration
}

// New creates a new API client for baseURL (scheme and host, optionally a path prefix)
func New(baseURL string, opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid API URL %q: %w", baseURL, err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid API URL %q: scheme must be http or https", baseURL)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("invalid API URL %q: missing host", baseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}

		httpClient = &http.Client{Timeout: timeout}
	}

	logger.Debug("creating API client", slog.String("base_url", u.String()))

	return &Client{
		httpClient: httpClient,
		baseURL:    u,
		logger:     logger,
	}, nil
}

type petPage struct {
	Count    int         `json:"count"`
	Next     *string     `json:"next"`
	Previous *string     `json:"previous"`
	Results  []model.Pet `json:"results"`
}

// List fetches one page of pets matching q
func (c *Client) List(ctx context.Context, q model.Query) (model.PageResult, error) {
	if err := q.Validate(); err != nil {
		return model.PageResult{}, fmt.Errorf("list pets: %w", err)
	}

	var page petPage
	if err := c.doRequest(ctx, "list pets", http.MethodGet, PetsPath, q.Values(), nil, &page); err != nil {
		return model.PageResult{}, err
	}

	if page.Results == nil {
		return model.PageResult{}, &DecodeError{Operation: "list pets", Err: errors.New(`missing "results"`)}
	}

	return model.PageResult{Pets: page.Results, Count: page.Count}, nil
}

// Create registers a new pet and returns it as stored by the API
func (c *Client) Create(ctx context.Context, p model.NewPet) (model.Pet, error) {
	var pet model.Pet
	if err := c.doRequest(ctx, "create pet", http.MethodPost, CreatePetPath, nil, p.Normalize(), &pet); err != nil {
		return model.Pet{}, err
	}

	return pet, nil
}

type ownerPage struct {
	Count   int           `json:"count"`
	Results []model.Owner `json:"results"`
}

// ListOwners fetches one page of clinic clients matching q
func (c *Client) ListOwners(ctx context.Context, q model.OwnerQuery) (model.OwnerPage, error) {
	if err := q.Validate(); err != nil {
		return model.OwnerPage{}, fmt.Errorf("list owners: %w", err)
	}

	var page ownerPage
	if err := c.doRequest(ctx, "list owners", http.MethodGet, OwnersPath, q.Values(), nil, &page); err != nil {
		return model.OwnerPage{}, err
	}

	if page.Results == nil {
		return model.OwnerPage{}, &DecodeError{Operation: "list owners", Err: errors.New(`missing "results"`)}
	}

	return model.OwnerPage{Owners: page.Results, Count: page.Count}, nil
}

// CreateOwner registers a clinic client
func (c *Client) CreateOwner(ctx context.Context, o model.Owner) (model.Owner, error) {
	var owner model.Owner
	if err := c.doRequest(ctx, "add client", http.MethodPost, AddClientPath, nil, o.Normalize(), &owner); err != nil {
		return model.Owner{}, err
	}

	return owner, nil
}

// doRequest performs an HTTP request against the API and decodes a JSON
// response into result
func (c *Client) doRequest(ctx context.Context, op, method, path string, query url.Values, body, result any) error {
	endpoint := c.baseURL.JoinPath(path)
	// JoinPath drops the trailing slash the API routes require
	if strings.HasSuffix(path, "/") && !strings.HasSuffix(endpoint.Path, "/") {
		endpoint.Path += "/"
	}

	endpoint.RawQuery = encodeQuery(query)

	requestID := uuid.NewString()

	c.logger.Debug("making API request",
		slog.String("op", op),
		slog.String("method", method),
		slog.String("url", endpoint.String()),
		slog.String("request_id", requestID),
	)

	var bodyReader io.Reader

	if body != nil {
		bodyBytes, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: failed to marshal request body: %w", op, err)
		}

		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), bodyReader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", op, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", application.AppName+"/"+application.Version)
	req.Header.Set(RequestIDHeader, requestID)

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &TransportError{Operation: op, Err: err}
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	c.logger.Debug("API response",
		slog.String("op", op),
		slog.Int("status", resp.StatusCode),
		slog.Duration("elapsed", time.Since(started)),
		slog.String("request_id", requestID),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

		return &StatusError{Operation: op, StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return &DecodeError{Operation: op, Err: err}
		}
	}

	return nil
}

// encodeQuery writes the listing parameters in a fixed order
// (search, column, order, page, page_size) so logged URLs read naturally.
func encodeQuery(v url.Values) string {
	if len(v) == 0 {
		return ""
	}

	order := map[string]int{"search": 0, "column": 1, "order": 2, "page": 3, "page_size": 4}
	keys := sortedKeys(map[string][]string(v))

	sort.SliceStable(keys, func(i, j int) bool {
		oi, iok := order[keys[i]]
		oj, jok := order[keys[j]]

		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})

	var b strings.Builder

	for _, k := range keys {
		for _, val := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}

			b.WriteString(url.QueryEscape(k))
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(val))
		}
	}

	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
