// Package client talks to a running str-forecast server.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/iwvelando/str-forecast/internal/config"
	"github.com/iwvelando/str-forecast/internal/forecast"
)

// DefaultTimeout bounds every request unless overridden.
const DefaultTimeout = 15 * time.Second

// APIClient is a resty-backed client for the simulation API.
type APIClient struct {
	httpClient *resty.Client
}

// SimulateResponse mirrors the body of POST /api/simulate.
type SimulateResponse struct {
	Forecast forecast.Forecast `json:"forecast"`
	Display  map[string]string `json:"display"`
	Duration string            `json:"duration"`
}

type propertyList struct {
	Properties []config.Property `json:"properties"`
	Warnings   []string          `json:"warnings"`
}

type apiError struct {
	Error string `json:"error"`
}

// NewClient builds a client for the server at baseURL. A timeout of zero
// selects DefaultTimeout.
func NewClient(baseURL string, timeout time.Duration) *APIClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetTimeout(timeout)

	return &APIClient{httpClient: restyClient}
}

// Simulate runs the property through the server's engine.
func (c *APIClient) Simulate(ctx context.Context, property config.Property, optimize bool) (*SimulateResponse, error) {
	result := new(SimulateResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("optimize", strconv.FormatBool(optimize)).
		SetBody(property).
		SetResult(result).
		SetError(apiErr).
		Post("/api/simulate")
	if err != nil {
		return nil, fmt.Errorf("simulate property: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

// ListProperties returns every stored property and any warnings about
// stored entries the server could not read.
func (c *APIClient) ListProperties(ctx context.Context) ([]config.Property, []string, error) {
	result := new(propertyList)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetResult(result).
		SetError(apiErr).
		Get("/api/properties")
	if err != nil {
		return nil, nil, fmt.Errorf("list properties: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, nil, err
	}
	return result.Properties, result.Warnings, nil
}

// SaveProperty stores the property under its name.
func (c *APIClient) SaveProperty(ctx context.Context, property config.Property) (*config.Property, error) {
	result := new(config.Property)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(property).
		SetResult(result).
		SetError(apiErr).
		Put("/api/properties/" + url.PathEscape(property.Name))
	if err != nil {
		return nil, fmt.Errorf("save property: %w", err)
	}
	if err := checkResponse(resp, apiErr); err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteProperty removes the named property. Deleting a missing property
// succeeds.
func (c *APIClient) DeleteProperty(ctx context.Context, name string) error {
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetError(apiErr).
		Delete("/api/properties/" + url.PathEscape(name))
	if err != nil {
		return fmt.Errorf("delete property: %w", err)
	}
	return checkResponse(resp, apiErr)
}

func checkResponse(resp *resty.Response, apiErr *apiError) error {
	if resp.StatusCode() < http.StatusBadRequest {
		return nil
	}
	message := strings.TrimSpace(apiErr.Error)
	if message == "" {
		message = strings.TrimSpace(resp.String())
	}
	return fmt.Errorf("server error: code=%d, message=%s", resp.StatusCode(), message)
}
