package csvimport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Raymond9734/voicemail-drop-backend/internal/models"
)

// BulkPath is the bulk create endpoint relative to the API base URL
const BulkPath = "/api/customers/bulk"

// BulkRequest is the bulk create payload
type BulkRequest struct {
	Customers []models.CustomerInput `json:"customers"`
}

type errorBody struct {
	Error   string             `json:"error"`
	Code    string             `json:"code"`
	Details []models.RowDetail `json:"details"`
}

// Client submits validated customers to the bulk create endpoint
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a bulk client. token is sent as a bearer token when set.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: httpClient,
	}
}

// BulkCreate sends every customer in a single request. A 400 with row details
// returns *RejectedError; any other failure wraps ErrSubmitFailed. No retry.
func (c *Client) BulkCreate(ctx context.Context, customers []models.CustomerInput) (*BulkResult, error) {
	body, err := json.Marshal(BulkRequest{Customers: customers})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+BulkPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSubmitFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		var result BulkResult
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return nil, fmt.Errorf("%w: decode response: %w", ErrSubmitFailed, err)
		}
		return &result, nil
	}

	var eb errorBody
	if err := json.NewDecoder(resp.Body).Decode(&eb); err == nil &&
		resp.StatusCode == http.StatusBadRequest && len(eb.Details) > 0 {
		return nil, &RejectedError{Message: eb.Error, Details: eb.Details}
	}

	return nil, fmt.Errorf("%w: unexpected status %d", ErrSubmitFailed, resp.StatusCode)
}
