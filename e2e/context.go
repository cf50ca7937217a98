package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"fides/internal/token"
	id "fides/pkg/domain"
)

// TestContext holds state between test steps. Every scenario gets a fresh
// context and a fresh customer identity so runs do not interfere.
type TestContext struct {
	BaseURL          string
	HTTPClient       *http.Client
	LastResponse     *http.Response
	LastResponseBody []byte

	CustomerEmail    string
	CustomerPassword string
	AccessToken      string
	AdminToken       string
	ApplicationID    string

	tokens *token.Service
}

// NewTestContext creates a new test context. The signing key must match the
// server's FIDES_JWT_SIGNING_KEY so locally minted admin tokens validate.
func NewTestContext() *TestContext {
	baseURL := os.Getenv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	signingKey := os.Getenv("FIDES_JWT_SIGNING_KEY")
	if signingKey == "" {
		signingKey = "dev-secret-key-change-in-production"
	}
	issuer := os.Getenv("FIDES_TOKEN_ISSUER")
	if issuer == "" {
		issuer = "fides"
	}

	return &TestContext{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		CustomerEmail:    fmt.Sprintf("e2e-%d@example.com", time.Now().UnixNano()),
		CustomerPassword: "correct horse battery",
		tokens:           token.NewService(signingKey, issuer, time.Hour),
	}
}

// MintAdminToken signs an admin token directly. Admin principals are
// provisioned outside the API, so e2e runs mint their own.
func (tc *TestContext) MintAdminToken() error {
	tok, err := tc.tokens.Generate(context.Background(), id.CustomerID{}, "e2e-admin@fides.test", token.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to mint admin token: %w", err)
	}
	tc.AdminToken = tok
	return nil
}

// POST makes a POST request and stores the response.
func (tc *TestContext) POST(path string, body interface{}, bearer string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return tc.do(req)
}

// GET makes a GET request and stores the response.
func (tc *TestContext) GET(path string, bearer string) error {
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, tc.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	return tc.do(req)
}

func (tc *TestContext) do(req *http.Request) error {
	resp, err := tc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}

	tc.LastResponse = resp
	tc.LastResponseBody, err = io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

// GetResponseField extracts a field from the JSON response.
func (tc *TestContext) GetResponseField(field string) (interface{}, error) {
	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	value, ok := data[field]
	if !ok {
		return nil, fmt.Errorf("field %s not found in response: %s", field, tc.LastResponseBody)
	}

	return value, nil
}

// ResponseContains checks if the response body contains a field or text.
func (tc *TestContext) ResponseContains(text string) bool {
	if strings.Contains(string(tc.LastResponseBody), text) {
		return true
	}

	var data map[string]interface{}
	if err := json.Unmarshal(tc.LastResponseBody, &data); err == nil {
		if _, ok := data[text]; ok {
			return true
		}
	}

	return false
}
