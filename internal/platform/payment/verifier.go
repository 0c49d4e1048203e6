package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/dayplan-app/dayplan-api/internal/config"
	"github.com/dayplan-app/dayplan-api/internal/domain"
)

// Verifier errors
var (
	// ErrVerifierUnavailable is returned when the payment verifier cannot be
	// reached or answers with a server error.
	ErrVerifierUnavailable = errors.New("payment verifier unavailable")

	// ErrVerifierResponse is returned when the verifier answers with a body
	// that cannot be interpreted.
	ErrVerifierResponse = errors.New("invalid payment verifier response")
)

// Verifier checks an account's payment standing against an external
// billing service. Implementations must be safe for concurrent use.
type Verifier interface {
	// Check returns the current payment status for the given login.
	// A transport or protocol failure returns an error; the caller decides
	// how stale local state may be used in that case.
	Check(ctx context.Context, login string) (domain.PaymentStatus, error)
}

// Client is the HTTP implementation of Verifier.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a payment verifier client from configuration.
// If logger is nil, a default logger will be used.
func NewClient(cfg config.PaymentConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL: cfg.VerifierURL,
		httpClient: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		logger: logger.With(slog.String("component", "payment_verifier")),
	}
}

// Ensure Client implements Verifier
var _ Verifier = (*Client)(nil)

type checkRequest struct {
	Login string `json:"login"`
}

type checkResponse struct {
	Status string `json:"status"`
}

// Check implements Verifier.Check
func (c *Client) Check(ctx context.Context, login string) (domain.PaymentStatus, error) {
	body, err := json.Marshal(checkRequest{Login: login})
	if err != nil {
		return "", fmt.Errorf("failed to encode verifier request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build verifier request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("payment verifier request failed", "error", err)
		return "", fmt.Errorf("%w: %v", ErrVerifierUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusInternalServerError {
		c.logger.Warn("payment verifier returned server error", "status_code", resp.StatusCode)
		return "", fmt.Errorf("%w: status %d", ErrVerifierUnavailable, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: unexpected status %d", ErrVerifierResponse, resp.StatusCode)
	}

	var decoded checkResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: %v", ErrVerifierResponse, err)
	}

	status := domain.PaymentStatus(decoded.Status)
	if !status.IsValid() {
		return "", fmt.Errorf("%w: unknown status %q", ErrVerifierResponse, decoded.Status)
	}

	return status, nil
}
