package toncenter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/openbuilders/jetton-sender/internal/errors"
)

// Address states as reported by getAddressState.
const (
	StateActive        = "active"
	StateUninitialized = "uninitialized"
	StateFrozen        = "frozen"
)

type Config struct {
	BaseURL       string
	APIKey        string
	RetryAttempts int
	RetryWait     time.Duration
	Timeout       time.Duration
}

// Client is a minimal TON Center API client used for pre-flight checks: the
// jetton master's token data and the funding wallet's state. It retries
// transient failures with a fixed wait before surfacing an error.
type Client struct {
	config *Config
	http   *http.Client
	log    *slog.Logger
}

// TokenData is the jetton master state returned by getTokenData.
type TokenData struct {
	TotalSupply  json.Number `json:"total_supply"`
	Mintable     bool        `json:"mintable"`
	AdminAddress string      `json:"admin_address"`
	ContractType string      `json:"contract_type"`
}

type apiResponse struct {
	Ok     bool            `json:"ok"`
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
	Code   int             `json:"code"`
}

func New(config *Config) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		config: config,
		http:   &http.Client{Timeout: timeout},
		log:    slog.With("component", "toncenter"),
	}
}

// GetTokenData fetches the jetton master's state.
func (c *Client) GetTokenData(ctx context.Context, address string) (*TokenData, error) {
	params := url.Values{"address": {address}}

	var data TokenData
	if err := c.call(ctx, "getTokenData", params, &data); err != nil {
		return nil, errors.New(errors.CodePreflight,
			fmt.Sprintf("couldn't fetch token data for %s", address), err)
	}

	return &data, nil
}

// GetAddressState returns the state of an account: active, uninitialized or
// frozen.
func (c *Client) GetAddressState(ctx context.Context, address string) (string, error) {
	params := url.Values{"address": {address}}

	var state string
	if err := c.call(ctx, "getAddressState", params, &state); err != nil {
		return "", errors.New(errors.CodePreflight,
			fmt.Sprintf("couldn't fetch address state for %s", address), err)
	}

	return state, nil
}

// call performs one API method call with bounded retries. Network errors,
// 429 and 5xx responses are considered transient; API-level errors are not.
func (c *Client) call(ctx context.Context, method string, params url.Values, out any) error {
	attempts := c.config.RetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.log.Info(
				"retrying request",
				"method", method,
				"attempt", attempt,
				"error", lastErr,
			)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(c.config.RetryWait):
			}
		}

		var retryable bool
		retryable, lastErr = c.callOnce(ctx, method, params, out)
		if lastErr == nil {
			return nil
		}

		if !retryable {
			return lastErr
		}
	}

	return lastErr
}

func (c *Client) callOnce(ctx context.Context, method string, params url.Values,
	out any) (retryable bool, err error) {

	endpoint := fmt.Sprintf("%s/%s?%s", c.config.BaseURL, method, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}

	req.Header.Set("X-API-Key", c.config.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return true, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return true, fmt.Errorf("%s returned status %d", method, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, err
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return false, fmt.Errorf("%s response unmarshalling error: %w", method, err)
	}

	if !apiResp.Ok {
		return false, fmt.Errorf("%s error %d: %s", method, apiResp.Code, apiResp.Error)
	}

	if err := json.Unmarshal(apiResp.Result, out); err != nil {
		return false, fmt.Errorf("%s result unmarshalling error: %w", method, err)
	}

	return false, nil
}
