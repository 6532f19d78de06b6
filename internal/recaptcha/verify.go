// Package recaptcha checks reCAPTCHA v3 tokens posted with public forms.
package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://www.google.com/recaptcha/api/siteverify"
	DefaultMinScore = 0.5
)

type VerifyResponse struct {
	Success     bool     `json:"success"`
	Score       float64  `json:"score"`
	Action      string   `json:"action"`
	ChallengeTS string   `json:"challenge_ts"`
	Hostname    string   `json:"hostname"`
	ErrorCodes  []string `json:"error-codes"`
}

// Verifier checks tokens against the siteverify endpoint
type Verifier struct {
	secret   string
	minScore float64
	endpoint string
	client   *http.Client
}

type Option func(*Verifier)

// WithMinScore sets the score below which a token is rejected
func WithMinScore(score float64) Option {
	return func(v *Verifier) {
		if score > 0 && score <= 1 {
			v.minScore = score
		}
	}
}

func WithEndpoint(endpoint string) Option {
	return func(v *Verifier) { v.endpoint = endpoint }
}

func WithHTTPClient(client *http.Client) Option {
	return func(v *Verifier) { v.client = client }
}

func NewVerifier(secret string, opts ...Option) *Verifier {
	v := &Verifier{
		secret:   secret,
		minScore: DefaultMinScore,
		endpoint: DefaultEndpoint,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Verify sends token to the siteverify endpoint and returns its answer
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) (*VerifyResponse, error) {
	form := url.Values{
		"secret":   {v.secret},
		"response": {token},
	}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("verify recaptcha: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("verify recaptcha: unexpected status %d", resp.StatusCode)
	}

	var result VerifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode verify response: %w", err)
	}
	return &result, nil
}

// IsValid reports whether token passes for action. An unsuccessful check is
// an error; a low score or a mismatched action is not.
func (v *Verifier) IsValid(ctx context.Context, token, action, remoteIP string) (bool, float64, error) {
	if token == "" {
		return false, 0, nil
	}

	result, err := v.Verify(ctx, token, remoteIP)
	if err != nil {
		return false, 0, err
	}

	if !result.Success {
		return false, result.Score, fmt.Errorf("recaptcha verification failed: %v", result.ErrorCodes)
	}
	if action != "" && result.Action != action {
		return false, result.Score, nil
	}

	return result.Score >= v.minScore, result.Score, nil
}
