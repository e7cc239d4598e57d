package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const redditTokenURL = "https://www.reddit.com/api/v1/access_token"

// expiryMargin is subtracted from the advertised token lifetime so a token
// is refreshed before Reddit actually rejects it.
const expiryMargin = 60 * time.Second

var errUnauthorized = errors.New("unauthorized")

// TokenProvider obtains and caches an OAuth bearer token via the
// client-credentials exchange. Refreshes are serialized by the mutex so
// concurrent callers never issue redundant token requests.
type TokenProvider struct {
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	userAgent    string

	mu     sync.Mutex
	token  string
	expiry time.Time
}

func NewTokenProvider(httpClient *http.Client, clientID, clientSecret, userAgent string) *TokenProvider {
	return &TokenProvider{
		httpClient:   httpClient,
		tokenURL:     redditTokenURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		userAgent:    userAgent,
	}
}

// Token returns the cached token, refreshing it when absent or expired.
func (p *TokenProvider) Token(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && time.Now().Before(p.expiry) {
		return p.token, nil
	}

	token, expiresIn, err := p.exchange(ctx)
	if err != nil {
		return "", err
	}

	p.token = token
	p.expiry = time.Now().Add(expiresIn - expiryMargin)

	return p.token, nil
}

// Invalidate drops the cached token so the next Token call fetches a fresh
// one. Called after an upstream 401.
func (p *TokenProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.token = ""
	p.expiry = time.Time{}
}

func (p *TokenProvider) exchange(ctx context.Context) (string, time.Duration, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.tokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", 0, fmt.Errorf("failed to create token request: %w", err)
	}
	req.SetBasicAuth(p.clientID, p.clientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", p.userAgent)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", 0, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("token request failed: %d %s", resp.StatusCode, resp.Status)
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", 0, fmt.Errorf("failed to decode token response: %w", err)
	}
	if payload.AccessToken == "" {
		return "", 0, errors.New("token response contained no access token")
	}

	return payload.AccessToken, time.Duration(payload.ExpiresIn) * time.Second, nil
}
