package dmarket

import (
	"bytes"
	"context"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	httpClient "github.com/Alias1177/skinflip/internal/platform/http"
)

const DefaultBaseURL = "https://api.dmarket.com"

// Client is the DMarket trading API client. Every request is signed with
// the account's ed25519 key.
type Client struct {
	publicKey  string
	privateKey ed25519.PrivateKey
	baseURL    string
	gameID     string
	httpClient *httpClient.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// ClientOptions holds options for creating a new DMarket client
type ClientOptions struct {
	PublicKey       string
	SecretKey       string
	BaseURL         string
	GameID          string
	RequestTimeout  time.Duration
	RequestsPerSec  int
	MaxRetries      int
	MaxRetryTimeout time.Duration
}

// NewClient creates a new DMarket API client. SecretKey is the hex encoded
// ed25519 private key (64 bytes) or seed (32 bytes). Without a SecretKey
// requests go out unsigned, which is enough for public market data.
func NewClient(options ClientOptions) (*Client, error) {
	var key ed25519.PrivateKey
	if options.SecretKey != "" {
		var err error
		if key, err = parseSecretKey(options.SecretKey); err != nil {
			return nil, err
		}
	}

	httpOpts := httpClient.ClientOptions{
		Timeout:         options.RequestTimeout,
		RequestsPerSec:  options.RequestsPerSec,
		MaxRetries:      options.MaxRetries,
		MaxRetryTimeout: options.MaxRetryTimeout,
	}
	if httpOpts.Timeout == 0 {
		httpOpts.Timeout = 30 * time.Second
	}
	if httpOpts.RequestsPerSec == 0 {
		httpOpts.RequestsPerSec = 5
	}

	baseURL := options.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	gameID := options.GameID
	if gameID == "" {
		gameID = "a8db"
	}

	return &Client{
		publicKey:  options.PublicKey,
		privateKey: key,
		baseURL:    baseURL,
		gameID:     gameID,
		httpClient: httpClient.NewClient(httpOpts),
		logger:     log.With().Str("component", "dmarket_client").Logger(),
		now:        time.Now,
	}, nil
}

func parseSecretKey(secret string) (ed25519.PrivateKey, error) {
	raw, err := hex.DecodeString(secret)
	if err != nil {
		return nil, fmt.Errorf("decoding secret key: %w", err)
	}
	switch len(raw) {
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	}
	return nil, fmt.Errorf("secret key has %d bytes, want %d or %d", len(raw), ed25519.SeedSize, ed25519.PrivateKeySize)
}

// sign returns the X-Request-Sign value for a request. The signed message is
// method + path with query + body + unix timestamp.
func (c *Client) sign(method, pathWithQuery string, body []byte, timestamp string) string {
	msg := method + pathWithQuery + string(body) + timestamp
	return "dmar ed25519 " + hex.EncodeToString(ed25519.Sign(c.privateKey, []byte(msg)))
}

// do sends a signed request and decodes the JSON response into out. Only
// GETs go through the retrying transport.
func (c *Client) do(ctx context.Context, method, pathWithQuery string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+pathWithQuery, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if payload == nil {
		req.Body = http.NoBody
		req.GetBody = nil
		req.ContentLength = 0
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	if c.privateKey != nil {
		timestamp := strconv.FormatInt(c.now().Unix(), 10)
		req.Header.Set("X-Api-Key", c.publicKey)
		req.Header.Set("X-Sign-Date", timestamp)
		req.Header.Set("X-Request-Sign", c.sign(method, pathWithQuery, body, timestamp))
	}

	c.logger.Debug().Str("method", method).Str("path", pathWithQuery).Msg("DMarket request")

	send := c.httpClient.DoRequest
	if method != http.MethodGet {
		// Buying, listing and cancelling must not be repeated blindly.
		send = c.httpClient.DoRequestOnce
	}
	resp, err := send(ctx, req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, pathWithQuery, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		c.logger.Error().Err(err).Str("response", string(raw)).Msg("Error parsing JSON")
		return fmt.Errorf("parsing JSON: %w", err)
	}
	return nil
}
