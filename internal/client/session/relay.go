package session

import (
	"context"
	"net/url"
	"sync"
	"time"
)

// DefaultRelayTimeout bounds how long a relay waits for the main domain to
// answer before the client proceeds as unauthenticated.
const DefaultRelayTimeout = 5 * time.Second

// TokenRelay obtains a session token established on the main domain when the
// client runs on a shop subdomain without a locally stored token. Relays are
// best effort: a failed or timed-out attempt reports an empty token, never a
// blocking error.
type TokenRelay interface {
	Obtain(ctx context.Context) (string, error)
}

// TokenMessage is a reply from the main-domain token bridge.
type TokenMessage struct {
	Origin string
	Token  string // empty when the bridge holds no token
}

// BridgeRelay asks the main-domain token bridge for its stored token over an
// asynchronous request/response channel pair. Replies from origins outside
// the allow-list are ignored, and a reply must arrive within the timeout.
type BridgeRelay struct {
	requests       chan<- struct{}
	replies        <-chan TokenMessage
	allowedOrigins map[string]bool
	timeout        time.Duration
}

// NewBridgeRelay creates a relay over the given channels. Only replies whose
// origin is in allowedOrigins are accepted.
func NewBridgeRelay(requests chan<- struct{}, replies <-chan TokenMessage, allowedOrigins []string) *BridgeRelay {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}
	return &BridgeRelay{
		requests:       requests,
		replies:        replies,
		allowedOrigins: allowed,
		timeout:        DefaultRelayTimeout,
	}
}

// Obtain requests the token from the bridge and waits for an allowed reply.
// A timeout or cancelled context yields ("", nil) so the caller degrades to
// unauthenticated instead of failing.
func (r *BridgeRelay) Obtain(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	select {
	case r.requests <- struct{}{}:
	case <-ctx.Done():
		return "", nil
	}

	for {
		select {
		case msg := <-r.replies:
			if !r.allowedOrigins[msg.Origin] {
				continue
			}
			return msg.Token, nil
		case <-ctx.Done():
			return "", nil
		}
	}
}

// URLTokenRelay consumes a token embedded as a query parameter by the
// main-domain login redirect. The token is handed out once; CleanURL exposes
// the page URL with the parameter stripped so it can replace the visible one.
type URLTokenRelay struct {
	mu       sync.Mutex
	pageURL  *url.URL
	consumed bool
}

// NewURLTokenRelay parses the current page URL. A malformed URL produces a
// relay that never yields a token.
func NewURLTokenRelay(rawURL string) *URLTokenRelay {
	u, err := url.Parse(rawURL)
	if err != nil {
		u = nil
	}
	return &URLTokenRelay{pageURL: u}
}

func (r *URLTokenRelay) Obtain(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pageURL == nil || r.consumed {
		return "", nil
	}
	r.consumed = true

	query := r.pageURL.Query()
	token := query.Get("token")
	if token == "" {
		return "", nil
	}
	query.Del("token")
	r.pageURL.RawQuery = query.Encode()
	return token, nil
}

// CleanURL returns the page URL with the consumed token parameter removed.
func (r *URLTokenRelay) CleanURL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pageURL == nil {
		return ""
	}
	return r.pageURL.String()
}

// ChainRelay tries each relay in order and returns the first token obtained.
type ChainRelay []TokenRelay

func (c ChainRelay) Obtain(ctx context.Context) (string, error) {
	for _, relay := range c {
		token, err := relay.Obtain(ctx)
		if err != nil {
			continue
		}
		if token != "" {
			return token, nil
		}
	}
	return "", nil
}
