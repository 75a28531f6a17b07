// Package firestore persists month records as Firestore documents through
// the REST API, authenticating with an anonymous Identity Platform user.
package firestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"financas/internal/core"
	"financas/internal/docs"

	fs "google.golang.org/api/firestore/v1"
	"google.golang.org/api/googleapi"
	identitytoolkit "google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

// ErrNotAuthenticated is returned when a document operation runs before
// Authenticate has completed.
var ErrNotAuthenticated = errors.New("firestore: not authenticated")

const (
	defaultPollInterval = 15 * time.Second
	defaultTokenURL     = "https://securetoken.googleapis.com/v1/token"

	// Anonymous id tokens expire after an hour; refresh shortly before.
	tokenRefreshLeeway = time.Minute
)

// Config carries the Firebase project settings.
type Config struct {
	ProjectID    string
	APIKey       string
	PollInterval time.Duration
}

// Client talks to Firestore for a single Firebase project. It implements
// docs.DocumentStore, docs.Watcher and docs.Authenticator.
type Client struct {
	projectID    string
	apiKey       string
	pollInterval time.Duration
	logger       *slog.Logger
	tokenURL     string
	hc           *http.Client

	mu           sync.Mutex
	idToken      string
	refreshToken string
	tokenExpiry  time.Time
	uid          string
	svc          *fs.Service
}

func New(cfg Config, logger *slog.Logger) *Client {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		projectID:    cfg.ProjectID,
		apiKey:       cfg.APIKey,
		pollInterval: interval,
		logger:       logger.With("component", "firestore"),
		tokenURL:     defaultTokenURL,
		hc:           &http.Client{Timeout: 10 * time.Second},
	}
}

// Configured reports whether both project id and API key are set.
func (c *Client) Configured() bool {
	return c.projectID != "" && c.apiKey != ""
}

// Authenticate signs in anonymously and reports the resulting identity
// through onChange. When the client is not configured it reports nil and
// succeeds, so callers fall back to local persistence. The session stays
// usable afterwards; the id token is refreshed as it approaches expiry.
func (c *Client) Authenticate(ctx context.Context, onChange func(*docs.Identity)) (func(), error) {
	noop := func() {}
	if !c.Configured() {
		onChange(nil)
		return noop, nil
	}

	idSvc, err := identitytoolkit.NewService(ctx, option.WithAPIKey(c.apiKey))
	if err != nil {
		onChange(nil)
		return noop, fmt.Errorf("identity service: %w", err)
	}
	resp, err := idSvc.Relyingparty.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{}).Context(ctx).Do()
	if err != nil {
		onChange(nil)
		return noop, fmt.Errorf("anonymous sign-in: %w", err)
	}

	svc, err := fs.NewService(ctx,
		option.WithHTTPClient(&http.Client{Transport: &bearerTransport{client: c}}))
	if err != nil {
		onChange(nil)
		return noop, fmt.Errorf("firestore service: %w", err)
	}

	c.mu.Lock()
	c.idToken = resp.IdToken
	c.refreshToken = resp.RefreshToken
	c.tokenExpiry = time.Now().Add(tokenTTL(resp.ExpiresIn))
	c.uid = resp.LocalId
	c.svc = svc
	c.mu.Unlock()

	c.logger.Info("authenticated anonymously", "uid", resp.LocalId)
	onChange(&docs.Identity{UID: resp.LocalId})
	return noop, nil
}

// Get loads the month document for a user. A missing document returns
// (nil, nil).
func (c *Client) Get(ctx context.Context, uid string, key core.MonthKey) (*core.MonthRecord, error) {
	svc := c.service()
	if svc == nil {
		return nil, ErrNotAuthenticated
	}
	doc, err := svc.Projects.Databases.Documents.Get(c.docName(uid, key)).Context(ctx).Do()
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get month %s: %w", key, err)
	}
	rec, err := decodeRecord(doc)
	if err != nil {
		return nil, fmt.Errorf("decode month %s: %w", key, err)
	}
	return rec, nil
}

// Set writes the month document with merge semantics: only record fields are
// replaced, anything else stored on the document survives.
func (c *Client) Set(ctx context.Context, uid string, key core.MonthKey, rec *core.MonthRecord) error {
	svc := c.service()
	if svc == nil {
		return ErrNotAuthenticated
	}
	doc := &fs.Document{Fields: encodeRecord(rec)}
	_, err := svc.Projects.Databases.Documents.Patch(c.docName(uid, key), doc).
		UpdateMaskFieldPaths(recordFieldPaths...).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("set month %s: %w", key, err)
	}
	return nil
}

// Watch polls the month document and invokes onChange whenever its update
// time moves. The returned stop function is safe to call more than once.
func (c *Client) Watch(uid string, key core.MonthKey, onChange func(*core.MonthRecord)) (func(), error) {
	svc := c.service()
	if svc == nil {
		return nil, ErrNotAuthenticated
	}
	stopCh := make(chan struct{})
	var once sync.Once
	stop := func() { once.Do(func() { close(stopCh) }) }

	name := c.docName(uid, key)
	go func() {
		ticker := time.NewTicker(c.pollInterval)
		defer ticker.Stop()
		var lastUpdate string
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				doc, err := svc.Projects.Databases.Documents.Get(name).Context(ctx).Do()
				cancel()
				if err != nil {
					if !isNotFound(err) {
						c.logger.Warn("watch poll failed", "month", key.String(), "error", err)
					}
					continue
				}
				if doc.UpdateTime == lastUpdate {
					continue
				}
				lastUpdate = doc.UpdateTime
				rec, err := decodeRecord(doc)
				if err != nil {
					c.logger.Warn("watch decode failed", "month", key.String(), "error", err)
					continue
				}
				onChange(rec)
			}
		}
	}()
	return stop, nil
}

func (c *Client) docName(uid string, key core.MonthKey) string {
	return fmt.Sprintf("projects/%s/databases/(default)/documents/users/%s/months/%s",
		c.projectID, uid, key)
}

func (c *Client) service() *fs.Service {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.svc
}

// token returns a valid id token, refreshing it through the securetoken
// endpoint when it is about to expire.
func (c *Client) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	tok := c.idToken
	refresh := c.refreshToken
	expiry := c.tokenExpiry
	c.mu.Unlock()

	if refresh == "" || time.Until(expiry) > tokenRefreshLeeway {
		return tok, nil
	}
	return c.refresh(ctx, refresh)
}

func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.tokenURL+"?key="+url.QueryEscape(c.apiKey),
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("refresh token: status %d", resp.StatusCode)
	}

	var body struct {
		IDToken      string `json:"id_token"`
		RefreshToken string `json:"refresh_token"`
		ExpiresIn    string `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("refresh token: %w", err)
	}

	secs, _ := strconv.ParseInt(body.ExpiresIn, 10, 64)
	c.mu.Lock()
	c.idToken = body.IDToken
	if body.RefreshToken != "" {
		c.refreshToken = body.RefreshToken
	}
	c.tokenExpiry = time.Now().Add(tokenTTL(secs))
	c.mu.Unlock()

	c.logger.Info("refreshed id token")
	return body.IDToken, nil
}

func tokenTTL(secs int64) time.Duration {
	if secs <= 0 {
		return time.Hour
	}
	return time.Duration(secs) * time.Second
}

func isNotFound(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}

// bearerTransport injects the current id token into every Firestore request.
type bearerTransport struct {
	client *Client
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := t.client.token(req.Context())
	if err != nil {
		return nil, err
	}
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+tok)
	return http.DefaultTransport.RoundTrip(clone)
}
