package pymments

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jamesprial/go-pymments/internal"
	pkgerrs "github.com/jamesprial/go-pymments/pkg/errors"
	"github.com/jamesprial/go-pymments/pkg/session"
	"github.com/jamesprial/go-pymments/pkg/types"
)

const (
	// DefaultUserAgent is the default user agent string
	DefaultUserAgent = "go-pymments/0.1"
	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = 30 * time.Second
	// PageSize is the number of comments the service returns per full page.
	PageSize = 10
)

// ErrDone is returned by CommentList.NextPage once the last page has been
// delivered, and by CommentIterator.Next when no comments remain.
var ErrDone = pkgerrs.ErrDone

// Config holds the configuration for the pymments client.
//
// Only BaseURL is required, unless a Transport is supplied.
type Config struct {
	// BaseURL is the service endpoint, e.g. "https://example.com/pymments.py".
	BaseURL string

	// UserAgent identifies your application to the service.
	// Defaults to DefaultUserAgent.
	UserAgent string

	// HTTPClient to use for requests.
	// Defaults to a client with DefaultTimeout if not specified.
	HTTPClient *http.Client

	// Logger for structured diagnostics.
	// Optional. If provided, debug information will be logged during requests.
	Logger *slog.Logger

	// RateLimit throttles outgoing requests. Nil selects the defaults.
	RateLimit *RateLimitConfig

	// SessionStore persists the locally authenticated user.
	// Defaults to an in-memory store.
	SessionStore session.Store

	// SessionKey is the key the local user is stored under.
	// Defaults to session.DefaultKey.
	SessionKey string

	// MetricsRegisterer receives request counters and latency histograms.
	// Optional.
	MetricsRegisterer prometheus.Registerer

	// Transport replaces the built-in HTTP transport. When set, BaseURL,
	// HTTPClient, RateLimit and MetricsRegisterer are ignored.
	Transport Transport
}

// RateLimitConfig controls client-side throttling.
type RateLimitConfig struct {
	// RequestsPerMinute caps steady-state throughput. Defaults to 600 if zero.
	RequestsPerMinute float64
	// Burst allows short spikes above the steady-state rate. Defaults to 20 if zero.
	Burst int
}

// Transport performs one service call: a verb plus flat parameters in, one
// JSON value out. Implementations must return an error for every failed
// call, including non-success statuses.
type Transport interface {
	Request(ctx context.Context, method string, params url.Values) (json.RawMessage, error)
}

// Client is the composition root of the library. It owns the identity maps,
// the transport and the session store. A Client is safe for concurrent use.
type Client struct {
	transport  Transport
	store      session.Store
	sessionKey string
	logger     *slog.Logger
	parser     *internal.Parser
	validator  *internal.Validator

	users    *internal.IdentityMap[*User]
	comments *internal.IdentityMap[*Comment]
	items    *internal.IdentityMap[*Item]
}

// NewClient creates a new client with the provided configuration.
//
// Returns an error if:
//   - config is nil
//   - BaseURL is missing or not an http(s) URL and no Transport is given
//   - UserAgent is not a valid header value
func NewClient(config *Config) (*Client, error) {
	if config == nil {
		return nil, &pkgerrs.ConfigError{Message: "config cannot be nil"}
	}

	validator := internal.NewValidator()

	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if err := validator.ValidateUserAgent(userAgent); err != nil {
		return nil, &pkgerrs.ConfigError{Field: "UserAgent", Message: err.Error()}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store := config.SessionStore
	if store == nil {
		store = session.NewMemoryStore()
	}

	sessionKey := config.SessionKey
	if sessionKey == "" {
		sessionKey = session.DefaultKey
	}

	transport := config.Transport
	if transport == nil {
		if config.BaseURL == "" {
			return nil, &pkgerrs.ConfigError{Field: "BaseURL", Message: "BaseURL is required"}
		}

		httpClient := config.HTTPClient
		if httpClient == nil {
			httpClient = &http.Client{Timeout: DefaultTimeout}
		}

		metrics, err := internal.NewMetrics(config.MetricsRegisterer)
		if err != nil {
			return nil, &pkgerrs.ConfigError{Field: "MetricsRegisterer", Message: err.Error()}
		}

		var rateCfg *internal.RateLimitConfig
		if config.RateLimit != nil {
			rateCfg = &internal.RateLimitConfig{
				RequestsPerMinute: config.RateLimit.RequestsPerMinute,
				Burst:             config.RateLimit.Burst,
			}
		}

		httpTransport, err := internal.NewClient(httpClient, config.BaseURL, userAgent, rateCfg, logger, metrics)
		if err != nil {
			return nil, err
		}
		transport = httpTransport
	}

	return &Client{
		transport:  transport,
		store:      store,
		sessionKey: sessionKey,
		logger:     logger,
		parser:     internal.NewParser(),
		validator:  validator,
		users:      internal.NewIdentityMap[*User](),
		comments:   internal.NewIdentityMap[*Comment](),
		items:      internal.NewIdentityMap[*Item](),
	}, nil
}

// Item returns the handle for the item with the given id. The id must be a
// non-negative integer literal; anything else fails with a ValidationError
// before any request is made.
func (c *Client) Item(id string) (*Item, error) {
	n, err := c.validator.ValidateItemID(id)
	if err != nil {
		return nil, err
	}
	return c.items.LoadOrConstruct(n, func() (*Item, error) {
		return &Item{client: c, ID: n}, nil
	})
}

// Comment returns the comment with the given id, fetching it only when it
// is not cached yet. Concurrent calls for the same id share one request.
func (c *Client) Comment(ctx context.Context, id int64) (*Comment, error) {
	if err := c.validator.ValidateEntityID("id", id); err != nil {
		return nil, err
	}
	return c.comments.Resolve(ctx, id, func(ctx context.Context) (*Comment, error) {
		data, err := c.transport.Request(ctx, http.MethodGet, url.Values{
			"op": {string(types.OpComment)},
			"id": {strconv.FormatInt(id, 10)},
		})
		if err != nil {
			return nil, err
		}
		rec, err := c.parser.ParseComment(types.OpComment, data)
		if err != nil {
			return nil, err
		}
		if *rec.ID != id {
			return nil, mismatchError(types.OpComment, id, *rec.ID)
		}
		return c.buildComment(rec)
	})
}

// User returns the user with the given id, fetching it only when it is not
// cached yet. Fetched users carry no password.
func (c *Client) User(ctx context.Context, id int64) (*User, error) {
	if err := c.validator.ValidateEntityID("id", id); err != nil {
		return nil, err
	}
	return c.users.Resolve(ctx, id, func(ctx context.Context) (*User, error) {
		data, err := c.transport.Request(ctx, http.MethodGet, url.Values{
			"op": {string(types.OpUser)},
			"id": {strconv.FormatInt(id, 10)},
		})
		if err != nil {
			return nil, err
		}
		rec, err := c.parser.ParseUser(types.OpUser, data)
		if err != nil {
			return nil, err
		}
		if *rec.ID != id {
			return nil, mismatchError(types.OpUser, id, *rec.ID)
		}
		return newUser(c, *rec.ID, *rec.Name, rec.Password), nil
	})
}

// CachedComment returns the comment with the given id if it has already
// been resolved. It never makes a request.
func (c *Client) CachedComment(id int64) (*Comment, bool) {
	return c.comments.Lookup(id)
}

// CachedUser returns the user with the given id if it has already been
// resolved. It never makes a request.
func (c *Client) CachedUser(id int64) (*User, bool) {
	return c.users.Lookup(id)
}

// CreateUser registers a new user with the service, stores the returned
// credentials as the local session and returns the user.
func (c *Client) CreateUser(ctx context.Context, name string) (*User, error) {
	if err := c.validator.ValidateUserName(name); err != nil {
		return nil, err
	}

	data, err := c.transport.Request(ctx, http.MethodPost, url.Values{
		"op":   {string(types.OpUser)},
		"name": {name},
	})
	if err != nil {
		return nil, err
	}

	rec, err := c.parser.ParseUser(types.OpUser, data)
	if err != nil {
		return nil, err
	}
	if rec.Password == "" {
		return nil, &pkgerrs.ParseError{Operation: string(types.OpUser), Message: "created user has no password"}
	}

	if err := c.saveSession(session.Record{ID: *rec.ID, Name: *rec.Name, Password: rec.Password}); err != nil {
		return nil, err
	}
	c.logger.Debug("pymments user created", "user_id", *rec.ID)

	return c.resolveUser(rec)
}

// LocalUser returns the user stored in the session, or nil when nobody is
// signed in. The returned user is the same instance any other lookup of
// that id yields.
func (c *Client) LocalUser() (*User, error) {
	rec, err := c.store.Get(c.sessionKey)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &pkgerrs.SessionError{Operation: "get", Err: err}
	}

	return c.resolveUser(&types.UserRecord{
		ID:       types.Int64(rec.ID),
		Name:     types.String(rec.Name),
		Password: rec.Password,
	})
}

// SignOut forgets the local user. Cached entities are unaffected.
func (c *Client) SignOut() error {
	if err := c.store.Remove(c.sessionKey); err != nil {
		return &pkgerrs.SessionError{Operation: "remove", Err: err}
	}
	return nil
}

// Comments is shorthand for Item(itemID) followed by Comments().
func (c *Client) Comments(itemID string) (*CommentList, error) {
	item, err := c.Item(itemID)
	if err != nil {
		return nil, err
	}
	return item.Comments(), nil
}

// CommentsCount returns the total number of comments on an item.
func (c *Client) CommentsCount(ctx context.Context, itemID string) (int64, error) {
	item, err := c.Item(itemID)
	if err != nil {
		return 0, err
	}
	return item.CommentsCount(ctx)
}

// AddComment posts a comment on an item. parent may be nil for a
// top-level comment.
func (c *Client) AddComment(ctx context.Context, itemID string, parent *Comment, user *User, message string) (*Comment, error) {
	item, err := c.Item(itemID)
	if err != nil {
		return nil, err
	}
	return item.AddComment(ctx, parent, user, message)
}

// resolveUser returns the cached user for rec's id, constructing it from
// rec when absent. A password in rec is adopted by a cached user that has
// none.
func (c *Client) resolveUser(rec *types.UserRecord) (*User, error) {
	u, err := c.users.LoadOrConstruct(*rec.ID, func() (*User, error) {
		return newUser(c, *rec.ID, *rec.Name, rec.Password), nil
	})
	if err != nil {
		return nil, err
	}
	if rec.Password != "" {
		u.adoptPassword(rec.Password)
	}
	return u, nil
}

func (c *Client) saveSession(rec session.Record) error {
	if err := c.store.Set(c.sessionKey, rec); err != nil {
		return &pkgerrs.SessionError{Operation: "set", Err: err}
	}
	return nil
}

func mismatchError(op types.Op, want, got int64) error {
	return &pkgerrs.ParseError{
		Operation: string(op),
		Message:   "requested id " + strconv.FormatInt(want, 10) + ", service returned " + strconv.FormatInt(got, 10),
	}
}
