package pymments

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	pkgerrs "github.com/jamesprial/go-pymments/pkg/errors"
	"github.com/jamesprial/go-pymments/pkg/session"
	"github.com/jamesprial/go-pymments/pkg/types"
)

// User is a commenter. Its name is the only mutable field of any entity.
type User struct {
	client *Client

	// ID is the service-assigned user id.
	ID int64

	mu       sync.RWMutex
	name     string
	password string
}

func newUser(c *Client, id int64, name, password string) *User {
	return &User{client: c, ID: id, name: name, password: password}
}

// Name returns the user's current name.
func (u *User) Name() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.name
}

// Password returns the user's password token, or "" when the client does
// not hold credentials for this user.
func (u *User) Password() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.password
}

// HasCredentials reports whether this user can post and rename.
func (u *User) HasCredentials() bool {
	return u.Password() != ""
}

func (u *User) String() string {
	return u.Name() + " (" + strconv.FormatInt(u.ID, 10) + ")"
}

// ChangeName renames the user on the service. The current id and password
// prove ownership. On success the new name is visible immediately and the
// session record is rewritten with the same id and password.
func (u *User) ChangeName(ctx context.Context, name string) error {
	c := u.client
	if err := c.validator.ValidateUserName(name); err != nil {
		return err
	}

	password := u.Password()
	if password == "" {
		return &pkgerrs.StateError{Operation: string(types.OpUsername), Message: "no credentials for user " + strconv.FormatInt(u.ID, 10)}
	}

	data, err := c.transport.Request(ctx, http.MethodPost, url.Values{
		"op":       {string(types.OpUsername)},
		"id":       {strconv.FormatInt(u.ID, 10)},
		"password": {password},
		"name":     {name},
	})
	if err != nil {
		return err
	}
	if _, err := c.parser.ParseUser(types.OpUsername, data); err != nil {
		return err
	}

	u.mu.Lock()
	u.name = name
	u.mu.Unlock()

	c.logger.Debug("pymments user renamed", "user_id", u.ID)
	return c.saveSession(session.Record{ID: u.ID, Name: name, Password: password})
}

// adoptPassword records a password learned after the user was first cached.
// An existing password is kept.
func (u *User) adoptPassword(password string) {
	u.mu.Lock()
	if u.password == "" {
		u.password = password
	}
	u.mu.Unlock()
}
