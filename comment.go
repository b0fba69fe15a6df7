package pymments

import (
	"time"

	"github.com/jamesprial/go-pymments/pkg/types"
)

// Comment is a message posted on an item. User and Parent point at the
// shared cached instances, so two replies to the same comment have the
// same *Comment as Parent.
type Comment struct {
	ID      int64
	Parent  *Comment // nil for a top-level comment
	User    *User
	Message string
	Time    time.Time
}

// IsTopLevel reports whether the comment has no parent.
func (c *Comment) IsTopLevel() bool {
	return c.Parent == nil
}

// resolveComment returns the cached comment for rec's id, building it from
// rec when absent. rec must have passed validation.
func (c *Client) resolveComment(rec *types.CommentRecord) (*Comment, error) {
	return c.comments.LoadOrConstruct(*rec.ID, func() (*Comment, error) {
		return c.buildComment(rec)
	})
}

// buildComment constructs a comment from rec, resolving the embedded user
// and parent through the identity maps. It does not cache the result.
func (c *Client) buildComment(rec *types.CommentRecord) (*Comment, error) {
	user, err := c.resolveUser(rec.User)
	if err != nil {
		return nil, err
	}

	var parent *Comment
	if rec.Parent != nil {
		parent, err = c.resolveComment(rec.Parent)
		if err != nil {
			return nil, err
		}
	}

	return &Comment{
		ID:      *rec.ID,
		Parent:  parent,
		User:    user,
		Message: *rec.Message,
		Time:    rec.Time.Time,
	}, nil
}
