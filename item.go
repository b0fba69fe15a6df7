package pymments

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	pkgerrs "github.com/jamesprial/go-pymments/pkg/errors"
	"github.com/jamesprial/go-pymments/pkg/types"
)

// Item is a handle for a commentable resource. It carries no state beyond
// its id.
type Item struct {
	client *Client
	ID     int64
}

// Comments returns a new list positioned at the item's first comment.
// Lists are not shared; each call starts from the beginning.
func (i *Item) Comments() *CommentList {
	return newCommentList(i.client, i.ID)
}

// CommentsCount returns the total number of comments on the item.
func (i *Item) CommentsCount(ctx context.Context) (int64, error) {
	return i.Comments().Count(ctx)
}

// AddComment posts message as user, replying to parent when it is non-nil.
// The user must hold credentials. If the service response leaves out the
// parent, the given parent is attached to the new comment.
func (i *Item) AddComment(ctx context.Context, parent *Comment, user *User, message string) (*Comment, error) {
	c := i.client
	if user == nil {
		return nil, &pkgerrs.ValidationError{Field: "user", Message: "user cannot be nil"}
	}
	if err := c.validator.ValidateMessage(message); err != nil {
		return nil, err
	}
	password := user.Password()
	if password == "" {
		return nil, &pkgerrs.StateError{Operation: string(types.OpComment), Message: "no credentials for user " + strconv.FormatInt(user.ID, 10)}
	}

	params := url.Values{
		"op":           {string(types.OpComment)},
		"itemId":       {strconv.FormatInt(i.ID, 10)},
		"userId":       {strconv.FormatInt(user.ID, 10)},
		"userPassword": {password},
		"message":      {message},
	}
	if parent != nil {
		params.Set("parentId", strconv.FormatInt(parent.ID, 10))
	}

	data, err := c.transport.Request(ctx, http.MethodPost, params)
	if err != nil {
		return nil, err
	}
	rec, err := c.parser.ParseComment(types.OpComment, data)
	if err != nil {
		return nil, err
	}

	return c.comments.LoadOrConstruct(*rec.ID, func() (*Comment, error) {
		comment, err := c.buildComment(rec)
		if err != nil {
			return nil, err
		}
		if comment.Parent == nil && parent != nil {
			comment.Parent = parent
		}
		return comment, nil
	})
}
