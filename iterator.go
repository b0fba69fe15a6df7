package pymments

import (
	"context"

	"github.com/jamesprial/go-pymments/internal"
)

// CommentIterator walks an item's comments one at a time, fetching pages
// from its CommentList as needed.
type CommentIterator struct {
	list *CommentList
	it   *internal.PageIterator[*Comment]
}

// Iterator returns an iterator over the comments this list has not yet
// delivered. It advances the list itself, so mixing Iterator and direct
// NextPage calls on one list splits the comments between them.
func (l *CommentList) Iterator(ctx context.Context) *CommentIterator {
	return &CommentIterator{
		list: l,
		it:   internal.NewPageIterator(ctx, ErrDone, l.NextPage),
	}
}

// NewCommentIterator creates an iterator over all comments on an item.
func (c *Client) NewCommentIterator(ctx context.Context, itemID string) (*CommentIterator, error) {
	list, err := c.Comments(itemID)
	if err != nil {
		return nil, err
	}
	return list.Iterator(ctx), nil
}

// HasNext returns true if there may be more comments to iterate through.
// The final page can turn out to be empty, in which case Next returns
// ErrDone even though HasNext was true.
func (it *CommentIterator) HasNext() bool {
	return it.it.HasNext()
}

// Next returns the next comment, or ErrDone when there are none left.
func (it *CommentIterator) Next() (*Comment, error) {
	return it.it.Next()
}

// Err returns the error that stopped iteration, if any.
// Reaching the end is not an error.
func (it *CommentIterator) Err() error {
	return it.it.Err()
}

// List returns the underlying comment list.
func (it *CommentIterator) List() *CommentList {
	return it.list
}
