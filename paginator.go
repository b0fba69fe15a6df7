package pymments

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/jamesprial/go-pymments/internal"
	pkgerrs "github.com/jamesprial/go-pymments/pkg/errors"
	"github.com/jamesprial/go-pymments/pkg/types"
)

// CommentList pages through an item's comments in service order.
//
// NextPage calls are serialized: only one page request is in flight at a
// time, and callers that arrive meanwhile queue up in arrival order. Each
// queued caller fetches its own page once its predecessor has finished and
// the cursor has been advanced, so no page is returned twice.
type CommentList struct {
	client *Client
	itemID int64

	mu       sync.Mutex
	lastID   int64
	busy     bool
	finished bool
	waiters  []chan struct{}

	count *internal.Memo[int64]
}

func newCommentList(c *Client, itemID int64) *CommentList {
	return &CommentList{
		client: c,
		itemID: itemID,
		count:  internal.NewMemo[int64](),
	}
}

// ItemID returns the id of the item being listed.
func (l *CommentList) ItemID() int64 {
	return l.itemID
}

// Cursor returns the id of the last comment delivered so far, or 0 before
// the first page.
func (l *CommentList) Cursor() int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastID
}

// Finished reports whether the last page has been delivered.
func (l *CommentList) Finished() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.finished
}

// NextPage returns the next page of comments. A page shorter than PageSize
// is the last one; every call after it returns ErrDone without a request.
// A failed request leaves the cursor where it was.
//
// If ctx ends while the call is waiting for an earlier call, NextPage
// returns ctx.Err() and the queue moves on without it.
func (l *CommentList) NextPage(ctx context.Context) ([]*Comment, error) {
	if err := l.acquire(ctx); err != nil {
		return nil, err
	}

	l.mu.Lock()
	if l.finished {
		l.handOffLocked()
		l.mu.Unlock()
		return nil, ErrDone
	}
	cursor := l.lastID
	l.mu.Unlock()

	page, err := l.fetch(ctx, cursor)

	l.mu.Lock()
	if err == nil {
		if n := len(page); n > 0 && page[n-1].ID > l.lastID {
			l.lastID = page[n-1].ID
		}
		if len(page) < PageSize {
			l.finished = true
		}
	}
	l.handOffLocked()
	l.mu.Unlock()

	if err != nil {
		return nil, err
	}
	return page, nil
}

// acquire blocks until the caller holds the fetch slot.
func (l *CommentList) acquire(ctx context.Context) error {
	l.mu.Lock()
	if l.finished {
		l.mu.Unlock()
		return ErrDone
	}
	if !l.busy {
		l.busy = true
		l.mu.Unlock()
		return nil
	}

	ch := make(chan struct{})
	l.waiters = append(l.waiters, ch)
	l.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.removeWaiterLocked(ch) {
			return ctx.Err()
		}
		// The slot was handed over concurrently; pass it on.
		l.handOffLocked()
		return ctx.Err()
	}
}

// handOffLocked gives the fetch slot to the oldest waiter, or frees it.
func (l *CommentList) handOffLocked() {
	if len(l.waiters) == 0 {
		l.busy = false
		return
	}
	next := l.waiters[0]
	l.waiters[0] = nil
	l.waiters = l.waiters[1:]
	close(next)
}

func (l *CommentList) removeWaiterLocked(ch chan struct{}) bool {
	for i, w := range l.waiters {
		if w == ch {
			l.waiters = append(l.waiters[:i], l.waiters[i+1:]...)
			return true
		}
	}
	return false
}

func (l *CommentList) fetch(ctx context.Context, cursor int64) ([]*Comment, error) {
	c := l.client
	data, err := c.transport.Request(ctx, http.MethodGet, url.Values{
		"op":     {string(types.OpComments)},
		"itemId": {strconv.FormatInt(l.itemID, 10)},
		"lastId": {strconv.FormatInt(cursor, 10)},
	})
	if err != nil {
		return nil, err
	}

	recs, err := c.parser.ParsePage(data)
	if err != nil {
		return nil, err
	}
	if n := len(recs); n >= PageSize && *recs[n-1].ID <= cursor {
		return nil, &pkgerrs.ParseError{
			Operation: string(types.OpComments),
			Message:   "full page did not advance past cursor " + strconv.FormatInt(cursor, 10),
		}
	}

	page := make([]*Comment, 0, len(recs))
	for _, rec := range recs {
		comment, err := c.resolveComment(rec)
		if err != nil {
			return nil, err
		}
		page = append(page, comment)
	}

	c.logger.Debug("pymments comment page",
		"item_id", l.itemID,
		"cursor", cursor,
		"rows", len(page),
	)
	return page, nil
}

// Count returns the item's total comment count. The first call issues the
// request; later and concurrent calls share its result, including a failure.
// A caller whose ctx ends early returns its own context error and leaves the
// shared request running for the others.
func (l *CommentList) Count(ctx context.Context) (int64, error) {
	return l.count.Do(ctx, func(ctx context.Context) (int64, error) {
		c := l.client
		data, err := c.transport.Request(ctx, http.MethodGet, url.Values{
			"op":     {string(types.OpCount)},
			"itemId": {strconv.FormatInt(l.itemID, 10)},
		})
		if err != nil {
			return 0, err
		}
		return c.parser.ParseCount(data)
	})
}

// All fetches every remaining page and returns the comments in order.
func (l *CommentList) All(ctx context.Context) ([]*Comment, error) {
	var all []*Comment
	for {
		page, err := l.NextPage(ctx)
		if errors.Is(err, ErrDone) {
			return all, nil
		}
		if err != nil {
			return all, err
		}
		all = append(all, page...)
	}
}
