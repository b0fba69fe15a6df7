// Package pymments provides a Go client for the pymments comment service.
//
// # Overview
//
// The service stores threaded comments on numbered items. Users are
// lightweight: creating one returns an id and a password token, and every
// write carries that token. There is no server-side session.
//
// The client hides the raw requests behind three entity types:
//
//   - Item, a handle for a commentable resource
//   - Comment, attributed to a User and optionally replying to a parent Comment
//   - User, with a name and (for the local user) a password token
//
// # Identity
//
// Each remote entity maps to exactly one local instance per Client. A user
// fetched with Client.User, the same user embedded in a comment, and the
// local user restored from the session are all the same *User. Concurrent
// lookups of an uncached id share a single request. Entities are kept for
// the lifetime of the Client.
//
// # Quick Start
//
//	client, err := pymments.NewClient(&pymments.Config{
//		BaseURL: "https://example.com/pymments.py",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	item, err := client.Item("42")
//	if err != nil {
//		log.Fatal(err) // the id was not numeric
//	}
//
// # Pagination
//
// Item.Comments returns a CommentList, a cursor over the item's comments in
// pages of PageSize. NextPage calls on one list are serialized: a call made
// while another is in flight waits for it and then fetches the following
// page, so concurrent callers never see a page twice.
//
//	list := item.Comments()
//	for {
//		page, err := list.NextPage(ctx)
//		if errors.Is(err, pymments.ErrDone) {
//			break
//		}
//		if err != nil {
//			log.Fatal(err)
//		}
//		for _, c := range page {
//			fmt.Printf("%s: %s\n", c.User.Name(), c.Message)
//		}
//	}
//
// CommentIterator walks the same sequence one comment at a time, and
// NewThread arranges a set of comments into a reply tree.
//
// # Users and Sessions
//
// CreateUser registers a user and saves its credentials in the configured
// session.Store; LocalUser restores it later. The default store lives in
// memory. session.OpenPebbleStore keeps the session on disk.
//
//	me, err := client.CreateUser(ctx, "alice")
//	if err != nil {
//		log.Fatal(err)
//	}
//	reply, err := item.AddComment(ctx, nil, me, "first!")
//
// # Error Handling
//
// Errors are typed (see pkg/errors) and can be inspected with errors.As:
//
//   - ValidationError: bad input, rejected before any request
//   - RequestError: the request could not be sent or completed
//   - APIError: the service answered with a non-success status
//   - ParseError: the response did not have the expected shape
//   - StateError: the entity cannot perform the operation
//   - SessionError: the session store failed
//
// ErrDone is not a failure; it marks the end of a comment list.
//
// # Logging and Metrics
//
// Pass a *slog.Logger in Config.Logger to receive debug records for each
// request. Pass a prometheus.Registerer in Config.MetricsRegisterer to
// collect request counts and latencies.
package pymments
