package pymments_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/jamesprial/go-pymments"
	pkgerrs "github.com/jamesprial/go-pymments/pkg/errors"
	"github.com/jamesprial/go-pymments/pkg/session"
	"github.com/jamesprial/go-pymments/test_helpers"
)

func newServiceClient(t *testing.T, fs *test_helpers.FakeService, store session.Store, reg prometheus.Registerer) *pymments.Client {
	t.Helper()
	client, err := pymments.NewClient(&pymments.Config{
		BaseURL:           fs.URL(),
		HTTPClient:        fs.Client(),
		UserAgent:         "pymments-integration/1.0",
		RateLimit:         &pymments.RateLimitConfig{RequestsPerMinute: 60000, Burst: 100},
		SessionStore:      store,
		MetricsRegisterer: reg,
	})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client
}

func TestIntegration_CommentLifecycle(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	client := newServiceClient(t, fs, nil, nil)
	ctx := context.Background()

	me, err := client.CreateUser(ctx, "writer")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	if !me.HasCredentials() || me.Name() != "writer" {
		t.Fatalf("unexpected user %v", me)
	}
	local, err := client.LocalUser()
	if err != nil || local != me {
		t.Fatalf("LocalUser = %v, %v; want the created user", local, err)
	}

	item, err := client.Item("7")
	if err != nil {
		t.Fatalf("Item returned error: %v", err)
	}
	root, err := item.AddComment(ctx, nil, me, "first!")
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	reply, err := item.AddComment(ctx, root, me, "replying to myself")
	if err != nil {
		t.Fatalf("AddComment reply returned error: %v", err)
	}
	if reply.Parent != root || reply.User != me || root.User != me {
		t.Error("posted comments should share cached instances")
	}
	for _, entry := range fs.RequestLog() {
		if entry.Op == "comment" && entry.Params.Get("message") == "first!" && entry.Params.Has("parentId") {
			t.Error("top-level comment should not send parentId")
		}
	}

	// Pad the item past one page, then read everything back.
	otherID, _ := fs.AddUser("other")
	for i := 0; i < 12; i++ {
		fs.AddComment(7, root.ID, otherID, "padding")
	}

	all, err := item.Comments().All(ctx)
	if err != nil {
		t.Fatalf("All returned error: %v", err)
	}
	if len(all) != 14 {
		t.Fatalf("expected 14 comments, got %d", len(all))
	}
	if all[0] != root || all[1] != reply {
		t.Error("paged comments should be the cached instances")
	}
	var other *pymments.User
	for _, c := range all[2:] {
		if c.Parent != root {
			t.Fatalf("comment %d should reply to the root", c.ID)
		}
		if other == nil {
			other = c.User
		} else if c.User != other {
			t.Fatal("comments by one author should share a User")
		}
	}
	if other.HasCredentials() {
		t.Error("other users never carry a password")
	}

	count, err := item.CommentsCount(ctx)
	if err != nil || count != 14 {
		t.Errorf("CommentsCount = %d, %v; want 14", count, err)
	}

	thread := pymments.NewThread(all)
	if len(thread.Roots()) != 1 || thread.Depth() != 1 || len(thread.Replies(root)) != 13 {
		t.Errorf("unexpected thread shape: roots=%d depth=%d", len(thread.Roots()), thread.Depth())
	}

	if err := me.ChangeName(ctx, "author"); err != nil {
		t.Fatalf("ChangeName returned error: %v", err)
	}
	if me.Name() != "author" || fs.UserName(me.ID) != "author" {
		t.Errorf("rename not applied: local %q, server %q", me.Name(), fs.UserName(me.ID))
	}
}

func TestIntegration_SessionSurvivesRestart(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	dir := t.TempDir()
	ctx := context.Background()

	store, err := session.OpenPebbleStore(dir)
	if err != nil {
		t.Fatalf("OpenPebbleStore returned error: %v", err)
	}
	first := newServiceClient(t, fs, store, nil)
	created, err := first.CreateUser(ctx, "persistent")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	password := created.Password()
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	store, err = session.OpenPebbleStore(dir)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	defer store.Close()
	second := newServiceClient(t, fs, store, nil)

	restored, err := second.LocalUser()
	if err != nil {
		t.Fatalf("LocalUser returned error: %v", err)
	}
	if restored == nil || restored.ID != created.ID || restored.Password() != password {
		t.Fatalf("restored user %v does not match %v", restored, created)
	}
	if fs.CallCount("user") != 1 {
		t.Error("restoring a session should not contact the service")
	}

	item, _ := second.Item("1")
	if _, err := item.AddComment(ctx, nil, restored, "back again"); err != nil {
		t.Errorf("restored credentials should be accepted, got %v", err)
	}

	if err := second.SignOut(); err != nil {
		t.Fatalf("SignOut returned error: %v", err)
	}
	if u, err := second.LocalUser(); err != nil || u != nil {
		t.Errorf("LocalUser after SignOut = %v, %v", u, err)
	}
}

func TestIntegration_ParentFallback(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	client := newServiceClient(t, fs, nil, nil)
	ctx := context.Background()

	me, err := client.CreateUser(ctx, "writer")
	if err != nil {
		t.Fatalf("CreateUser returned error: %v", err)
	}
	root, err := client.AddComment(ctx, "3", nil, me, "root")
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}

	fs.SetOmitParents(true)
	reply, err := client.AddComment(ctx, "3", root, me, "reply")
	if err != nil {
		t.Fatalf("AddComment returned error: %v", err)
	}
	if reply.Parent != root {
		t.Error("reply should fall back to the parent it was posted under")
	}
}

func TestIntegration_WrongPassword(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	store := session.NewMemoryStore()
	ctx := context.Background()

	id, _ := fs.AddUser("victim")
	if err := store.Set(session.DefaultKey, session.Record{ID: id, Name: "victim", Password: "guess"}); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}
	client := newServiceClient(t, fs, store, nil)

	me, err := client.LocalUser()
	if err != nil || me == nil {
		t.Fatalf("LocalUser = %v, %v", me, err)
	}

	var apiErr *pkgerrs.APIError
	_, err = client.AddComment(ctx, "1", nil, me, "hello")
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 APIError, got %v", err)
	}
	if err := me.ChangeName(ctx, "owned"); !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError from ChangeName, got %v", err)
	}
	if me.Name() != "victim" || fs.UserName(id) != "victim" {
		t.Error("a rejected rename must not change the name")
	}
}

func TestIntegration_NotFound(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	client := newServiceClient(t, fs, nil, nil)

	var apiErr *pkgerrs.APIError
	if _, err := client.Comment(context.Background(), 404); !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 APIError, got %v", err)
	}
	if _, ok := client.CachedComment(404); ok {
		t.Error("failed lookups must not be cached")
	}
}

func TestIntegration_ConcurrentPaging(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	fs.Seed(9, 25)
	fs.SetDelay(5 * time.Millisecond)
	client := newServiceClient(t, fs, nil, nil)

	list, err := client.Comments("9")
	if err != nil {
		t.Fatalf("Comments returned error: %v", err)
	}

	var (
		mu   sync.Mutex
		seen = map[int64]int{}
		wg   sync.WaitGroup
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			page, err := list.NextPage(context.Background())
			if errors.Is(err, pymments.ErrDone) {
				return
			}
			if err != nil {
				t.Errorf("NextPage returned error: %v", err)
				return
			}
			mu.Lock()
			for _, c := range page {
				seen[c.ID]++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	if len(seen) != 25 {
		t.Errorf("expected 25 distinct comments, got %d", len(seen))
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("comment %d delivered %d times", id, n)
		}
	}
	if got := fs.CallCount("comments"); got != 3 {
		t.Errorf("expected 3 page requests, got %d", got)
	}
	if got := fs.MaxInFlight(); got != 1 {
		t.Errorf("page requests overlapped: %d in flight", got)
	}
}

func TestIntegration_Metrics(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	fs.Seed(2, 3)
	reg := prometheus.NewRegistry()
	client := newServiceClient(t, fs, nil, reg)
	ctx := context.Background()

	if _, err := client.CommentsCount(ctx, "2"); err != nil {
		t.Fatalf("CommentsCount returned error: %v", err)
	}
	if _, err := client.User(ctx, 999); err == nil {
		t.Fatal("expected an error for a missing user")
	}

	if n, err := testutil.GatherAndCount(reg, "pymments_client_requests_total"); err != nil || n != 2 {
		t.Errorf("expected 2 request series, got %d, %v", n, err)
	}
	if n, err := testutil.GatherAndCount(reg, "pymments_client_request_duration_seconds"); err != nil || n != 2 {
		t.Errorf("expected 2 latency series, got %d, %v", n, err)
	}
}
