package test_helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strconv"
	"sync"
	"time"
)

// PageSize matches the service's fixed page length.
const PageSize = 10

// FakeService is an in-memory pymments service served over httptest. It
// implements every op the client uses and records each request.
type FakeService struct {
	server *httptest.Server

	mu            sync.Mutex
	users         map[int64]*fakeUser
	comments      map[int64]*fakeComment
	nextUserID    int64
	nextCommentID int64
	clock         time.Time

	requestLog  []RequestEntry
	callCount   map[string]int
	failures    map[string]int
	delay       time.Duration
	omitParents bool
	inFlight    int
	maxInFlight int
}

// RequestEntry logs one request received by the fake.
type RequestEntry struct {
	Method       string
	Op           string
	Params       url.Values
	Timestamp    time.Time
	ResponseCode int
}

type fakeUser struct {
	id       int64
	name     string
	password string
}

type fakeComment struct {
	id      int64
	itemID  int64
	parent  int64 // 0 for none
	userID  int64
	message string
	time    time.Time
}

// NewFakeService starts a fake service. Call Close when done.
func NewFakeService() *FakeService {
	fs := &FakeService{
		users:         make(map[int64]*fakeUser),
		comments:      make(map[int64]*fakeComment),
		nextUserID:    1,
		nextCommentID: 1,
		clock:         time.Unix(1700000000, 0).UTC(),
		callCount:     make(map[string]int),
		failures:      make(map[string]int),
	}
	fs.server = httptest.NewServer(http.HandlerFunc(fs.serveHTTP))
	return fs
}

// URL returns the endpoint URL of the fake.
func (fs *FakeService) URL() string {
	return fs.server.URL + "/pymments.py"
}

// Client returns an HTTP client wired to the fake.
func (fs *FakeService) Client() *http.Client {
	return fs.server.Client()
}

// Close shuts down the fake.
func (fs *FakeService) Close() {
	fs.server.Close()
}

// AddUser stores a user directly and returns its id and password.
func (fs *FakeService) AddUser(name string) (int64, string) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	u := fs.createUserLocked(name)
	return u.id, u.password
}

// AddComment stores a comment directly. parentID 0 makes it top-level.
func (fs *FakeService) AddComment(itemID, parentID, userID int64, message string) int64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.createCommentLocked(itemID, parentID, userID, message).id
}

// Seed adds n top-level comments on itemID, all by one new user, and
// returns their ids in order.
func (fs *FakeService) Seed(itemID int64, n int) []int64 {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	u := fs.createUserLocked("seed")
	ids := make([]int64, n)
	for i := range ids {
		ids[i] = fs.createCommentLocked(itemID, 0, u.id, "comment "+strconv.Itoa(i+1)).id
	}
	return ids
}

// UserName returns the stored name of a user.
func (fs *FakeService) UserName(id int64) string {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if u, ok := fs.users[id]; ok {
		return u.name
	}
	return ""
}

// SetDelay adds latency to every response.
func (fs *FakeService) SetDelay(d time.Duration) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.delay = d
}

// FailOp makes every request for op answer with status. Status 0 clears it.
func (fs *FakeService) FailOp(op string, status int) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	if status == 0 {
		delete(fs.failures, op)
		return
	}
	fs.failures[op] = status
}

// SetOmitParents makes comment responses leave out the embedded parent.
func (fs *FakeService) SetOmitParents(omit bool) {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.omitParents = omit
}

// CallCount returns how many requests named op have been received.
func (fs *FakeService) CallCount(op string) int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.callCount[op]
}

// MaxInFlight returns the largest number of requests served concurrently.
func (fs *FakeService) MaxInFlight() int {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.maxInFlight
}

// RequestLog returns a copy of the request log.
func (fs *FakeService) RequestLog() []RequestEntry {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return append([]RequestEntry{}, fs.requestLog...)
}

// ClearLog resets the request log and call counts.
func (fs *FakeService) ClearLog() {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	fs.requestLog = fs.requestLog[:0]
	fs.callCount = make(map[string]int)
	fs.maxInFlight = 0
}

func (fs *FakeService) serveHTTP(w http.ResponseWriter, r *http.Request) {
	var params url.Values
	switch r.Method {
	case http.MethodGet:
		params = r.URL.Query()
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		params = r.PostForm
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	op := params.Get("op")

	fs.mu.Lock()
	fs.callCount[op]++
	fs.inFlight++
	if fs.inFlight > fs.maxInFlight {
		fs.maxInFlight = fs.inFlight
	}
	delay := fs.delay
	failStatus := fs.failures[op]
	fs.mu.Unlock()

	defer func() {
		fs.mu.Lock()
		fs.inFlight--
		fs.mu.Unlock()
	}()

	if delay > 0 {
		time.Sleep(delay)
	}

	status, body := failStatus, any("forced failure")
	if failStatus == 0 {
		fs.mu.Lock()
		status, body = fs.handleLocked(r.Method, op, params)
		fs.mu.Unlock()
	}

	fs.mu.Lock()
	fs.requestLog = append(fs.requestLog, RequestEntry{
		Method:       r.Method,
		Op:           op,
		Params:       params,
		Timestamp:    time.Now(),
		ResponseCode: status,
	})
	fs.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, fmt.Sprint(body), status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (fs *FakeService) handleLocked(method, op string, p url.Values) (int, any) {
	switch method + " " + op {
	case "GET user":
		u, ok := fs.users[intParam(p, "id")]
		if !ok {
			return http.StatusNotFound, "no such user"
		}
		return http.StatusOK, publicUser(u)

	case "GET comment":
		c, ok := fs.comments[intParam(p, "id")]
		if !ok {
			return http.StatusNotFound, "no such comment"
		}
		return http.StatusOK, fs.commentJSONLocked(c)

	case "GET comments":
		itemID, lastID := intParam(p, "itemId"), intParam(p, "lastId")
		rows := []any{}
		for _, c := range fs.itemCommentsLocked(itemID) {
			if c.id <= lastID {
				continue
			}
			rows = append(rows, fs.commentJSONLocked(c))
			if len(rows) == PageSize {
				break
			}
		}
		return http.StatusOK, rows

	case "GET count":
		return http.StatusOK, len(fs.itemCommentsLocked(intParam(p, "itemId")))

	case "POST user":
		name := p.Get("name")
		if name == "" {
			return http.StatusBadRequest, "name required"
		}
		u := fs.createUserLocked(name)
		return http.StatusOK, map[string]any{"id": u.id, "name": u.name, "password": u.password}

	case "POST username":
		u, ok := fs.users[intParam(p, "id")]
		if !ok || u.password != p.Get("password") {
			return http.StatusForbidden, "bad credentials"
		}
		u.name = p.Get("name")
		return http.StatusOK, publicUser(u)

	case "POST comment":
		u, ok := fs.users[intParam(p, "userId")]
		if !ok || u.password != p.Get("userPassword") {
			return http.StatusForbidden, "bad credentials"
		}
		itemID := intParam(p, "itemId")
		parentID := intParam(p, "parentId")
		if parentID != 0 {
			if parent, ok := fs.comments[parentID]; !ok || parent.itemID != itemID {
				return http.StatusBadRequest, "unknown parent"
			}
		}
		c := fs.createCommentLocked(itemID, parentID, u.id, p.Get("message"))
		return http.StatusOK, fs.commentJSONLocked(c)
	}
	return http.StatusBadRequest, "unknown op"
}

func (fs *FakeService) createUserLocked(name string) *fakeUser {
	u := &fakeUser{
		id:       fs.nextUserID,
		name:     name,
		password: fmt.Sprintf("pw-%d-%d", fs.nextUserID, time.Now().UnixNano()),
	}
	fs.nextUserID++
	fs.users[u.id] = u
	return u
}

func (fs *FakeService) createCommentLocked(itemID, parentID, userID int64, message string) *fakeComment {
	fs.clock = fs.clock.Add(time.Second)
	c := &fakeComment{
		id:      fs.nextCommentID,
		itemID:  itemID,
		parent:  parentID,
		userID:  userID,
		message: message,
		time:    fs.clock,
	}
	fs.nextCommentID++
	fs.comments[c.id] = c
	return c
}

func (fs *FakeService) itemCommentsLocked(itemID int64) []*fakeComment {
	var out []*fakeComment
	for _, c := range fs.comments {
		if c.itemID == itemID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func (fs *FakeService) commentJSONLocked(c *fakeComment) map[string]any {
	m := map[string]any{
		"id":      c.id,
		"user":    publicUser(fs.users[c.userID]),
		"message": c.message,
		"time":    float64(c.time.Unix()),
	}
	if c.parent != 0 && !fs.omitParents {
		if parent, ok := fs.comments[c.parent]; ok {
			m["parent"] = fs.commentJSONLocked(parent)
		}
	}
	return m
}

func publicUser(u *fakeUser) map[string]any {
	return map[string]any{"id": u.id, "name": u.name}
}

func intParam(p url.Values, key string) int64 {
	n, _ := strconv.ParseInt(p.Get(key), 10, 64)
	return n
}
