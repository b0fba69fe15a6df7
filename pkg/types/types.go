package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Op names the service operation carried in the "op" request parameter.
type Op string

const (
	OpUser     Op = "user"     // POST create, GET fetch
	OpUsername Op = "username" // POST rename
	OpComment  Op = "comment"  // POST create, GET fetch
	OpComments Op = "comments" // GET page
	OpCount    Op = "count"    // GET total for an item
)

// UserRecord is the wire shape of a user. Password is only present for
// freshly created users and responses addressed to the owner.
type UserRecord struct {
	ID       *int64  `json:"id"`
	Name     *string `json:"name"`
	Password string  `json:"password,omitempty"`
}

// CommentRecord is the wire shape of a comment. Parent is nil both when the
// field is absent and when it is null; either way the comment is top-level.
type CommentRecord struct {
	ID      *int64         `json:"id"`
	Parent  *CommentRecord `json:"parent,omitempty"`
	User    *UserRecord    `json:"user"`
	Message *string        `json:"message"`
	Time    *Timestamp     `json:"time"`
}

// Timestamp is a point in time encoded as Unix epoch seconds. Fractional
// seconds are accepted since some servers emit float timestamps.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler for numeric epoch seconds.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("time cannot be null")
	}

	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("unrecognized type for 'time' field: %s", string(data))
	}
	// float64(math.MaxInt64) rounds up to 2^63, hence >=.
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) || seconds < math.MinInt64 || seconds >= math.MaxInt64 {
		return fmt.Errorf("time out of range: %s", string(data))
	}

	whole, frac := math.Modf(seconds)
	ts.Time = time.Unix(int64(whole), int64(math.Round(frac*1e9))).UTC()
	return nil
}

// MarshalJSON writes the timestamp back as epoch seconds.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	seconds := float64(ts.UnixNano()) / 1e9
	return json.Marshal(seconds)
}

// Int64 returns a pointer to v, for building records in code.
func Int64(v int64) *int64 { return &v }

// String returns a pointer to v, for building records in code.
func String(v string) *string { return &v }
