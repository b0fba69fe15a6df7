package validation

import (
	"strings"
	"testing"
	"time"

	"github.com/jamesprial/go-pymments/pkg/types"
)

func TestIsNumericID(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"zero", "0", true},
		{"plain number", "42", true},
		{"leading zeros", "007", true},
		{"letters", "abc", false},
		{"negative", "-1", false},
		{"decimal", "1.5", false},
		{"whitespace", " 42", false},
		{"trailing newline", "42\n", false},
		{"empty string", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNumericID(tt.input); got != tt.want {
				t.Errorf("IsNumericID(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func validUser(id int64, name string) *types.UserRecord {
	return &types.UserRecord{ID: types.Int64(id), Name: types.String(name)}
}

func validComment(id int64) *types.CommentRecord {
	return &types.CommentRecord{
		ID:      types.Int64(id),
		User:    validUser(1, "alice"),
		Message: types.String("hello"),
		Time:    &types.Timestamp{Time: time.Unix(1609459200, 0)},
	}
}

func TestValidateUserRecord(t *testing.T) {
	tests := []struct {
		name        string
		record      *types.UserRecord
		wantErr     bool
		errContains string
	}{
		{"valid", validUser(1, "alice"), false, ""},
		{"nil", nil, true, "nil"},
		{"missing id", &types.UserRecord{Name: types.String("a")}, true, "id is required"},
		{"missing name", &types.UserRecord{ID: types.Int64(3)}, true, "name is required"},
		{"negative id", validUser(-1, "a"), true, "negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUserRecord(tt.record)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateUserRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}

func TestValidateCommentRecord(t *testing.T) {
	withParent := validComment(2)
	withParent.Parent = validComment(1)

	badParent := validComment(2)
	badParent.Parent = &types.CommentRecord{ID: types.Int64(1)}

	selfParent := validComment(5)
	selfParent.Parent = validComment(5)

	noUser := validComment(3)
	noUser.User = nil

	badUser := validComment(4)
	badUser.User = &types.UserRecord{ID: types.Int64(9)}

	noTime := validComment(6)
	noTime.Time = nil

	tests := []struct {
		name        string
		record      *types.CommentRecord
		wantErr     bool
		errContains string
	}{
		{"valid top-level", validComment(1), false, ""},
		{"valid reply", withParent, false, ""},
		{"nil", nil, true, "nil"},
		{"invalid parent", badParent, true, "parent"},
		{"own parent", selfParent, true, "own parent"},
		{"missing user", noUser, true, "user is required"},
		{"user without name", badUser, true, "name is required"},
		{"missing time", noTime, true, "time is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCommentRecord(tt.record)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateCommentRecord() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.errContains) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
			}
		})
	}
}
