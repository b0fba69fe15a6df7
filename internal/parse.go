package internal

import (
	"bytes"
	"encoding/json"
	"fmt"

	pkgerrs "github.com/jamesprial/go-pymments/pkg/errors"
	"github.com/jamesprial/go-pymments/pkg/types"
	"github.com/jamesprial/go-pymments/pkg/validation"
)

// Parser turns raw service responses into validated wire records.
type Parser struct{}

// NewParser creates a new parser instance
func NewParser() *Parser {
	return &Parser{}
}

// ParseUser decodes and validates a user record.
func (p *Parser) ParseUser(op types.Op, data json.RawMessage) (*types.UserRecord, error) {
	var user types.UserRecord
	if err := decodeObject(data, &user); err != nil {
		return nil, &pkgerrs.ParseError{Operation: string(op), Message: "failed to parse user", Err: err}
	}
	if err := validation.ValidateUserRecord(&user); err != nil {
		return nil, &pkgerrs.ParseError{Operation: string(op), Err: err}
	}
	return &user, nil
}

// ParseComment decodes and validates a comment record, including its
// embedded user and parent chain.
func (p *Parser) ParseComment(op types.Op, data json.RawMessage) (*types.CommentRecord, error) {
	var comment types.CommentRecord
	if err := decodeObject(data, &comment); err != nil {
		return nil, &pkgerrs.ParseError{Operation: string(op), Message: "failed to parse comment", Err: err}
	}
	if err := validation.ValidateCommentRecord(&comment); err != nil {
		return nil, &pkgerrs.ParseError{Operation: string(op), Err: err}
	}
	return &comment, nil
}

// ParsePage decodes one page of comment records, preserving service order.
// A null body is an empty page.
func (p *Parser) ParsePage(data json.RawMessage) ([]*types.CommentRecord, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		return []*types.CommentRecord{}, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &pkgerrs.ParseError{Operation: string(types.OpComments), Message: "expected an array of comments"}
	}

	var page []*types.CommentRecord
	if err := json.Unmarshal(trimmed, &page); err != nil {
		return nil, &pkgerrs.ParseError{Operation: string(types.OpComments), Message: "failed to parse comments", Err: err}
	}

	for i, rec := range page {
		if err := validation.ValidateCommentRecord(rec); err != nil {
			return nil, &pkgerrs.ParseError{
				Operation: string(types.OpComments),
				Err:       fmt.Errorf("row %d: %w", i, err),
			}
		}
	}
	return page, nil
}

// ParseCount decodes a non-negative comment total.
func (p *Parser) ParseCount(data json.RawMessage) (int64, error) {
	var count int64
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return 0, &pkgerrs.ParseError{Operation: string(types.OpCount), Message: "count cannot be null"}
	}
	if err := json.Unmarshal(data, &count); err != nil {
		return 0, &pkgerrs.ParseError{Operation: string(types.OpCount), Message: "expected an integer count", Err: err}
	}
	if count < 0 {
		return 0, &pkgerrs.ParseError{Operation: string(types.OpCount), Message: fmt.Sprintf("count cannot be negative (%d)", count)}
	}
	return count, nil
}

// decodeObject rejects anything that is not a JSON object before decoding.
func decodeObject(data json.RawMessage, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("expected a JSON object")
	}
	return json.Unmarshal(trimmed, v)
}
