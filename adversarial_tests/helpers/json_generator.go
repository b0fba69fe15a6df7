package helpers

import (
	"encoding/json"
	"fmt"
	"strings"
)

// JSONGenerator builds hostile service payloads.
type JSONGenerator struct{}

// NewJSONGenerator creates a new generator.
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{}
}

// Comment returns one well-formed comment object as a map.
func (g *JSONGenerator) Comment(id, userID int64, parent map[string]any) map[string]any {
	m := map[string]any{
		"id":      id,
		"user":    map[string]any{"id": userID, "name": fmt.Sprintf("user%d", userID)},
		"message": fmt.Sprintf("message %d", id),
		"time":    1700000000 + id,
	}
	if parent != nil {
		m["parent"] = parent
	}
	return m
}

// DeepParentChain returns comment depth+1 whose ancestors, 1 through depth,
// are each embedded as the parent of the next.
func (g *JSONGenerator) DeepParentChain(depth int) string {
	var parent map[string]any
	for id := int64(1); id <= int64(depth)+1; id++ {
		parent = g.Comment(id, 1+id%3, parent)
	}
	b, _ := json.Marshal(parent)
	return string(b)
}

// Page returns a page of n well-formed comments starting at id first.
func (g *JSONGenerator) Page(first int64, n int) string {
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = g.Comment(first+int64(i), 1, nil)
	}
	b, _ := json.Marshal(rows)
	return string(b)
}

// MalformedComments returns comment payloads that must be rejected.
func (g *JSONGenerator) MalformedComments() []string {
	return []string{
		``,
		`null`,
		`[]`,
		`"comment"`,
		`{}`,
		`{"id": 1}`,
		`{"id": "1", "user": {"id": 1, "name": "a"}, "message": "m", "time": 1}`,
		`{"id": 1.5, "user": {"id": 1, "name": "a"}, "message": "m", "time": 1}`,
		`{"id": -1, "user": {"id": 1, "name": "a"}, "message": "m", "time": 1}`,
		`{"id": 1, "user": null, "message": "m", "time": 1}`,
		`{"id": 1, "user": {"id": 1}, "message": "m", "time": 1}`,
		`{"id": 1, "user": {"name": "a"}, "message": "m", "time": 1}`,
		`{"id": 1, "user": {"id": 1, "name": "a"}, "time": 1}`,
		`{"id": 1, "user": {"id": 1, "name": "a"}, "message": 7, "time": 1}`,
		`{"id": 1, "user": {"id": 1, "name": "a"}, "message": "m"}`,
		`{"id": 1, "user": {"id": 1, "name": "a"}, "message": "m", "time": "yesterday"}`,
		`{"id": 1, "user": {"id": 1, "name": "a"}, "message": "m", "time": 1, "parent": {"id": 1, "user": {"id": 1, "name": "a"}, "message": "m", "time": 1}}`,
		`{"id": 2, "user": {"id": 1, "name": "a"}, "message": "m", "time": 1, "parent": {"id": 1}}`,
		`{"id": 1, "user": {"id": 1, "name": "a"}, "message": "m", "time": 1`,
		`{"id": 99999999999999999999, "user": {"id": 1, "name": "a"}, "message": "m", "time": 1}`,
	}
}

// MalformedPages returns comments-page payloads that must be rejected.
func (g *JSONGenerator) MalformedPages() []string {
	return []string{
		``,
		`{}`,
		`"page"`,
		`42`,
		`[null]`,
		`[{}]`,
		`[1, 2, 3]`,
		`[{"id": 1, "user": {"id": 1, "name": "a"}, "message": "m", "time": 1}, {"id": 2}]`,
		`[{"id": 1, "user": {"id": 1, "name": "a"}, "message": "m", "time": 1}`,
	}
}

// MalformedCounts returns count payloads that must be rejected.
func (g *JSONGenerator) MalformedCounts() []string {
	return []string{``, `null`, `-1`, `1.5`, `"3"`, `[3]`, `{"count": 3}`, `1e400`}
}

// JSONBomb returns an array nested depth levels deep.
func (g *JSONGenerator) JSONBomb(depth int) string {
	return strings.Repeat("[", depth) + strings.Repeat("]", depth)
}
