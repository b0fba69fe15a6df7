package pymments

import (
	"github.com/jamesprial/go-pymments/internal"
)

// Thread arranges a set of comments into reply order. A comment whose
// parent is not in the set is treated as a root.
type Thread struct {
	tree *internal.Tree[*Comment]
}

// NewThread creates a Thread from a slice of comments. Nil entries are
// skipped, as are repeats of the same comment.
func NewThread(comments []*Comment) *Thread {
	nodes := make([]*Comment, 0, len(comments))
	for _, c := range comments {
		if c != nil {
			nodes = append(nodes, c)
		}
	}
	return &Thread{tree: internal.NewTree(nodes, commentID, parentID)}
}

func commentID(c *Comment) int64 { return c.ID }

func parentID(c *Comment) (int64, bool) {
	if c.Parent == nil {
		return 0, false
	}
	return c.Parent.ID, true
}

// Roots returns the comments that start a thread.
func (t *Thread) Roots() []*Comment {
	return t.tree.Roots()
}

// Replies returns the direct replies to c within the thread.
func (t *Thread) Replies(c *Comment) []*Comment {
	if c == nil {
		return nil
	}
	return t.tree.Children(c.ID)
}

// GetByID returns the comment with the given id, or nil.
func (t *Thread) GetByID(id int64) *Comment {
	c, _ := t.tree.Get(id)
	return c
}

// Walk visits every comment depth-first; roots have depth 0.
func (t *Thread) Walk(fn func(c *Comment, depth int)) {
	t.tree.Walk(fn)
}

// Flatten returns all comments in depth-first order.
func (t *Thread) Flatten() []*Comment {
	return t.tree.Flatten()
}

// Filter returns the comments matching fn, depth-first.
func (t *Thread) Filter(fn func(*Comment) bool) []*Comment {
	return t.tree.Filter(fn)
}

// Find returns the first comment, depth-first, matching fn, or nil.
func (t *Thread) Find(fn func(*Comment) bool) *Comment {
	c, _ := t.tree.Find(fn)
	return c
}

// ByUser returns the comments written by u.
func (t *Thread) ByUser(u *User) []*Comment {
	return t.tree.Filter(func(c *Comment) bool { return c.User == u })
}

// Depth returns the deepest reply level; a thread of only roots has depth 0.
func (t *Thread) Depth() int {
	return t.tree.Depth()
}

// Count returns the number of comments in the thread.
func (t *Thread) Count() int {
	return t.tree.Count()
}
