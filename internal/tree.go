package internal

// Tree arranges nodes into parent/child order using caller-supplied id and
// parent accessors. A node whose parent is not in the set is treated as a root.
type Tree[T any] struct {
	roots    []T
	byID     map[int64]T
	children map[int64][]T
	id       func(T) int64
}

// NewTree builds a tree from nodes. Duplicate ids keep the first node seen;
// input order is preserved among siblings.
func NewTree[T any](nodes []T, id func(T) int64, parent func(T) (int64, bool)) *Tree[T] {
	t := &Tree[T]{
		byID:     make(map[int64]T, len(nodes)),
		children: make(map[int64][]T),
		id:       id,
	}

	ordered := make([]T, 0, len(nodes))
	for _, n := range nodes {
		nid := id(n)
		if _, dup := t.byID[nid]; dup {
			continue
		}
		t.byID[nid] = n
		ordered = append(ordered, n)
	}

	for _, n := range ordered {
		pid, ok := parent(n)
		if ok {
			if _, present := t.byID[pid]; present && pid != id(n) {
				t.children[pid] = append(t.children[pid], n)
				continue
			}
		}
		t.roots = append(t.roots, n)
	}

	return t
}

// Roots returns the top-level nodes.
func (t *Tree[T]) Roots() []T {
	return t.roots
}

// Children returns the direct children of the node with the given id.
func (t *Tree[T]) Children(id int64) []T {
	return t.children[id]
}

// Get returns the node with the given id.
func (t *Tree[T]) Get(id int64) (T, bool) {
	n, ok := t.byID[id]
	return n, ok
}

// Walk applies fn to each reachable node depth-first, passing its depth
// (roots are depth 0).
func (t *Tree[T]) Walk(fn func(n T, depth int)) {
	visited := make(map[int64]bool, len(t.byID))
	t.walkRecursive(t.roots, 0, visited, fn)
}

func (t *Tree[T]) walkRecursive(nodes []T, depth int, visited map[int64]bool, fn func(T, int)) {
	for _, n := range nodes {
		nid := t.id(n)
		if visited[nid] {
			continue
		}
		visited[nid] = true
		fn(n, depth)
		if kids := t.children[nid]; len(kids) > 0 {
			t.walkRecursive(kids, depth+1, visited, fn)
		}
	}
}

// Flatten returns all reachable nodes in depth-first order.
func (t *Tree[T]) Flatten() []T {
	var result []T
	t.Walk(func(n T, _ int) {
		result = append(result, n)
	})
	return result
}

// Filter returns nodes that match the given filter function, depth-first.
func (t *Tree[T]) Filter(filterFunc func(T) bool) []T {
	var result []T
	t.Walk(func(n T, _ int) {
		if filterFunc(n) {
			result = append(result, n)
		}
	})
	return result
}

// Find returns the first node, depth-first, that matches the given condition.
func (t *Tree[T]) Find(condition func(T) bool) (T, bool) {
	for _, n := range t.Flatten() {
		if condition(n) {
			return n, true
		}
	}
	var zero T
	return zero, false
}

// Depth returns the maximum depth of the tree; a tree of only roots has depth 0.
func (t *Tree[T]) Depth() int {
	maxDepth := 0
	t.Walk(func(_ T, depth int) {
		if depth > maxDepth {
			maxDepth = depth
		}
	})
	return maxDepth
}

// Count returns the number of reachable nodes.
func (t *Tree[T]) Count() int {
	return len(t.Flatten())
}
