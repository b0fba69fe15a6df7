package test_generators

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jamesprial/go-pymments/test_helpers"
)

// CommentGenerator produces realistic comment threads for tests. A fixed seed
// gives the same threads every run.
type CommentGenerator struct {
	rand             *rand.Rand
	commentTemplates []string
	replies          []string
	users            []string
}

// NewCommentGenerator creates a new comment generator. Seed 0 picks a random seed.
func NewCommentGenerator(seed int64) *CommentGenerator {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	return &CommentGenerator{
		rand: rand.New(rand.NewSource(seed)),
		commentTemplates: []string{
			"I completely agree with %s. This is exactly what I was thinking.",
			"Actually, %s is not entirely accurate. Let me explain...",
			"Great point about %s! I've had a similar experience.",
			"I disagree with %s. Here's my perspective...",
			"Can someone elaborate on %s? I'm not sure I understand.",
			"Counterpoint: %s. What do you all think?",
		},
		replies: []string{
			"You're absolutely right!",
			"I see what you mean, but...",
			"Interesting perspective!",
			"Thanks for explaining!",
			"Could you provide more details?",
			"I respectfully disagree.",
		},
		users: []string{
			"thoughtful_commenter", "expert_analyst", "casual_observer", "debate_enthusiast",
			"helpful_explainer", "skeptic_user", "critical_thinker", "new_participant",
		},
	}
}

// ThreadOptions shapes a generated thread.
type ThreadOptions struct {
	// Comments is the total number of comments to create.
	Comments int
	// MaxDepth caps the reply depth; 0 makes every comment top-level.
	MaxDepth int
	// ReplyChance is the probability that a comment replies to an earlier one.
	ReplyChance float64
	// Authors is the number of distinct users; defaults to 4.
	Authors int
}

// Thread describes what Populate created.
type Thread struct {
	IDs     []int64         // in creation order, which is also page order
	Parent  map[int64]int64 // 0 for top-level comments
	Author  map[int64]int64
	Depth   map[int64]int
	UserIDs []int64
}

// Populate creates a thread on itemID in fs and returns its layout.
func (cg *CommentGenerator) Populate(fs *test_helpers.FakeService, itemID int64, opts ThreadOptions) *Thread {
	authors := opts.Authors
	if authors <= 0 {
		authors = 4
	}

	th := &Thread{
		Parent: make(map[int64]int64, opts.Comments),
		Author: make(map[int64]int64, opts.Comments),
		Depth:  make(map[int64]int, opts.Comments),
	}
	for i := 0; i < authors; i++ {
		id, _ := fs.AddUser(cg.UserName())
		th.UserIDs = append(th.UserIDs, id)
	}

	for i := 0; i < opts.Comments; i++ {
		var parent int64
		depth := 0
		if len(th.IDs) > 0 && cg.rand.Float64() < opts.ReplyChance {
			candidate := th.IDs[cg.rand.Intn(len(th.IDs))]
			if th.Depth[candidate] < opts.MaxDepth {
				parent = candidate
				depth = th.Depth[candidate] + 1
			}
		}

		author := th.UserIDs[cg.rand.Intn(len(th.UserIDs))]
		msg := cg.Message()
		if parent != 0 {
			msg = cg.Reply()
		}
		id := fs.AddComment(itemID, parent, author, msg)

		th.IDs = append(th.IDs, id)
		th.Parent[id] = parent
		th.Author[id] = author
		th.Depth[id] = depth
	}
	return th
}

// MaxDepth returns the deepest reply level in the thread.
func (th *Thread) MaxDepth() int {
	deepest := 0
	for _, d := range th.Depth {
		if d > deepest {
			deepest = d
		}
	}
	return deepest
}

// Message returns a top-level comment body.
func (cg *CommentGenerator) Message() string {
	topics := []string{"the new release", "this approach", "the benchmark", "the original post", "caching"}
	return fmt.Sprintf(cg.randElement(cg.commentTemplates), cg.randElement(topics))
}

// Reply returns a short reply body.
func (cg *CommentGenerator) Reply() string {
	return cg.randElement(cg.replies)
}

// UserName returns a plausible display name.
func (cg *CommentGenerator) UserName() string {
	return fmt.Sprintf("%s_%d", cg.randElement(cg.users), cg.rand.Intn(1000))
}

func (cg *CommentGenerator) randElement(items []string) string {
	return items[cg.rand.Intn(len(items))]
}
