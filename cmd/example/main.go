package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jamesprial/go-pymments"
	"github.com/jamesprial/go-pymments/pkg/session"
)

func main() {
	// Get the endpoint from environment variables
	baseURL := os.Getenv("PYMMENTS_URL")
	itemID := os.Getenv("PYMMENTS_ITEM")
	if baseURL == "" {
		log.Fatal("PYMMENTS_URL environment variable is required")
	}
	if itemID == "" {
		itemID = "1"
	}

	// Route structured logs to stdout; adjust the level as needed.
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	// Keep the signed-in user between runs.
	store, err := session.OpenPebbleStore(".pymments-example")
	if err != nil {
		log.Fatalf("Failed to open session store: %v", err)
	}
	defer store.Close()

	// Create the client
	client, err := pymments.NewClient(&pymments.Config{
		BaseURL:      baseURL,
		UserAgent:    "example-bot/1.0",
		Logger:       logger,
		SessionStore: store,
	})
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	ctx := context.Background()

	// Reuse the stored user, or register a new one
	me, err := client.LocalUser()
	if err != nil {
		log.Fatalf("Failed to read session: %v", err)
	}
	if me == nil {
		me, err = client.CreateUser(ctx, "example-bot")
		if err != nil {
			log.Fatalf("Failed to create user: %v", err)
		}
		fmt.Printf("Registered as %s (id %d)\n", me.Name(), me.ID)
	} else {
		fmt.Printf("Signed in as %s (id %d)\n", me.Name(), me.ID)
	}

	item, err := client.Item(itemID)
	if err != nil {
		log.Fatalf("Invalid item: %v", err)
	}

	count, err := item.CommentsCount(ctx)
	if err != nil {
		log.Printf("Failed to get comment count: %v", err)
	} else {
		fmt.Printf("\nItem %d has %d comments\n", item.ID, count)
	}

	// Read the first page
	list := item.Comments()
	page, err := list.NextPage(ctx)
	if err != nil && !errors.Is(err, pymments.ErrDone) {
		log.Fatalf("Failed to get comments: %v", err)
	}
	for i, c := range page {
		if i >= 3 { // Show only first 3 comments
			break
		}
		fmt.Printf("  - %s: %.100s\n", c.User.Name(), c.Message)
	}
	if !list.Finished() {
		fmt.Println("  (more comments available)")
	}

	// Post a comment, replying to the first one if there is one
	var parent *pymments.Comment
	if len(page) > 0 {
		parent = page[0]
	}
	posted, err := item.AddComment(ctx, parent, me, "Hello from the Go client!")
	if err != nil {
		log.Fatalf("Failed to post comment: %v", err)
	}
	fmt.Printf("\nPosted comment %d", posted.ID)
	if posted.Parent != nil {
		fmt.Printf(" in reply to %s", posted.Parent.User.Name())
	}
	fmt.Println()

	// Posted comments share instances with everything else the client has seen
	fetched, err := client.Comment(ctx, posted.ID)
	if err != nil {
		log.Fatalf("Failed to fetch comment: %v", err)
	}
	fmt.Printf("Same instance: %v\n", fetched == posted)
}
