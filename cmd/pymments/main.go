package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/docopt/docopt-go"

	"github.com/jamesprial/go-pymments"
	"github.com/jamesprial/go-pymments/internal"
	"github.com/jamesprial/go-pymments/pkg/config"
	"github.com/jamesprial/go-pymments/pkg/session"
)

const Version = "0.1.0"

const usage = `pymments command line client.

Settings come from the config file, a .env file and PYMMENTS_* environment
variables, in increasing order of precedence. --url overrides them all.

Usage:
    pymments comments [options] <item_id> [--pages=<n>]
    pymments thread [options] <item_id>
    pymments count [options] <item_id>
    pymments comment [options] <comment_id>
    pymments user [options] <user_id>
    pymments create-user [options] <name>
    pymments whoami [options]
    pymments rename [options] <name>
    pymments post [options] <item_id> <message> [--parent=<comment_id>]
    pymments sign-out [options]
    pymments raw [options] <op> [<param>...]
    pymments -h | --help
    pymments --version

Options:
    -h --help               Show this screen.
    --version               Show version.
    --config=<path>         YAML config file [default: pymments.yaml].
    --url=<url>             Service endpoint, e.g. https://example.com/pymments.py.
    --pages=<n>             Stop after this many pages, 0 for all [default: 0].
    --parent=<comment_id>   Reply to this comment.
    -v --verbose            Log requests to stderr.`

type app struct {
	client *pymments.Client
	store  *session.PebbleStore
	cfg    *config.Config
	logger *slog.Logger
}

func main() {
	opts, err := docopt.ParseArgs(usage, os.Args[1:], Version)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts docopt.Opts) error {
	a, err := setup(opts)
	if err != nil {
		return err
	}
	defer a.store.Close()

	commands := []struct {
		name string
		fn   func(context.Context, docopt.Opts) error
	}{
		{"comments", a.comments},
		{"thread", a.thread},
		{"count", a.count},
		{"comment", a.comment},
		{"user", a.user},
		{"create-user", a.createUser},
		{"whoami", a.whoami},
		{"rename", a.rename},
		{"post", a.post},
		{"sign-out", a.signOut},
		{"raw", a.raw},
	}
	for _, cmd := range commands {
		if on, _ := opts.Bool(cmd.name); on {
			return cmd.fn(ctx, opts)
		}
	}
	return errors.New("no command given")
}

func setup(opts docopt.Opts) (*app, error) {
	path, _ := opts.String("--config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if u, _ := opts.String("--url"); u != "" {
		cfg.URL = u
	}
	if cfg.URL == "" {
		return nil, errors.New("no service url: set url in the config file, PYMMENTS_URL or --url")
	}

	level := cfg.Level()
	if verbose, _ := opts.Bool("--verbose"); verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store, err := session.OpenPebbleStore(cfg.SessionDir)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}

	client, err := pymments.NewClient(&pymments.Config{
		BaseURL:      cfg.URL,
		UserAgent:    cfg.UserAgent,
		HTTPClient:   &http.Client{Timeout: cfg.Timeout},
		Logger:       logger,
		SessionStore: store,
		RateLimit: &pymments.RateLimitConfig{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			Burst:             cfg.RateLimit.Burst,
		},
	})
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{client: client, store: store, cfg: cfg, logger: logger}, nil
}

func (a *app) comments(ctx context.Context, opts docopt.Opts) error {
	itemID, _ := opts.String("<item_id>")
	pages, err := opts.Int("--pages")
	if err != nil {
		return fmt.Errorf("--pages: %w", err)
	}

	list, err := a.client.Comments(itemID)
	if err != nil {
		return err
	}
	for n := 0; pages == 0 || n < pages; n++ {
		page, err := list.NextPage(ctx)
		if errors.Is(err, pymments.ErrDone) {
			break
		}
		if err != nil {
			return err
		}
		for _, c := range page {
			printComment(c, 0)
		}
	}
	return nil
}

func (a *app) thread(ctx context.Context, opts docopt.Opts) error {
	itemID, _ := opts.String("<item_id>")
	list, err := a.client.Comments(itemID)
	if err != nil {
		return err
	}
	all, err := list.All(ctx)
	if err != nil {
		return err
	}
	pymments.NewThread(all).Walk(printComment)
	return nil
}

func (a *app) count(ctx context.Context, opts docopt.Opts) error {
	itemID, _ := opts.String("<item_id>")
	n, err := a.client.CommentsCount(ctx, itemID)
	if err != nil {
		return err
	}
	fmt.Println(n)
	return nil
}

func (a *app) comment(ctx context.Context, opts docopt.Opts) error {
	id, err := intArg(opts, "<comment_id>")
	if err != nil {
		return err
	}
	c, err := a.client.Comment(ctx, id)
	if err != nil {
		return err
	}
	depth := 0
	for p := c; p != nil; p = p.Parent {
		depth++
	}
	// Print the ancestry root first.
	chain := make([]*pymments.Comment, depth)
	for p, i := c, depth-1; p != nil; p, i = p.Parent, i-1 {
		chain[i] = p
	}
	for i, p := range chain {
		printComment(p, i)
	}
	return nil
}

func (a *app) user(ctx context.Context, opts docopt.Opts) error {
	id, err := intArg(opts, "<user_id>")
	if err != nil {
		return err
	}
	u, err := a.client.User(ctx, id)
	if err != nil {
		return err
	}
	fmt.Printf("%d\t%s\n", u.ID, u.Name())
	return nil
}

func (a *app) createUser(ctx context.Context, opts docopt.Opts) error {
	name, _ := opts.String("<name>")
	u, err := a.client.CreateUser(ctx, name)
	if err != nil {
		return err
	}
	fmt.Printf("signed in as %s (id %d)\n", u.Name(), u.ID)
	return nil
}

func (a *app) whoami(ctx context.Context, opts docopt.Opts) error {
	u, err := a.localUser()
	if err != nil {
		return err
	}
	fmt.Printf("%d\t%s\n", u.ID, u.Name())
	return nil
}

func (a *app) rename(ctx context.Context, opts docopt.Opts) error {
	name, _ := opts.String("<name>")
	u, err := a.localUser()
	if err != nil {
		return err
	}
	if err := u.ChangeName(ctx, name); err != nil {
		return err
	}
	fmt.Printf("renamed to %s\n", u.Name())
	return nil
}

func (a *app) post(ctx context.Context, opts docopt.Opts) error {
	itemID, _ := opts.String("<item_id>")
	message, _ := opts.String("<message>")

	u, err := a.localUser()
	if err != nil {
		return err
	}

	var parent *pymments.Comment
	if raw, _ := opts.String("--parent"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("--parent: %w", err)
		}
		if parent, err = a.client.Comment(ctx, id); err != nil {
			return err
		}
	}

	c, err := a.client.AddComment(ctx, itemID, parent, u, message)
	if err != nil {
		return err
	}
	printComment(c, 0)
	return nil
}

func (a *app) signOut(ctx context.Context, opts docopt.Opts) error {
	return a.client.SignOut()
}

// raw sends one GET op with key=value params and prints the response as
// the service sent it, bypassing parsing.
func (a *app) raw(ctx context.Context, opts docopt.Opts) error {
	op, _ := opts.String("<op>")
	params := url.Values{"op": {op}}
	if list, ok := opts["<param>"].([]string); ok {
		for _, kv := range list {
			k, v, found := strings.Cut(kv, "=")
			if !found {
				return fmt.Errorf("param %q is not key=value", kv)
			}
			params.Add(k, v)
		}
	}

	userAgent := a.cfg.UserAgent
	if userAgent == "" {
		userAgent = pymments.DefaultUserAgent
	}
	transport, err := internal.NewClient(&http.Client{Timeout: a.cfg.Timeout}, a.cfg.URL, userAgent, nil, a.logger, nil)
	if err != nil {
		return err
	}
	data, err := transport.Request(ctx, http.MethodGet, params)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (a *app) localUser() (*pymments.User, error) {
	u, err := a.client.LocalUser()
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errors.New("not signed in; run create-user first")
	}
	return u, nil
}

func intArg(opts docopt.Opts, name string) (int64, error) {
	s, _ := opts.String(name)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	return n, nil
}

func printComment(c *pymments.Comment, depth int) {
	fmt.Printf("%s[%d] %s %s: %s\n",
		strings.Repeat("  ", depth),
		c.ID,
		c.Time.Local().Format("2006-01-02 15:04"),
		c.User.Name(),
		c.Message,
	)
}
