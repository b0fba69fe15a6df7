package main

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/docopt/docopt-go"

	"github.com/jamesprial/go-pymments/test_helpers"
)

func runArgs(t *testing.T, args ...string) error {
	t.Helper()
	opts, err := docopt.ParseArgs(usage, args, Version)
	if err != nil {
		t.Fatalf("ParseArgs(%v) returned error: %v", args, err)
	}
	return run(context.Background(), opts)
}

func TestCLI_SessionFlow(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	t.Chdir(t.TempDir())
	t.Setenv("PYMMENTS_SESSION_DIR", filepath.Join(t.TempDir(), "session"))
	url := "--url=" + fs.URL()

	if err := runArgs(t, "whoami", url); err == nil || !strings.Contains(err.Error(), "not signed in") {
		t.Fatalf("whoami before sign-in: %v", err)
	}
	if err := runArgs(t, "create-user", url, "cli-user"); err != nil {
		t.Fatalf("create-user: %v", err)
	}
	if err := runArgs(t, "whoami", url); err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if err := runArgs(t, "post", url, "8", "hello from the cli"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if err := runArgs(t, "post", url, "8", "a reply", "--parent=1"); err != nil {
		t.Fatalf("post reply: %v", err)
	}
	if err := runArgs(t, "rename", url, "renamed"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	if fs.UserName(1) != "renamed" {
		t.Errorf("server name is %q", fs.UserName(1))
	}

	for _, args := range [][]string{
		{"comments", url, "8"},
		{"comments", url, "8", "--pages=1"},
		{"thread", url, "8"},
		{"count", url, "8"},
		{"comment", url, "2"},
		{"user", url, "1"},
		{"raw", url, "comments", "itemId=8", "lastId=0"},
	} {
		if err := runArgs(t, args...); err != nil {
			t.Errorf("%v: %v", args, err)
		}
	}

	if err := runArgs(t, "sign-out", url); err != nil {
		t.Fatalf("sign-out: %v", err)
	}
	if err := runArgs(t, "post", url, "8", "after sign-out"); err == nil {
		t.Error("post after sign-out should fail")
	}
}

func TestCLI_Errors(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("PYMMENTS_URL", "")

	if err := runArgs(t, "count", "1"); err == nil || !strings.Contains(err.Error(), "no service url") {
		t.Errorf("missing url: %v", err)
	}

	fs := test_helpers.NewFakeService()
	defer fs.Close()
	url := "--url=" + fs.URL()

	if err := runArgs(t, "count", url, "abc"); err == nil {
		t.Error("non-numeric item id should fail")
	}
	if err := runArgs(t, "comment", url, "x"); err == nil {
		t.Error("non-numeric comment id should fail")
	}
	if err := runArgs(t, "raw", url, "count", "itemId"); err == nil {
		t.Error("param without = should fail")
	}
}
