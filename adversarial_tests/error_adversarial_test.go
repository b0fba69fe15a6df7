package adversarial_tests

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jamesprial/go-pymments/adversarial_tests/helpers"
	pkgerrs "github.com/jamesprial/go-pymments/pkg/errors"
	"github.com/jamesprial/go-pymments/test_helpers"
)

func TestChaosModes(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	uid, _ := fs.AddUser("target")

	var (
		reqErr   *pkgerrs.RequestError
		parseErr *pkgerrs.ParseError
		apiErr   *pkgerrs.APIError
	)

	testCases := []struct {
		name  string
		mode  helpers.ChaosMode
		check func(error) bool
	}{
		{"connection reset", helpers.ChaosConnectionReset, func(err error) bool {
			return errors.As(err, &reqErr) && errors.Is(err, helpers.ErrConnectionReset)
		}},
		{"partial read", helpers.ChaosPartialRead, func(err error) bool { return errors.As(err, &reqErr) }},
		{"empty body", helpers.ChaosEmptyBody, func(err error) bool { return errors.As(err, &parseErr) }},
		{"invalid json", helpers.ChaosInvalidJSON, func(err error) bool { return errors.As(err, &parseErr) }},
		{"oversized body", helpers.ChaosOversizedBody, func(err error) bool { return errors.As(err, &parseErr) }},
		{"server error", helpers.ChaosServerError, func(err error) bool {
			return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable
		}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			chaos := helpers.NewChaosTransport(fs.Client().Transport, helpers.ChaosConfig{Mode: tc.mode, PartialReadBytes: 5})
			client := newFakeClient(t, fs, chaos)

			u, err := client.User(context.Background(), uid)
			if err == nil || !tc.check(err) {
				t.Fatalf("unexpected result %v, %v", u, err)
			}
			if _, ok := client.CachedUser(uid); ok {
				t.Error("a failed fetch must not populate the cache")
			}
		})
	}
}

func TestSlowResponseHonorsDeadline(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	fs.Seed(1, 3)

	chaos := helpers.NewChaosTransport(fs.Client().Transport, helpers.ChaosConfig{Mode: helpers.ChaosSlowResponse, Delay: 5 * time.Second})
	client := newFakeClient(t, fs, chaos)
	list, _ := client.Comments("1")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := list.NextPage(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Error("NextPage did not return promptly after the deadline")
	}
	if list.Cursor() != 0 || list.Finished() {
		t.Error("a timed out page must leave the list untouched")
	}
}

func TestIntermittentFailuresEventuallyDrain(t *testing.T) {
	const rows = 57
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	fs.Seed(2, rows)

	chaos := helpers.NewChaosTransport(fs.Client().Transport, helpers.ChaosConfig{Mode: helpers.ChaosIntermittent, FailureRate: 0.4, Seed: 11})
	client := newFakeClient(t, fs, chaos)
	list, _ := client.Comments("2")

	var got []int64
	for attempts := 0; attempts < 200; attempts++ {
		page, err := list.NextPage(context.Background())
		if errors.Is(err, pkgerrs.ErrDone) {
			break
		}
		if err != nil {
			continue
		}
		for _, c := range page {
			got = append(got, c.ID)
		}
	}

	if len(got) != rows {
		t.Fatalf("expected %d comments, got %d", rows, len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i] <= got[i-1] {
			t.Fatalf("comments out of order at %d: %v", i, got)
		}
	}
	if chaos.Injected() == 0 {
		t.Error("no chaos was injected")
	}
}

func TestServerErrorBodyTruncated(t *testing.T) {
	fs := test_helpers.NewFakeService()
	defer fs.Close()
	fs.FailOp("count", http.StatusBadGateway)
	client := newFakeClient(t, fs, nil)

	var apiErr *pkgerrs.APIError
	if _, err := client.CommentsCount(context.Background(), "1"); !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || len(apiErr.Message) > 512 {
		t.Errorf("unexpected APIError %+v", apiErr)
	}

	fs.FailOp("count", 0)
	if n, err := client.CommentsCount(context.Background(), "1"); err != nil || n != 0 {
		t.Errorf("after recovery: %d, %v", n, err)
	}
}
