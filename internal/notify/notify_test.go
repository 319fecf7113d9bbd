package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

type countingNotifier struct {
	n   int
	err error
}

func (c *countingNotifier) Send(ctx context.Context, title, text string) error {
	c.n++
	return c.err
}

func TestMulti_SendsToAllReturnsFirstError(t *testing.T) {
	first := errors.New("first")
	a := &countingNotifier{err: first}
	b := &countingNotifier{err: errors.New("second")}
	c := &countingNotifier{}

	err := Multi{a, nil, b, c}.Send(context.Background(), "t", "x")
	if !errors.Is(err, first) {
		t.Fatalf("want first error, got %v", err)
	}
	if a.n != 1 || b.n != 1 || c.n != 1 {
		t.Fatalf("every notifier should be called once: %d %d %d", a.n, b.n, c.n)
	}
}

func TestNewSlack_EmptyWebhookDisabled(t *testing.T) {
	if NewSlack("") != nil {
		t.Fatalf("empty webhook should disable slack")
	}
	var s *Slack
	if err := s.Send(context.Background(), "t", "x"); !errors.Is(err, ErrDisabled) {
		t.Fatalf("want ErrDisabled, got %v", err)
	}
}

func TestFromWebhooks(t *testing.T) {
	if FromWebhooks() != nil || FromWebhooks("", "") != nil {
		t.Fatalf("no webhooks should give a nil notifier")
	}

	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(200)
	}))
	defer ts.Close()

	n := FromWebhooks(ts.URL+"/a", "", ts.URL+"/b")
	m, ok := n.(Multi)
	if !ok || len(m) != 2 {
		t.Fatalf("want Multi of 2, got %#v", n)
	}
	if err := n.Send(context.Background(), "t", "x"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("want both webhooks hit, got %d", got)
	}
}
