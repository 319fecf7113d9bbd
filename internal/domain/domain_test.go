package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSlug(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"My Service  API", "my-service-api"},
		{"Ping", "ping"},
		{"tabs\tand\nnewlines", "tabs-and-newlines"},
		{"already-slugged", "already-slugged"},
		{" Leading", "-leading"},
		{"My\u00a0Service", "my-service"},
		{"A\vB", "a-b"},
		{"Ideo\u3000Space", "ideo-space"},
		{"Em\u2003\u2009Dash", "em-dash"},
		{"Line\u2028Sep\u2029Para", "line-sep-para"},
		{"Narrow\u202fNbsp\u205fMath", "narrow-nbsp-math"},
		{"Ogham\u1680Bom\ufeffEnd", "ogham-bom-end"},
		{"zero\u200bwidth", "zero\u200bwidth"},
	}
	for _, c := range cases {
		if got := Slug(c.in); got != c.want {
			t.Fatalf("Slug(%q)=%q want %q", c.in, got, c.want)
		}
	}
}

func TestFormatTimestamp_UTCMillis(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	ts := time.Date(2025, 8, 18, 14, 0, 0, 123456789, loc)
	if got := FormatTimestamp(ts); got != "2025-08-18T12:00:00.123Z" {
		t.Fatalf("unexpected timestamp %q", got)
	}
	if _, err := time.Parse(time.RFC3339, FormatTimestamp(ts)); err != nil {
		t.Fatalf("timestamp must be RFC 3339: %v", err)
	}
}

func TestValidate(t *testing.T) {
	ok := StatusRecord{Status: StatusUp, Timestamp: "2025-08-18T12:00:00.000Z", ResponseTime: 12}
	if err := Validate(ok); err != nil {
		t.Fatalf("valid record rejected: %v", err)
	}

	bad := []StatusRecord{
		{Status: "sideways", Timestamp: ok.Timestamp},
		{Status: StatusDown, Timestamp: "yesterday"},
		{Status: StatusDown, Timestamp: ok.Timestamp, ResponseTime: -1},
	}
	for _, r := range bad {
		if err := Validate(r); err == nil {
			t.Fatalf("expected %+v to be rejected", r)
		}
	}
}

func rec(i int) StatusRecord {
	status := StatusUp
	if i%2 == 1 {
		status = StatusDown
	}
	return StatusRecord{
		Status:       status,
		Timestamp:    FormatTimestamp(time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC)),
		ResponseTime: int64(i),
	}
}

func TestHistoryLog_AppendAtCapDropsOldest(t *testing.T) {
	var h HistoryLog
	for i := 0; i < MaxHistoryEntries; i++ {
		h = h.Append(rec(i), MaxHistoryEntries)
	}
	if len(h) != MaxHistoryEntries {
		t.Fatalf("want %d entries, got %d", MaxHistoryEntries, len(h))
	}

	next := h.Append(rec(MaxHistoryEntries), MaxHistoryEntries)
	if len(next) != MaxHistoryEntries {
		t.Fatalf("want %d entries after append, got %d", MaxHistoryEntries, len(next))
	}
	if next[0] != h[1] {
		t.Fatalf("oldest entry should be dropped: got first=%+v", next[0])
	}
	if *next.Last() != rec(MaxHistoryEntries) {
		t.Fatalf("new record should be last, got %+v", next.Last())
	}
	// receiver untouched
	if h[0] != rec(0) {
		t.Fatalf("Append mutated its receiver")
	}
}

func TestHistoryLog_Tail(t *testing.T) {
	h := HistoryLog{rec(0), rec(1), rec(2)}
	if got := h.Tail(2); len(got) != 2 || got[0] != rec(1) {
		t.Fatalf("Tail(2)=%+v", got)
	}
	if got := h.Tail(0); len(got) != 3 {
		t.Fatalf("Tail(0) should return all, got %d", len(got))
	}
	if got := h.Tail(10); len(got) != 3 {
		t.Fatalf("Tail(10) should return all, got %d", len(got))
	}
}

func TestHistoryLog_Summarize(t *testing.T) {
	h := HistoryLog{
		{Status: StatusUp, ResponseTime: 100},
		{Status: StatusDown, ResponseTime: 0},
		{Status: StatusUp, ResponseTime: 200},
		{Status: StatusDown, ResponseTime: 50},
	}
	s := h.Summarize()
	if s.Checks != 4 || s.UpChecks != 2 {
		t.Fatalf("counts wrong: %+v", s)
	}
	if s.UptimePercent != 50 {
		t.Fatalf("want 50%% uptime, got %v", s.UptimePercent)
	}
	if s.AvgResponseMS != 150 {
		t.Fatalf("want avg 150ms over up checks, got %v", s.AvgResponseMS)
	}
	if s.Last == nil || s.Last.ResponseTime != 50 {
		t.Fatalf("last wrong: %+v", s.Last)
	}

	empty := HistoryLog(nil).Summarize()
	if empty.Checks != 0 || empty.Last != nil || empty.UptimePercent != 0 {
		t.Fatalf("empty summary wrong: %+v", empty)
	}
}

func TestServiceConfig_JSONOmitsEmptySecret(t *testing.T) {
	b, err := json.Marshal(ServiceConfig{Name: "Ping", URL: "http://example.invalid"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `{"name":"Ping","url":"http://example.invalid","auth":false}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}
	if got := (ServiceConfig{Name: "My Service  API"}).Slug(); got != "my-service-api" {
		t.Fatalf("Slug()=%q", got)
	}
}
