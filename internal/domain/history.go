package domain

// HistoryLog is the ordered record sequence of one service, oldest first.
type HistoryLog []StatusRecord

// Append adds r at the end and drops the oldest entries beyond limit.
// The receiver is not modified.
func (h HistoryLog) Append(r StatusRecord, limit int) HistoryLog {
	out := make(HistoryLog, 0, len(h)+1)
	out = append(out, h...)
	out = append(out, r)
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Last returns the newest record, or nil for an empty log.
func (h HistoryLog) Last() *StatusRecord {
	if len(h) == 0 {
		return nil
	}
	r := h[len(h)-1]
	return &r
}

// Tail returns the newest n records, oldest first. n <= 0 returns all.
func (h HistoryLog) Tail(n int) HistoryLog {
	if n <= 0 || n >= len(h) {
		return h
	}
	return h[len(h)-n:]
}

// Summary aggregates a history log for status pages.
type Summary struct {
	Checks        int           `json:"checks"`
	UpChecks      int           `json:"up_checks"`
	UptimePercent float64       `json:"uptime_percent"`
	AvgResponseMS float64       `json:"avg_response_ms"`
	Last          *StatusRecord `json:"last,omitempty"`
}

// Summarize computes uptime over the whole log. The mean response time only
// counts up records since failed probes always report zero.
func (h HistoryLog) Summarize() Summary {
	s := Summary{Checks: len(h), Last: h.Last()}
	var total int64
	for _, r := range h {
		if r.Status == StatusUp {
			s.UpChecks++
			total += r.ResponseTime
		}
	}
	if s.Checks > 0 {
		s.UptimePercent = float64(s.UpChecks) * 100 / float64(s.Checks)
	}
	if s.UpChecks > 0 {
		s.AvgResponseMS = float64(total) / float64(s.UpChecks)
	}
	return s
}
