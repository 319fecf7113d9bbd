package probe

import (
	"context"

	"github.com/hamed0406/statushistory/internal/domain"
)

// FailedResponseTime is the responseTime recorded when a probe never got an
// HTTP response (DNS failure, refused connection, timeout, TLS error). It is
// zero regardless of how long the attempt took, so a failure is never
// mistaken for a slow success when averaging latency.
const FailedResponseTime int64 = 0

// Prober performs a single check of one service. It never fails: every
// outcome is encoded in the returned record.
type Prober interface {
	Probe(ctx context.Context, svc domain.ServiceConfig) domain.StatusRecord
}
