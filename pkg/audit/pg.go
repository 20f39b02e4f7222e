package audit

import (
	"context"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/phishguard/phishguard/pkg/engine"
	"github.com/phishguard/phishguard/pkg/httputil"
)

const createScansTable = `
CREATE TABLE IF NOT EXISTS scan_audit (
	id           BIGSERIAL PRIMARY KEY,
	scanned_at   TIMESTAMPTZ NOT NULL,
	scan_id      UUID NOT NULL,
	url          TEXT NOT NULL,
	classification TEXT NOT NULL,
	probability  DOUBLE PRECISION NOT NULL,
	risk_level   TEXT NOT NULL
)`

const insertScan = `
INSERT INTO scan_audit (scanned_at, scan_id, url, classification, probability, risk_level)
VALUES ($1, $2, $3, $4, $5, $6)`

// PGSink appends audit records to a Postgres table. Writes happen on
// background goroutines bounded by a semaphore; under sustained
// database trouble records are dropped, never queued unboundedly, and
// never allowed to slow a scan.
type PGSink struct {
	pool     *pgxpool.Pool
	inflight *httputil.Semaphore
}

// NewPGSink connects to dsn and ensures the audit table exists.
func NewPGSink(ctx context.Context, dsn string) (*PGSink, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if _, err := pool.Exec(ctx, createScansTable); err != nil {
		pool.Close()
		return nil, err
	}
	return &PGSink{
		pool:     pool,
		inflight: httputil.NewSemaphore(64),
	}, nil
}

// Record inserts asynchronously. Drops the record when the write
// budget is exhausted.
func (s *PGSink) Record(e engine.AuditEntry) {
	if !s.inflight.TryAcquire() {
		log.Printf("[WARN] audit: postgres write budget exhausted, record dropped (scan %s)", e.ScanID)
		return
	}
	go func() {
		defer s.inflight.Release()
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, err := s.pool.Exec(ctx, insertScan,
			e.Timestamp, e.ScanID, e.URL, string(e.Classification), e.Probability, string(e.RiskLevel))
		if err != nil {
			log.Printf("[WARN] audit: postgres insert failed: %v", err)
		}
	}()
}

// Close releases the connection pool.
func (s *PGSink) Close() {
	s.pool.Close()
}
