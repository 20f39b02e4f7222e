// Package audit implements the append-only scan audit trail. Every
// completed scan produces one record: timestamp, URL, classification,
// probability, risk level. Two sinks are provided, a JSON-lines file
// for single-node deployments and a Postgres table for fleets, plus a
// nop sink for tests.
package audit

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"

	"github.com/phishguard/phishguard/pkg/engine"
)

// Logger writes JSON-line audit records.
type Logger struct {
	mu  sync.Mutex
	enc *json.Encoder
}

// NewLogger creates an audit logger writing to w.
func NewLogger(w io.Writer) *Logger {
	return &Logger{enc: json.NewEncoder(w)}
}

// NewFileLogger creates a logger appending to the file at path,
// creating it if needed.
func NewFileLogger(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	return NewLogger(f), nil
}

// Record writes one entry as a JSON line. Write failures are logged
// and swallowed; the audit trail must never fail a scan.
func (l *Logger) Record(e engine.AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(e); err != nil {
		log.Printf("[WARN] audit write failed: %v", err)
	}
}

// Nop returns a sink that discards all entries.
func Nop() *Logger {
	return NewLogger(io.Discard)
}
