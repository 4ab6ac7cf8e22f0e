package geocode

import (
	"encoding/json"
	"os"
	"sync"

	"github.com/rotisserie/eris"
)

// AuditLog records every raw geocoding response, one JSON document per line,
// in call order. The log is write-only from the pipeline's perspective: it
// exists for offline audit and manual forensic replay of long batch runs.
type AuditLog interface {
	Append(places []Place) error
}

// FileAuditLog is an append-only JSON-lines file sink. It is injected into
// the client rather than referenced as ambient process state, so two
// pipelines never share a log by accident.
type FileAuditLog struct {
	mu sync.Mutex
	f  *os.File
}

// OpenFileAuditLog opens (or creates) the audit log for appending.
func OpenFileAuditLog(path string) (*FileAuditLog, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, eris.Wrapf(err, "geocode: open audit log %s", path)
	}
	return &FileAuditLog{f: f}, nil
}

// Append writes one complete JSON document followed by a newline. An empty
// result set is recorded as an explicit "[]" marker.
func (l *FileAuditLog) Append(places []Place) error {
	if places == nil {
		places = []Place{}
	}
	line, err := json.Marshal(places)
	if err != nil {
		return eris.Wrap(err, "geocode: marshal audit entry")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.f.Write(append(line, '\n')); err != nil {
		return eris.Wrap(err, "geocode: write audit entry")
	}
	return l.f.Sync()
}

// Close closes the underlying file.
func (l *FileAuditLog) Close() error {
	return l.f.Close()
}
