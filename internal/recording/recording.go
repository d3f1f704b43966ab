// Package recording writes inbound envelopes to a JSONL file and reads them
// back, so a session can be replayed without a backend.
package recording

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/frontdesk/internal/transport"
)

// maxLine bounds a single recorded line. Initialize envelopes carry the
// whole database and can be large.
const maxLine = 64 << 20

// Entry is one recorded line.
type Entry struct {
	Session    string    `json:"session"`
	ReceivedAt time.Time `json:"received_at"`
	Message    string    `json:"message"`
}

// Recorder appends entries to a JSONL file. It is safe for concurrent use.
type Recorder struct {
	mu      sync.Mutex
	f       *os.File
	enc     *json.Encoder
	session string
	now     func() time.Time
}

// Create opens path for appending, creating it if needed. Every entry
// written through the Recorder carries a fresh session id.
func Create(path string) (*Recorder, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	id, err := uuid.NewV7()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("session id: %w", err)
	}
	return &Recorder{
		f:       f,
		enc:     json.NewEncoder(f),
		session: id.String(),
		now:     time.Now,
	}, nil
}

// Session returns the id stamped on every entry.
func (r *Recorder) Session() string { return r.session }

// Record appends raw as one line.
func (r *Recorder) Record(raw []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e := Entry{Session: r.session, ReceivedAt: r.now().UTC(), Message: string(raw)}
	if err := r.enc.Encode(e); err != nil {
		return fmt.Errorf("writing entry: %w", err)
	}
	return nil
}

// Close flushes and closes the file.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.f.Sync(); err != nil {
		r.f.Close()
		return fmt.Errorf("syncing %s: %w", r.f.Name(), err)
	}
	return r.f.Close()
}

// Tee returns a Handler that records every message before passing it on.
// A failed write does not stop delivery.
func (r *Recorder) Tee(next transport.Handler, onErr func(error)) transport.Handler {
	return &tee{rec: r, next: next, onErr: onErr}
}

type tee struct {
	rec   *Recorder
	next  transport.Handler
	onErr func(error)
}

func (t *tee) HandleMessage(ctx context.Context, raw []byte) error {
	if err := t.rec.Record(raw); err != nil && t.onErr != nil {
		t.onErr(err)
	}
	return t.next.HandleMessage(ctx, raw)
}

func (t *tee) HandleDisconnect(ctx context.Context) {
	t.next.HandleDisconnect(ctx)
}

// Load reads every entry of a recording in file order. Blank and malformed
// lines are skipped, as are lines longer than 64 MiB.
func Load(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	entries, err := readEntries(f, maxLine)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return entries, nil
}

// readEntries decodes one entry per line of r, dropping lines longer than
// limit without buffering them.
func readEntries(r io.Reader, limit int) ([]Entry, error) {
	br := bufio.NewReaderSize(r, 64*1024)
	var (
		entries  []Entry
		line     []byte
		oversize bool
	)
	for {
		chunk, err := br.ReadSlice('\n')
		if !oversize {
			if len(line)+len(chunk) > limit {
				oversize = true
				line = line[:0]
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

		if !oversize {
			if e, ok := decodeEntry(line); ok {
				entries = append(entries, e)
			}
		}
		line = line[:0]
		oversize = false

		if err != nil {
			return entries, nil
		}
	}
}

func decodeEntry(line []byte) (Entry, bool) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return Entry{}, false
	}
	var e Entry
	if err := json.Unmarshal(line, &e); err != nil {
		return Entry{}, false
	}
	return e, true
}
