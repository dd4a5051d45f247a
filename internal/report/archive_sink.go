package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/arbscan/arbwatch/internal/domain"
)

// ArchiveSink batches tick reports as JSON lines and uploads a new object to
// blob storage every flushEvery ticks. Objects are keyed by upload time under
// prefix, e.g. "ticks/2026/08/23/143005-000000240.jsonl".
type ArchiveSink struct {
	writer     domain.BlobWriter
	prefix     string
	flushEvery int

	mu  sync.Mutex
	buf bytes.Buffer
	n   int
}

// NewArchiveSink creates an ArchiveSink that flushes after flushEvery
// buffered reports.
func NewArchiveSink(writer domain.BlobWriter, prefix string, flushEvery int) *ArchiveSink {
	if flushEvery < 1 {
		flushEvery = 1
	}
	return &ArchiveSink{
		writer:     writer,
		prefix:     prefix,
		flushEvery: flushEvery,
	}
}

// Name returns the sink identifier.
func (s *ArchiveSink) Name() string { return "archive" }

// Publish appends the report to the current batch, uploading it once the
// batch is full. A failed upload keeps the batch buffered for the next try.
func (s *ArchiveSink) Publish(ctx context.Context, report domain.TickReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	line, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report %d: %w", report.Seq, err)
	}
	s.buf.Write(line)
	s.buf.WriteByte('\n')
	s.n++

	if s.n < s.flushEvery {
		return nil
	}
	return s.flushLocked(ctx, report.Seq)
}

// Flush uploads whatever is buffered. Called on shutdown so a partial batch
// is not lost.
func (s *ArchiveSink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.n == 0 {
		return nil
	}
	return s.flushLocked(ctx, 0)
}

func (s *ArchiveSink) flushLocked(ctx context.Context, seq int64) error {
	key := fmt.Sprintf("%s/%s-%09d.jsonl", s.prefix, time.Now().UTC().Format("2006/01/02/150405"), seq)
	if err := s.writer.Put(ctx, key, s.buf.Bytes(), "application/x-ndjson"); err != nil {
		return fmt.Errorf("upload archive %s: %w", key, err)
	}
	s.buf.Reset()
	s.n = 0
	return nil
}

// Compile-time interface check.
var _ domain.ReportSink = (*ArchiveSink)(nil)
