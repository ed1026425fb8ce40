package filter

import (
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
	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/domain/repositories"
	"github.com/johnquangdev/meeting-filter/pkg/jobcontext"
	"github.com/redis/go-redis/v9"
)

// EncodeJSONL renders records as one JSON object per line.
func EncodeJSONL(records []entities.NoiseRecord) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	for _, r := range records {
		if err := enc.Encode(r); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// DecodeJSONL parses lines written by EncodeJSONL. Blank lines are skipped.
func DecodeJSONL(data []byte) ([]entities.NoiseRecord, error) {
	var out []entities.NoiseRecord
	for i, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var r entities.NoiseRecord
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// WriterSink appends JSONL to an io.Writer.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Write(_ context.Context, records []entities.NoiseRecord) error {
	b, err := EncodeJSONL(records)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.w.Write(b)
	return err
}

// FileSink appends JSONL to a file, creating it on first write.
type FileSink struct {
	mu   sync.Mutex
	path string
}

func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

func (s *FileSink) Write(_ context.Context, records []entities.NoiseRecord) error {
	b, err := EncodeJSONL(records)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return fmt.Errorf("write audit log: %w", err)
	}
	return f.Close()
}

// ObjectUploader stores text objects; storage.MinIOClient satisfies it.
type ObjectUploader interface {
	UploadText(ctx context.Context, objectName string, content string) error
}

// ObjectReader fetches text objects; storage.MinIOClient satisfies it.
type ObjectReader interface {
	GetText(ctx context.Context, objectName string) (string, error)
}

// ReadObjectRecords loads the audit log ObjectSink wrote for runID. A run
// that discarded nothing has no object and yields an empty slice.
func ReadObjectRecords(ctx context.Context, r ObjectReader, runID uuid.UUID) ([]entities.NoiseRecord, error) {
	name := NoiseObjectName(runID)
	text, err := r.GetText(ctx, name)
	if errors.Is(err, repositories.ErrObjectNotFound) {
		return []entities.NoiseRecord{}, nil
	}
	if err != nil {
		return nil, err
	}

	records, err := DecodeJSONL([]byte(text))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	for i := range records {
		records[i].RunID = runID
	}
	entities.SortNoiseRecords(records)
	return records, nil
}

// NoiseObjectName is where a run's audit log lives in object storage.
func NoiseObjectName(runID uuid.UUID) string {
	return "noise/" + runID.String() + ".jsonl"
}

// ObjectSink writes each run's discarded records as one JSONL object.
type ObjectSink struct {
	uploader ObjectUploader
}

func NewObjectSink(uploader ObjectUploader) *ObjectSink {
	return &ObjectSink{uploader: uploader}
}

func (s *ObjectSink) Write(ctx context.Context, records []entities.NoiseRecord) error {
	b, err := EncodeJSONL(records)
	if err != nil {
		return err
	}
	return s.uploader.UploadText(ctx, NoiseObjectName(runIDFrom(ctx)), string(b))
}

// NoiseListKey is the Redis list holding a run's audit log.
func NoiseListKey(runID uuid.UUID) string {
	return "noise:" + runID.String()
}

// RedisSink pushes one JSON line per record onto a per-run list.
type RedisSink struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisSink creates a sink whose lists expire after ttl. Zero keeps them.
func NewRedisSink(client redis.Cmdable, ttl time.Duration) *RedisSink {
	return &RedisSink{client: client, ttl: ttl}
}

func (s *RedisSink) Write(ctx context.Context, records []entities.NoiseRecord) error {
	values := make([]interface{}, 0, len(records))
	for _, r := range records {
		b, err := json.Marshal(r)
		if err != nil {
			return err
		}
		values = append(values, string(b))
	}

	key := NoiseListKey(runIDFrom(ctx))
	pipe := s.client.Pipeline()
	pipe.RPush(ctx, key, values...)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// RepositorySink stores records through the noise record repository.
type RepositorySink struct {
	repo repositories.NoiseRecordRepository
}

func NewRepositorySink(repo repositories.NoiseRecordRepository) *RepositorySink {
	return &RepositorySink{repo: repo}
}

func (s *RepositorySink) Write(ctx context.Context, records []entities.NoiseRecord) error {
	runID := runIDFrom(ctx)
	rows := make([]entities.NoiseRecord, len(records))
	for i, r := range records {
		r.RunID = runID
		rows[i] = r
	}
	return s.repo.CreateBatch(ctx, rows)
}

// MultiSink fans a write out to every sink. All sinks are attempted, even
// after one of them panics.
type MultiSink []AuditSink

func (m MultiSink) Write(ctx context.Context, records []entities.NoiseRecord) error {
	var errs []error
	for _, s := range m {
		if err := safeWrite(ctx, s, records); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// runIDFrom returns the run ID carried by ctx, or the nil UUID.
func runIDFrom(ctx context.Context) uuid.UUID {
	id, _ := jobcontext.GetRunID(ctx)
	return id
}
