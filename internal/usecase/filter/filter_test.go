package filter

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/johnquangdev/meeting-filter/internal/domain/entities"
	"github.com/johnquangdev/meeting-filter/internal/domain/repositories"
	"github.com/johnquangdev/meeting-filter/pkg/jobcontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func labeled(key, speaker, text string, label entities.Label, conf float64) entities.Triplet {
	t := entities.Triplet{
		Timestamp: "00:00:0" + key[:1],
		OrderKey:  key,
		Speaker:   speaker,
		Target:    entities.WrapTarget(text),
	}
	t.Apply(entities.ClassificationResult{Label: label, Confidence: conf})
	return t
}

func sample() []entities.Triplet {
	return []entities.Triplet{
		labeled("1-1", "s1", "Hi everyone", entities.LabelNoise, 0.9),
		labeled("2-1", "s1", "Let's begin", entities.LabelNoise, 0.8),
		labeled("3-1", "s2", "We need the API done by Friday", entities.LabelImportant, 0.95),
		labeled("4-1", "s1", "ok great", entities.LabelNoise, 0.7),
		labeled("5-1", "s1", "thanks bye", entities.LabelNoise, 0.6),
	}
}

type memorySink struct {
	records []entities.NoiseRecord
	err     error
}

func (m *memorySink) Write(_ context.Context, records []entities.NoiseRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, records...)
	return nil
}

func TestFilter_KeepsImportantInOrder(t *testing.T) {
	in := []entities.Triplet{
		labeled("1-1", "A", "first", entities.LabelImportant, 0.9),
		labeled("1-2", "A", "um", entities.LabelNoise, 0.9),
		labeled("2-1", "B", "second", entities.LabelImportant, 0.9),
		labeled("3-1", "A", "third", entities.LabelImportant, 0.9),
	}
	res := NewStage(zaptest.NewLogger(t), nil).Filter(context.Background(), in, nil)

	keys := make([]string, len(res.Kept))
	for i, k := range res.Kept {
		keys[i] = k.OrderKey
	}
	assert.Equal(t, []string{"1-1", "2-1", "3-1"}, keys)
	assert.Equal(t, "first", res.Kept[0].Text)
	assert.Equal(t, "first second third", FilteredText(res.Kept))
}

func TestFilter_AuditReceivesEveryDiscard(t *testing.T) {
	runID := uuid.New()
	ctx, cancel := jobcontext.RunBegin(context.Background(), runID, "filter", 0)
	defer cancel()

	sink := &memorySink{}
	res := NewStage(nil, nil).Filter(ctx, sample(), sink)

	require.Len(t, sink.records, 4)
	for i, want := range []struct{ speaker, text string }{
		{"s1", "Hi everyone"}, {"s1", "Let's begin"}, {"s1", "ok great"}, {"s1", "thanks bye"},
	} {
		assert.Equal(t, want.speaker, sink.records[i].Speaker)
		assert.Equal(t, want.text, sink.records[i].Text)
		assert.Equal(t, entities.LabelNoise, sink.records[i].Label)
		assert.Equal(t, runID, sink.records[i].RunID)
	}
	assert.Equal(t, "00:00:01", sink.records[0].Timestamp)
	assert.Equal(t, sink.records, res.Discarded)
}

func TestFilter_Stats(t *testing.T) {
	res := NewStage(nil, nil).Filter(context.Background(), sample(), nil)

	assert.Equal(t, 5, res.Stats.TotalTriplets)
	assert.Equal(t, 1, res.Stats.Kept)
	assert.Equal(t, 4, res.Stats.Discarded)
	assert.InDelta(t, 0.8, res.Stats.NoiseRatio, 1e-9)
	assert.InDelta(t, (0.9+0.8+0.95+0.7+0.6)/5, res.Stats.AvgConfidence, 1e-9)
	assert.True(t, res.Stats.ClassifierAvailable)
	assert.False(t, res.Stats.AuditFailed)
}

func TestFilter_EmptyInput(t *testing.T) {
	res := NewStage(nil, nil).Filter(context.Background(), nil, &memorySink{})
	assert.Empty(t, res.Kept)
	assert.Zero(t, res.Stats.NoiseRatio)
	assert.Zero(t, res.Stats.AvgConfidence)
}

func TestFilter_SinkFailureDoesNotFailFiltering(t *testing.T) {
	sink := &memorySink{err: errors.New("disk full")}
	res := NewStage(zaptest.NewLogger(t), nil).Filter(context.Background(), sample(), sink)

	require.Len(t, res.Kept, 1)
	assert.Equal(t, "We need the API done by Friday", res.Kept[0].Text)
	assert.True(t, res.Stats.AuditFailed)
}

func TestFilter_SinkPanicIsReportedAsAuditFailure(t *testing.T) {
	sink := NewObjectSink(nil)
	var res Result
	require.NotPanics(t, func() {
		res = NewStage(zaptest.NewLogger(t), nil).Filter(context.Background(), sample(), sink)
	})

	require.Len(t, res.Kept, 1)
	assert.Equal(t, "We need the API done by Friday", res.Kept[0].Text)
	assert.Len(t, res.Discarded, 4)
	assert.True(t, res.Stats.AuditFailed)
}

func TestFilter_UnlabeledIsKept(t *testing.T) {
	in := []entities.Triplet{{OrderKey: "1-1", Target: entities.WrapTarget("pending")}}
	res := NewStage(nil, nil).Filter(context.Background(), in, nil)

	require.Len(t, res.Kept, 1)
	assert.Equal(t, 1, res.Stats.Unlabeled)
}

func TestPassThrough(t *testing.T) {
	utts := []entities.Utterance{
		{Timestamp: "00:00:00", OrderKey: "1-1", Speaker: "A", Text: "Hi."},
		{Timestamp: "00:00:01", OrderKey: "2-1", Speaker: "B", Text: "Ship it."},
	}
	res := PassThrough(utts)
	assert.Equal(t, "Hi. Ship it.", FilteredText(res.Kept))
	assert.False(t, res.Stats.ClassifierAvailable)
	assert.Equal(t, 2, res.Stats.Unlabeled)
	assert.Zero(t, res.Stats.Discarded)
}

func TestFileSink_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "noise_log.jsonl")
	sink := NewFileSink(path)
	records := NewStage(nil, nil).Filter(context.Background(), sample(), nil).Discarded

	require.NoError(t, sink.Write(context.Background(), records[:1]))
	require.NoError(t, sink.Write(context.Background(), records[1:]))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, bytes.Count(data, []byte("\n")))

	decoded, err := DecodeJSONL(data)
	require.NoError(t, err)
	require.Len(t, decoded, 4)
	assert.Equal(t, "thanks bye", decoded[3].Text)
	assert.Equal(t, records[3].OrderKey, decoded[3].OrderKey)
}

func TestWriterSink_LineFormat(t *testing.T) {
	var buf bytes.Buffer
	rec := entities.NoiseRecord{Timestamp: "00:00:03", OrderKey: "3-1", Speaker: "B", Text: "a & b", Label: entities.LabelNoise, Confidence: 0.75}
	require.NoError(t, NewWriterSink(&buf).Write(context.Background(), []entities.NoiseRecord{rec}))

	assert.Equal(t,
		`{"timestamp":"00:00:03","order_key":"3-1","speaker":"B","text":"a & b","label":1,"confidence":0.75}`+"\n",
		buf.String())
}

type fakeUploader struct {
	objects map[string]string
}

func (f *fakeUploader) UploadText(_ context.Context, name, content string) error {
	f.objects[name] = content
	return nil
}

func (f *fakeUploader) GetText(_ context.Context, name string) (string, error) {
	content, ok := f.objects[name]
	if !ok {
		return "", fmt.Errorf("%s: %w", name, repositories.ErrObjectNotFound)
	}
	return content, nil
}

func TestObjectSink(t *testing.T) {
	runID := uuid.New()
	ctx, cancel := jobcontext.RunBegin(context.Background(), runID, "filter", 0)
	defer cancel()

	up := &fakeUploader{objects: map[string]string{}}
	records := NewStage(nil, nil).Filter(context.Background(), sample(), nil).Discarded
	require.NoError(t, NewObjectSink(up).Write(ctx, records))

	content, ok := up.objects["noise/"+runID.String()+".jsonl"]
	require.True(t, ok)
	decoded, err := DecodeJSONL([]byte(content))
	require.NoError(t, err)
	assert.Len(t, decoded, 4)
}

func TestReadObjectRecords(t *testing.T) {
	runID := uuid.New()
	ctx, cancel := jobcontext.RunBegin(context.Background(), runID, "filter", 0)
	defer cancel()

	up := &fakeUploader{objects: map[string]string{}}
	records := NewStage(nil, nil).Filter(context.Background(), sample(), nil).Discarded
	require.NoError(t, NewObjectSink(up).Write(ctx, []entities.NoiseRecord{records[3], records[0], records[2], records[1]}))

	got, err := ReadObjectRecords(context.Background(), up, runID)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, "1-1", got[0].OrderKey)
	assert.Equal(t, "5-1", got[3].OrderKey)
	assert.Equal(t, runID, got[0].RunID)

	got, err = ReadObjectRecords(context.Background(), up, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	broken := uuid.New()
	up.objects[NoiseObjectName(broken)] = "{not json\n"
	_, err = ReadObjectRecords(context.Background(), up, broken)
	require.Error(t, err)
	assert.Contains(t, err.Error(), NoiseObjectName(broken))
}

type fakeNoiseRepo struct {
	rows []entities.NoiseRecord
}

func (f *fakeNoiseRepo) CreateBatch(_ context.Context, records []entities.NoiseRecord) error {
	f.rows = append(f.rows, records...)
	return nil
}
func (f *fakeNoiseRepo) FindByRunID(context.Context, uuid.UUID) ([]entities.NoiseRecord, error) {
	return f.rows, nil
}
func (f *fakeNoiseRepo) CountByRunID(context.Context, uuid.UUID) (int64, error) {
	return int64(len(f.rows)), nil
}

func TestRepositorySink_StampsRunID(t *testing.T) {
	runID := uuid.New()
	ctx, cancel := jobcontext.RunBegin(context.Background(), runID, "filter", 0)
	defer cancel()

	repo := &fakeNoiseRepo{}
	require.NoError(t, NewRepositorySink(repo).Write(ctx, []entities.NoiseRecord{{Text: "um"}}))
	require.Len(t, repo.rows, 1)
	assert.Equal(t, runID, repo.rows[0].RunID)
}

func TestMultiSink_AttemptsAllAndJoinsErrors(t *testing.T) {
	ok := &memorySink{}
	bad := &memorySink{err: errors.New("redis down")}
	multi := MultiSink{bad, ok}

	err := multi.Write(context.Background(), []entities.NoiseRecord{{Text: "um"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis down")
	assert.Len(t, ok.records, 1)
}

func TestMultiSink_SurvivesPanickingSink(t *testing.T) {
	ok := &memorySink{}
	multi := MultiSink{NewObjectSink(nil), ok}

	err := multi.Write(context.Background(), []entities.NoiseRecord{{Text: "um"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit sink panicked")
	assert.Len(t, ok.records, 1)
}
