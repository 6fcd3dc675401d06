package moderation_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"marketplace-server/services/moderation-api/internal/config"
	"marketplace-server/services/moderation-api/internal/domain/moderation"
	"marketplace-server/services/moderation-api/internal/domain/submission"
	"marketplace-server/services/moderation-api/utils/submissionid"
)

var (
	safeVerdict = moderation.SafetyVerdict{
		Adult:    moderation.VeryUnlikely,
		Violence: moderation.VeryUnlikely,
		Racy:     moderation.Unlikely,
	}
	unsafeVerdict = moderation.SafetyVerdict{
		Adult:    moderation.Possible,
		Violence: moderation.VeryUnlikely,
		Racy:     moderation.Unlikely,
	}
)

type finalizeCall struct {
	id  string
	upd submission.StatusUpdate
}

// pipelineFixture implements Records, Blobs and Classifier, recording the
// order of side effects in ops.
type pipelineFixture struct {
	ops []string

	updates      []finalizeCall
	finalizeErrs []error
	applied      bool

	data      []byte
	fetchErr  error
	deleteErr error
	urlErr    error

	verdict       moderation.SafetyVerdict
	classifyErr   error
	classifyCalls int
}

func (f *pipelineFixture) Finalize(ctx context.Context, id string, upd submission.StatusUpdate) (bool, error) {
	if len(f.finalizeErrs) > 0 {
		err := f.finalizeErrs[0]
		f.finalizeErrs = f.finalizeErrs[1:]
		if err != nil {
			return false, err
		}
	}
	f.ops = append(f.ops, "finalize:"+string(upd.Status))
	f.updates = append(f.updates, finalizeCall{id: id, upd: upd})
	return f.applied, nil
}

func (f *pipelineFixture) FetchBytes(ctx context.Context, key string) ([]byte, error) {
	f.ops = append(f.ops, "fetch")
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.data, nil
}

func (f *pipelineFixture) Delete(ctx context.Context, key string) error {
	f.ops = append(f.ops, "delete")
	return f.deleteErr
}

func (f *pipelineFixture) ResolvePublicURL(ctx context.Context, key string) (string, error) {
	f.ops = append(f.ops, "resolve")
	if f.urlErr != nil {
		return "", f.urlErr
	}
	return "https://cdn.example.com/" + key, nil
}

func (f *pipelineFixture) Classify(ctx context.Context, image []byte) (moderation.SafetyVerdict, error) {
	f.ops = append(f.ops, "classify")
	f.classifyCalls++
	if f.classifyErr != nil {
		return moderation.SafetyVerdict{}, f.classifyErr
	}
	return f.verdict, nil
}

func newPipelineFixture(verdict moderation.SafetyVerdict) (*moderation.Pipeline, *pipelineFixture) {
	cfg := &config.Config{UploadPrefix: "uploads/"}
	fixture := &pipelineFixture{
		applied: true,
		data:    []byte("image-bytes"),
		verdict: verdict,
	}
	pipeline := moderation.NewPipeline(cfg, fixture, fixture, fixture, zerolog.Nop())
	return pipeline, fixture
}

func imageEvent() submission.ObjectFinalized {
	return submission.ObjectFinalized{
		Key:         submission.ObjectKey("uploads/", submissionid.New(), "jpg"),
		ContentType: "image/jpeg",
		Bucket:      "listings",
	}
}

func TestPipeline_ApprovesSafeImage(t *testing.T) {
	pipeline, fixture := newPipelineFixture(safeVerdict)
	ev := imageEvent()

	outcome := pipeline.Process(context.Background(), ev)

	if outcome != moderation.OutcomeApproved {
		t.Fatalf("outcome = %v, want approved", outcome)
	}
	if len(fixture.updates) != 1 {
		t.Fatalf("finalize calls = %d, want 1", len(fixture.updates))
	}
	upd := fixture.updates[0].upd
	if upd.Status != submission.StatusApproved {
		t.Errorf("status = %q, want approved", upd.Status)
	}
	if upd.PublicURL == "" {
		t.Error("approved update carries no public url")
	}
	for _, op := range fixture.ops {
		if op == "delete" {
			t.Error("approved image was deleted")
		}
	}
}

func TestPipeline_RejectsUnsafeImage(t *testing.T) {
	pipeline, fixture := newPipelineFixture(unsafeVerdict)
	ev := imageEvent()

	outcome := pipeline.Process(context.Background(), ev)

	if outcome != moderation.OutcomeRejected {
		t.Fatalf("outcome = %v, want rejected", outcome)
	}
	upd := fixture.updates[0].upd
	if upd.Status != submission.StatusRejected {
		t.Errorf("status = %q, want rejected", upd.Status)
	}
	if upd.Reason != moderation.RejectionReason {
		t.Errorf("reason = %q, want %q", upd.Reason, moderation.RejectionReason)
	}

	// The blob must be gone before the record says so.
	want := []string{"fetch", "classify", "delete", "finalize:rejected"}
	if len(fixture.ops) != len(want) {
		t.Fatalf("ops = %v, want %v", fixture.ops, want)
	}
	for i := range want {
		if fixture.ops[i] != want[i] {
			t.Fatalf("ops = %v, want %v", fixture.ops, want)
		}
	}
}

func TestPipeline_SkipsNonImage(t *testing.T) {
	pipeline, fixture := newPipelineFixture(safeVerdict)
	ev := imageEvent()
	ev.ContentType = "application/pdf"

	outcome := pipeline.Process(context.Background(), ev)

	if outcome != moderation.OutcomeSkipped {
		t.Fatalf("outcome = %v, want skipped", outcome)
	}
	if len(fixture.ops) != 0 {
		t.Errorf("non-image event caused side effects: %v", fixture.ops)
	}
}

func TestPipeline_SkipsForeignKey(t *testing.T) {
	pipeline, fixture := newPipelineFixture(safeVerdict)
	ev := submission.ObjectFinalized{
		Key:         "uploads/backup.tar.gz",
		ContentType: "image/jpeg",
		Bucket:      "listings",
	}

	outcome := pipeline.Process(context.Background(), ev)

	if outcome != moderation.OutcomeSkipped {
		t.Fatalf("outcome = %v, want skipped", outcome)
	}
	if len(fixture.ops) != 0 {
		t.Errorf("foreign key caused side effects: %v", fixture.ops)
	}
}

func TestPipeline_FailureWritesFailedStatus(t *testing.T) {
	tests := []struct {
		name        string
		prepare     func(f *pipelineFixture)
		wantOpsTail string
	}{
		{
			"fetch failure",
			func(f *pipelineFixture) { f.fetchErr = errors.New("connection reset") },
			"finalize:failed",
		},
		{
			"classifier failure",
			func(f *pipelineFixture) { f.classifyErr = errors.New("503 backend error") },
			"finalize:failed",
		},
		{
			"url resolution failure",
			func(f *pipelineFixture) { f.urlErr = errors.New("no endpoint configured") },
			"finalize:failed",
		},
		{
			"delete failure",
			func(f *pipelineFixture) {
				f.verdict = unsafeVerdict
				f.deleteErr = errors.New("permission denied")
			},
			"finalize:failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline, fixture := newPipelineFixture(safeVerdict)
			tt.prepare(fixture)

			outcome := pipeline.Process(context.Background(), imageEvent())

			if outcome != moderation.OutcomeFailed {
				t.Fatalf("outcome = %v, want failed", outcome)
			}
			if len(fixture.updates) != 1 {
				t.Fatalf("finalize calls = %d, want exactly 1", len(fixture.updates))
			}
			upd := fixture.updates[0].upd
			if upd.Status != submission.StatusFailed {
				t.Errorf("status = %q, want failed", upd.Status)
			}
			if upd.Error == "" {
				t.Error("failed update carries no diagnostic")
			}
			if last := fixture.ops[len(fixture.ops)-1]; last != tt.wantOpsTail {
				t.Errorf("last op = %q, want %q", last, tt.wantOpsTail)
			}
		})
	}
}

func TestPipeline_TerminalWriteFailureFallsBack(t *testing.T) {
	pipeline, fixture := newPipelineFixture(safeVerdict)
	// The approval write fails; the single best-effort failed write succeeds.
	fixture.finalizeErrs = []error{errors.New("record store unreachable")}

	outcome := pipeline.Process(context.Background(), imageEvent())

	if outcome != moderation.OutcomeFailed {
		t.Fatalf("outcome = %v, want failed", outcome)
	}
	if len(fixture.updates) != 1 || fixture.updates[0].upd.Status != submission.StatusFailed {
		t.Fatalf("updates = %+v, want a single failed write", fixture.updates)
	}
	if !strings.Contains(fixture.updates[0].upd.Error, "record approval") {
		t.Errorf("diagnostic %q does not name the failing step", fixture.updates[0].upd.Error)
	}
}

func TestPipeline_FailedWriteFailureIsContained(t *testing.T) {
	pipeline, fixture := newPipelineFixture(safeVerdict)
	fixture.fetchErr = errors.New("connection reset")
	fixture.finalizeErrs = []error{errors.New("record store unreachable")}

	// Must not panic or propagate; the failure is logged and dropped.
	outcome := pipeline.Process(context.Background(), imageEvent())

	if outcome != moderation.OutcomeFailed {
		t.Fatalf("outcome = %v, want failed", outcome)
	}
	if len(fixture.updates) != 0 {
		t.Errorf("updates = %+v, want none recorded", fixture.updates)
	}
}

func TestPipeline_RedeliveredEventIsHarmless(t *testing.T) {
	pipeline, fixture := newPipelineFixture(safeVerdict)
	ev := imageEvent()

	if outcome := pipeline.Process(context.Background(), ev); outcome != moderation.OutcomeApproved {
		t.Fatalf("first outcome = %v, want approved", outcome)
	}

	// The record is now terminal: the guarded update applies to nothing.
	fixture.applied = false
	if outcome := pipeline.Process(context.Background(), ev); outcome != moderation.OutcomeStale {
		t.Fatalf("second outcome = %v, want stale", outcome)
	}
	if len(fixture.updates) != 2 {
		t.Fatalf("finalize calls = %d, want 2 (second a no-op)", len(fixture.updates))
	}
}
