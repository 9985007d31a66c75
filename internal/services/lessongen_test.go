package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/kidani/kidani-backend/internal/logger"
	"github.com/kidani/kidani-backend/internal/types"
)

type fakeScriptClient struct {
	scenes []types.Scene
	err    error
}

func (f *fakeScriptClient) GenerateScript(ctx context.Context, topic, character string) ([]types.Scene, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.scenes, nil
}

type fakeVideoGen struct {
	mu      sync.Mutex
	calls   int
	failOn  map[int]bool
	panicOn int
}

func (f *fakeVideoGen) GenerateClip(ctx context.Context, prompt string) string {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.mu.Unlock()
	if call == f.panicOn {
		panic("video generator blew up")
	}
	if f.failOn[call] {
		return ""
	}
	return "https://cdn.example.com/clip-" + strings.Repeat("x", call) + ".mp4"
}

// recordingStore observes every progress write for monotonicity checks.
type recordingStore struct {
	JobStore
	mu       sync.Mutex
	progress []int
}

func (r *recordingStore) Update(id string, mutate func(*types.Job)) {
	r.JobStore.Update(id, func(j *types.Job) {
		mutate(j)
		r.mu.Lock()
		r.progress = append(r.progress, j.Progress.Completed)
		r.mu.Unlock()
	})
}

const testPlaceholder = "https://media.example.com/placeholder.gif"

func threeScenes() []types.Scene {
	return []types.Scene{
		{Title: "Counting Apples", VisualPrompt: "a bear counting apples", Narration: "One, two, three!"},
		{Title: "Sharing Apples", VisualPrompt: "bears sharing apples", Narration: "Three apples, two bears."},
		{Title: "Recap", VisualPrompt: "bears waving goodbye", Narration: "Great job!"},
	}
}

func testLessonGen(t *testing.T, store JobStore, script *fakeScriptClient, video *fakeVideoGen) LessonGenService {
	t.Helper()
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return NewLessonGenService(log, store, script, video, nil, testPlaceholder)
}

func waitForTerminal(t *testing.T, store JobStore, id string) types.Job {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		job, ok := store.Get(id)
		if ok && job.Status.Terminal() {
			return job
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("job %s never reached a terminal state", id)
	return types.Job{}
}

func TestRun_PerSceneFailureDegradesToPlaceholder(t *testing.T) {
	store := NewMemoryJobStore()
	video := &fakeVideoGen{failOn: map[int]bool{2: true}}
	svc := testLessonGen(t, store, &fakeScriptClient{scenes: threeScenes()}, video)

	job := svc.StartGeneration(types.GenerateLessonRequest{Topic: "addition"})
	final := waitForTerminal(t, store, job.ID)

	if final.Status != types.JobStatusCompleted {
		t.Fatalf("expected completed, got %q (%s)", final.Status, final.Message)
	}
	if len(final.Data) != 3 {
		t.Fatalf("expected 3 scene results, got %d", len(final.Data))
	}
	if final.Data[1].VideoURL != testPlaceholder {
		t.Fatalf("expected placeholder for failed scene, got %q", final.Data[1].VideoURL)
	}
	if final.Data[0].VideoURL == testPlaceholder || final.Data[2].VideoURL == testPlaceholder {
		t.Fatalf("healthy scenes must keep their real urls: %+v", final.Data)
	}
	for i, scene := range threeScenes() {
		if final.Data[i].Title != scene.Title {
			t.Fatalf("scene order not preserved at %d: %q", i, final.Data[i].Title)
		}
	}
}

func TestRun_ScriptFailureIsJobFatal(t *testing.T) {
	store := NewMemoryJobStore()
	svc := testLessonGen(t, store, &fakeScriptClient{err: errors.New("deepseek unreachable")}, &fakeVideoGen{})

	job := svc.StartGeneration(types.GenerateLessonRequest{Topic: "fractions"})
	final := waitForTerminal(t, store, job.ID)

	if final.Status != types.JobStatusError {
		t.Fatalf("expected error, got %q", final.Status)
	}
	if final.Data != nil {
		t.Fatalf("expected no data on fatal failure, got %v", final.Data)
	}
	if !strings.Contains(final.Message, "script generation failed") {
		t.Fatalf("expected failure message to name the step, got %q", final.Message)
	}
}

func TestRun_PanicBecomesJobError(t *testing.T) {
	store := NewMemoryJobStore()
	svc := testLessonGen(t, store, &fakeScriptClient{scenes: threeScenes()}, &fakeVideoGen{panicOn: 2})

	job := svc.StartGeneration(types.GenerateLessonRequest{Topic: "shapes"})
	final := waitForTerminal(t, store, job.ID)

	if final.Status != types.JobStatusError {
		t.Fatalf("expected error after panic, got %q", final.Status)
	}
	if final.Data != nil {
		t.Fatalf("partial results must be discarded, got %v", final.Data)
	}
	if !strings.Contains(final.Message, "internal error") {
		t.Fatalf("expected internal error message, got %q", final.Message)
	}
}

func TestRun_ProgressIsMonotonic(t *testing.T) {
	store := &recordingStore{JobStore: NewMemoryJobStore()}
	log, err := logger.New("development")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	svc := NewLessonGenService(log, store, &fakeScriptClient{scenes: threeScenes()}, &fakeVideoGen{}, nil, testPlaceholder)

	job := svc.StartGeneration(types.GenerateLessonRequest{Topic: "subtraction"})
	final := waitForTerminal(t, store, job.ID)

	if final.Status != types.JobStatusCompleted {
		t.Fatalf("expected completed, got %q", final.Status)
	}
	if final.Progress.Completed != 3 || final.Progress.Total != 3 {
		t.Fatalf("expected final progress 3/3, got %d/%d", final.Progress.Completed, final.Progress.Total)
	}

	store.mu.Lock()
	observed := append([]int(nil), store.progress...)
	store.mu.Unlock()
	last := 0
	for i, p := range observed {
		if p < last {
			t.Fatalf("progress regressed at write %d: %v", i, observed)
		}
		last = p
	}
	if last != 3 {
		t.Fatalf("expected progress to end at 3, got %d", last)
	}
}

func TestStartGeneration_ReturnsImmediatelyInProcessing(t *testing.T) {
	store := NewMemoryJobStore()
	svc := testLessonGen(t, store, &fakeScriptClient{scenes: threeScenes()}, &fakeVideoGen{})

	job := svc.StartGeneration(types.GenerateLessonRequest{Topic: "division"})
	if job.ID == "" {
		t.Fatalf("expected a job id")
	}
	if job.Status != types.JobStatusProcessing {
		t.Fatalf("expected processing at submit time, got %q", job.Status)
	}
	waitForTerminal(t, store, job.ID)
}
