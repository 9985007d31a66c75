package services

import (
	"context"
	"fmt"

	"github.com/kidani/kidani-backend/internal/clients/deepseek"
	"github.com/kidani/kidani-backend/internal/logger"
	"github.com/kidani/kidani-backend/internal/sse"
	"github.com/kidani/kidani-backend/internal/types"
)

// LessonGenService owns the end-to-end job: script generation, per-scene
// video generation, and every job-store write. StartGeneration returns as
// soon as the record exists; the pipeline runs on its own goroutine and is
// the record's single writer until it reaches a terminal state.
type LessonGenService interface {
	StartGeneration(req types.GenerateLessonRequest) types.Job
	GetJob(id string) (types.Job, bool)
}

type lessonGenService struct {
	log            *logger.Logger
	store          JobStore
	script         deepseek.Client
	video          VideoGenerator
	hub            *sse.Hub
	placeholderURL string
}

func NewLessonGenService(log *logger.Logger, store JobStore, script deepseek.Client, video VideoGenerator, hub *sse.Hub, placeholderURL string) LessonGenService {
	return &lessonGenService{
		log:            log.With("component", "LessonGenService"),
		store:          store,
		script:         script,
		video:          video,
		hub:            hub,
		placeholderURL: placeholderURL,
	}
}

func (s *lessonGenService) StartGeneration(req types.GenerateLessonRequest) types.Job {
	if req.Character == "" {
		req.Character = DefaultCharacter
	}
	if req.Style == "" {
		req.Style = DefaultStyle
	}

	job := s.store.Create()
	s.log.Info("Lesson generation queued", "job_id", job.ID, "topic", req.Topic)

	go s.run(context.Background(), job.ID, req)

	return job
}

func (s *lessonGenService) GetJob(id string) (types.Job, bool) {
	return s.store.Get(id)
}

// run drives one job to a terminal state. Scene-level video failures degrade
// to a placeholder URL and never abort the job; anything else that escapes a
// component boundary fails the whole job, discarding partial results.
func (s *lessonGenService) run(ctx context.Context, jobID string, req types.GenerateLessonRequest) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Lesson pipeline panicked", "job_id", jobID, "panic", r)
			s.fail(jobID, fmt.Errorf("internal error: %v", r))
		}
	}()

	s.setMessage(jobID, "planning the lesson script")

	scenes, err := s.script.GenerateScript(ctx, req.Topic, req.Character)
	if err != nil {
		s.log.Error("Script generation failed", "job_id", jobID, "error", err)
		s.fail(jobID, fmt.Errorf("script generation failed: %w", err))
		return
	}

	total := len(scenes)
	s.store.Update(jobID, func(j *types.Job) {
		j.Progress = types.JobProgress{Completed: 0, Total: total}
	})

	characterDesc := CharacterDescription(req.Character)
	results := make([]types.SceneResult, 0, total)

	for i, scene := range scenes {
		s.store.Update(jobID, func(j *types.Job) {
			j.Progress = types.JobProgress{Completed: i, Total: total}
			j.Message = fmt.Sprintf("rendering scene %d of %d: %s", i+1, total, scene.Title)
		})
		s.publish(jobID, sse.EventJobProgress)

		prompt := BuildScenePrompt(req.Style, characterDesc, scene.VisualPrompt)
		url := s.video.GenerateClip(ctx, prompt)
		if url == "" {
			s.log.Warn("Scene video exhausted retries, using placeholder", "job_id", jobID, "scene", i+1)
			url = s.placeholderURL
		}

		results = append(results, types.SceneResult{
			Title:     scene.Title,
			Narration: scene.Narration,
			VideoURL:  url,
		})

		s.store.Update(jobID, func(j *types.Job) {
			j.Progress = types.JobProgress{Completed: i + 1, Total: total}
		})
		s.publish(jobID, sse.EventJobProgress)
	}

	s.store.Update(jobID, func(j *types.Job) {
		j.Status = types.JobStatusCompleted
		j.Message = "lesson ready"
		j.Data = results
	})
	s.publish(jobID, sse.EventJobCompleted)
	s.log.Info("Lesson generation completed", "job_id", jobID, "scenes", total)
}

func (s *lessonGenService) setMessage(jobID, msg string) {
	s.store.Update(jobID, func(j *types.Job) {
		j.Message = msg
	})
	s.publish(jobID, sse.EventJobProgress)
}

func (s *lessonGenService) fail(jobID string, err error) {
	// A job enters a terminal state exactly once; a late panic after
	// completion must not overwrite the finished record.
	if job, ok := s.store.Get(jobID); ok && job.Status.Terminal() {
		return
	}
	s.store.Update(jobID, func(j *types.Job) {
		j.Status = types.JobStatusError
		j.Message = err.Error()
		j.Data = nil
	})
	s.publish(jobID, sse.EventJobFailed)
}

func (s *lessonGenService) publish(jobID string, event sse.Event) {
	if s.hub == nil {
		return
	}
	job, ok := s.store.Get(jobID)
	if !ok {
		return
	}
	s.hub.Broadcast(sse.Message{
		Channel: sse.JobChannel(jobID),
		Event:   event,
		Data:    job,
	})
}
