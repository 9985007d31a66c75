package services

import (
	"context"
	"time"

	"github.com/kidani/kidani-backend/internal/clients/sora"
	"github.com/kidani/kidani-backend/internal/logger"
)

// VideoGenerator drives one scene prompt through the external video API to a
// playable URL. An empty return value means the clip could not be generated
// within the configured retry and polling budgets; that decision is the
// caller's to degrade, not an error.
type VideoGenerator interface {
	GenerateClip(ctx context.Context, prompt string) string
}

type VideoGenConfig struct {
	PollInterval  time.Duration
	PollAttempts  int
	SubmitRetries int
	RetryBackoff  time.Duration
}

type videoGenService struct {
	log    *logger.Logger
	client sora.Client
	cfg    VideoGenConfig
}

func NewVideoGenService(log *logger.Logger, client sora.Client, cfg VideoGenConfig) VideoGenerator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 10 * time.Second
	}
	if cfg.PollAttempts <= 0 {
		cfg.PollAttempts = 100
	}
	if cfg.SubmitRetries <= 0 {
		cfg.SubmitRetries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 5 * time.Second
	}
	return &videoGenService{
		log:    log.With("component", "VideoGenService"),
		client: client,
		cfg:    cfg,
	}
}

// GenerateClip submits the prompt and polls the returned handle to
// completion, re-submitting from scratch with a fresh handle when a cycle
// ends without a URL. Handles are not resumable across attempts.
func (s *videoGenService) GenerateClip(ctx context.Context, prompt string) string {
	for attempt := 1; attempt <= s.cfg.SubmitRetries; attempt++ {
		if ctx.Err() != nil {
			return ""
		}

		handle, err := s.client.Submit(ctx, prompt)
		if err != nil {
			s.log.Warn("Video submission failed",
				"attempt", attempt,
				"max_attempts", s.cfg.SubmitRetries,
				"error", err,
			)
			if attempt < s.cfg.SubmitRetries {
				s.sleep(ctx, s.cfg.RetryBackoff)
			}
			continue
		}

		if url := s.pollUntilDone(ctx, handle); url != "" {
			return url
		}

		s.log.Warn("Video job ended without a result, re-submitting",
			"handle", handle,
			"attempt", attempt,
			"max_attempts", s.cfg.SubmitRetries,
		)
		if attempt < s.cfg.SubmitRetries {
			s.sleep(ctx, s.cfg.RetryBackoff)
		}
	}
	return ""
}

// pollUntilDone queries one handle at a fixed interval until a terminal
// outcome or the attempt budget runs out. Transient errors are swallowed and
// treated as still-in-progress; only an explicit upstream failure ends the
// loop early.
func (s *videoGenService) pollUntilDone(ctx context.Context, handle string) string {
	for attempt := 0; attempt < s.cfg.PollAttempts; attempt++ {
		if !s.sleep(ctx, s.cfg.PollInterval) {
			return ""
		}

		outcome, err := s.client.PollOnce(ctx, handle)
		if err != nil {
			s.log.Debug("Video poll attempt errored, continuing",
				"handle", handle,
				"attempt", attempt+1,
				"error", err,
			)
			continue
		}

		switch outcome.State {
		case sora.PollDone:
			return outcome.URL
		case sora.PollFailed:
			s.log.Warn("Video job reported terminal failure", "handle", handle, "status", outcome.Status)
			return ""
		case sora.PollInProgress:
			continue
		}
	}
	s.log.Warn("Video poll budget exhausted", "handle", handle, "attempts", s.cfg.PollAttempts)
	return ""
}

func (s *videoGenService) sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
