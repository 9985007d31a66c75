package types

import "time"

type JobStatus string

const (
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusError      JobStatus = "error"
	// JobStatusNotFound is a lookup result, never stored.
	JobStatusNotFound JobStatus = "not_found"
)

func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusError
}

type JobProgress struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Job is one lesson-generation request and its mutable status record. It is
// owned by the job store; the orchestrator mutates it only through the store.
type Job struct {
	ID        string        `json:"job_id"`
	Status    JobStatus     `json:"status"`
	Message   string        `json:"message,omitempty"`
	Progress  JobProgress   `json:"progress"`
	Data      []SceneResult `json:"data,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Scene is one titled segment of a lesson script as produced by the script
// generator. Script order is significant and preserved in the output.
type Scene struct {
	Title        string `json:"title"`
	VisualPrompt string `json:"visual_prompt"`
	Narration    string `json:"narration"`
}

type SceneResult struct {
	Title     string `json:"title"`
	Narration string `json:"narration"`
	VideoURL  string `json:"video_url"`
}

type GenerateLessonRequest struct {
	Topic     string `json:"topic" binding:"required"`
	Character string `json:"character"`
	Style     string `json:"style"`
}
