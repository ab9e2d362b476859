package session

import (
	"time"

	"github.com/alanbriolat/video-slides"
)

// Record is the history entry for one finished submission. Slides are not kept.
type Record struct {
	ID          SubmissionID            `json:"id"`
	Generation  uint64                  `json:"generation"`
	Link        string                  `json:"link"`
	Identifier  video_slides.Identifier `json:"identifier"`
	Status      Status                  `json:"status"`
	Error       string                  `json:"error,omitempty"`
	Superseded  bool                    `json:"superseded,omitempty"`
	SubmittedAt time.Time               `json:"submitted_at"`
	FinishedAt  time.Time               `json:"finished_at"`
}

// Database records finished submissions. It is write-mostly: nothing reads it back to answer a submission.
type Database interface {
	ListSubmissions() ([]Record, error)
	WriteSubmission(*Record) error
}

type NilDatabase struct{}

func (d NilDatabase) ListSubmissions() ([]Record, error) {
	return nil, nil
}

func (d NilDatabase) WriteSubmission(_ *Record) error {
	return nil
}
