package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/alanbriolat/video-slides"
	"github.com/alanbriolat/video-slides/generic"
	"github.com/alanbriolat/video-slides/internal/sync_"
)

type SubmissionID string

func NewSubmissionID() SubmissionID {
	return SubmissionID(generic.Unwrap(uuid.NewRandom()).String())
}

// A Submission is one call to Session.Submit. It always ends in Succeeded or Failed, even if a newer submission
// replaced it as the visible state.
type Submission struct {
	ID          SubmissionID
	Generation  uint64
	Link        string
	Identifier  video_slides.Identifier
	SubmittedAt time.Time

	mu         sync.Mutex
	state      State
	finishedAt time.Time
	superseded bool
	done       sync_.Event
}

func newSubmission(link string) *Submission {
	return &Submission{
		ID:          NewSubmissionID(),
		Link:        link,
		SubmittedAt: time.Now(),
		state:       Idle{},
	}
}

func (s *Submission) String() string {
	return fmt.Sprintf("Submission{ID:\"%s\", Generation:%d, Link:\"%s\"}", s.ID, s.Generation, s.Link)
}

// State is Loading until the submission finishes.
func (s *Submission) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Superseded returns true if a newer submission was started before this one finished.
func (s *Submission) Superseded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.superseded
}

func (s *Submission) Done() <-chan struct{} {
	return s.done.Wait()
}

// Wait blocks until the submission finishes, returning its final state.
func (s *Submission) Wait() State {
	<-s.Done()
	return s.State()
}

func (s *Submission) Record() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := Record{
		ID:          s.ID,
		Generation:  s.Generation,
		Link:        s.Link,
		Identifier:  s.Identifier,
		Status:      s.state.Status(),
		Superseded:  s.superseded,
		SubmittedAt: s.SubmittedAt,
		FinishedAt:  s.finishedAt,
	}
	if failed, ok := s.state.(Failed); ok {
		r.Error = failed.Message
	}
	return r
}

func (s *Submission) setState(state State) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
}

// settle fixes the final state without yet releasing waiters, so the history record can be written first.
func (s *Submission) settle(state State, superseded bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.superseded = superseded
	s.finishedAt = time.Now()
}

func (s *Submission) finish(state State, superseded bool) {
	s.settle(state, superseded)
	s.done.Set()
}
