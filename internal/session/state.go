package session

import (
	"github.com/alanbriolat/video-slides"
	"github.com/alanbriolat/video-slides/generic"
	"github.com/alanbriolat/video-slides/internal/slides"
)

type Status string

const (
	StatusIdle      Status = "idle"
	StatusLoading   Status = "loading"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
)

var terminalStatuses = generic.NewSet(
	StatusSucceeded,
	StatusFailed,
)

// IsTerminal returns true if nothing will move a submission out of this status.
func (s Status) IsTerminal() bool {
	return terminalStatuses.Contains(s)
}

func (s Status) String() string {
	return string(s)
}

// State is the visible state of a Session, which is exactly one of Idle, Loading, Succeeded or Failed.
type State interface {
	Status() Status
	isState()
}

type Idle struct{}

type Loading struct {
	Identifier video_slides.Identifier
}

type Succeeded struct {
	Identifier video_slides.Identifier
	Slides     slides.Slides
	Comment    string
}

type Failed struct {
	// Message is meant for the user.
	Message string
	Err     error
}

func (Idle) Status() Status      { return StatusIdle }
func (Loading) Status() Status   { return StatusLoading }
func (Succeeded) Status() Status { return StatusSucceeded }
func (Failed) Status() Status    { return StatusFailed }

func (Idle) isState()      {}
func (Loading) isState()   {}
func (Succeeded) isState() {}
func (Failed) isState()    {}

// Snapshot is a flat, comparable view of a State plus the submission that produced it, for rendering and diffing.
type Snapshot struct {
	SubmissionID SubmissionID
	Generation   uint64
	Link         string
	Status       Status
	Identifier   video_slides.Identifier
	Message      string
	Comment      string
}

func newSnapshot(sub *Submission, state State) Snapshot {
	snap := Snapshot{Status: StatusIdle}
	if sub != nil {
		snap.SubmissionID = sub.ID
		snap.Generation = sub.Generation
		snap.Link = sub.Link
		snap.Identifier = sub.Identifier
	}
	switch st := state.(type) {
	case Loading:
		snap.Status = StatusLoading
		snap.Identifier = st.Identifier
	case Succeeded:
		snap.Status = StatusSucceeded
		snap.Identifier = st.Identifier
		snap.Comment = st.Comment
	case Failed:
		snap.Status = StatusFailed
		snap.Message = st.Message
	}
	return snap
}
