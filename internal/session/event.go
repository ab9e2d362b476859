package session

type Event interface {
	// The Submission this event relates to (nil if the Session was idle).
	Submission() *Submission
}

type submissionEvent struct {
	submission *Submission
}

func (e submissionEvent) Submission() *Submission {
	return e.submission
}

// StateChanged is sent every time the visible state of the Session is replaced, in the order the changes happened.
type StateChanged struct {
	submissionEvent
	Old   Snapshot
	New   Snapshot
	State State
}

// SubmissionDiscarded is sent when a submission finishes after a newer one was started, so its result never became
// visible.
type SubmissionDiscarded struct {
	submissionEvent
	State State
}
