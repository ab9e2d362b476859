package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alanbriolat/video-slides"
	"github.com/alanbriolat/video-slides/internal/slides"
)

const (
	MessageEmptyLink   = "Please enter a valid YouTube link."
	MessageInvalidLink = "Invalid YouTube link. Please try again."
	MessageClosed      = "The session is closed."
)

var (
	ErrEmptyLink     = errors.New("empty link")
	ErrInvalidLink   = errors.New("invalid link")
	ErrSessionClosed = errors.New("session closed")
)

// failedPhase builds the user-facing failure for one of the two backend calls.
func failedPhase(phase slides.Phase, err error) Failed {
	return Failed{
		Message: fmt.Sprintf("Failed to generate %s: %v", phase, err),
		Err:     err,
	}
}

// Submit starts a new submission for link, making it the visible one. Validation happens before Submit returns, so
// an empty or unrecognised link is already Failed, and never reaches the backend. Otherwise the submission is
// Loading and the backend calls run in the background; use Submission.Wait or Subscribe to see the outcome.
func (s *Session) Submit(link string) *Submission {
	sub := newSubmission(link)
	log := s.log.With("submission_id", sub.ID)

	var state State
	if id, err := Extract(s.config.ProviderRegistry, link); errors.Is(err, ErrEmptyLink) {
		state = Failed{Message: MessageEmptyLink, Err: err}
	} else if err != nil {
		state = Failed{Message: MessageInvalidLink, Err: err}
	} else {
		sub.Identifier = id
		state = Loading{Identifier: id}
	}
	sub.setState(state)

	err := s.current.Locked(func(v *visible) error {
		if v.closed {
			return ErrSessionClosed
		}
		v.generation++
		sub.Generation = v.generation
		s.apply(v, sub, state)
		if _, ok := state.(Loading); ok {
			s.workers.Add(1)
			go s.run(sub)
		}
		return nil
	})
	if err != nil {
		sub.finish(Failed{Message: MessageClosed, Err: err}, false)
		return sub
	}

	if loading, ok := state.(Loading); ok {
		log.Infow("submission started", "generation", sub.Generation, "identifier", loading.Identifier)
	} else {
		log.Infow("submission rejected", "generation", sub.Generation, "error", state.(Failed).Err)
		sub.finish(state, false)
	}
	return sub
}

// run performs the backend calls for a Loading submission. Whatever happens, including a panic in the generator,
// the submission leaves Loading.
func (s *Session) run(sub *Submission) {
	defer s.workers.Done()
	phase := slides.PhaseSlides
	var final State
	defer func() {
		if r := recover(); r != nil {
			s.log.Errorw("generator panicked", "submission_id", sub.ID, "phase", phase, "panic", r)
			final = failedPhase(phase, fmt.Errorf("unexpected failure: %v", r))
		}
		s.finish(sub, final)
	}()

	id := sub.Identifier
	deck, err := s.config.Generator.GenerateSlides(s.ctx, id)
	if err != nil {
		final = failedPhase(phase, err)
		return
	}

	phase = slides.PhaseComment
	comment, err := s.config.Generator.GenerateComment(s.ctx, id)
	if err != nil {
		// The slides are dropped: a half-finished submission is reported as a failure.
		final = failedPhase(phase, err)
		return
	}

	final = Succeeded{Identifier: id, Slides: deck, Comment: comment}
}

// finish publishes the final state if sub is still the newest submission, then records and completes it.
func (s *Session) finish(sub *Submission, final State) {
	log := s.log.With("submission_id", sub.ID, "generation", sub.Generation)
	superseded := false
	_ = s.current.Locked(func(v *visible) error {
		if v.generation == sub.Generation {
			s.apply(v, sub, final)
		} else {
			superseded = true
			s.events.Send(SubmissionDiscarded{submissionEvent: submissionEvent{sub}, State: final})
		}
		return nil
	})

	if superseded {
		log.Debugw("discarding result of superseded submission", "status", final.Status())
	} else if failed, ok := final.(Failed); ok {
		log.Warnw("submission failed", "error", failed.Err)
	} else {
		log.Infow("submission succeeded", "identifier", sub.Identifier)
	}

	sub.settle(final, superseded)
	record := sub.Record()
	if err := s.config.Database.WriteSubmission(&record); err != nil {
		log.Errorw("failed to record submission", "error", err)
	}
	sub.done.Set()
}

// Extract applies the same link validation as Submit: a blank link is ErrEmptyLink, and a link no provider in
// registry recognises is ErrInvalidLink.
func Extract(registry *video_slides.ProviderRegistry, link string) (video_slides.Identifier, error) {
	if strings.TrimSpace(link) == "" {
		return "", ErrEmptyLink
	}
	match, err := registry.Match(link)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidLink, err)
	}
	return match.Identifier, nil
}

func (s *Session) Extract(link string) (video_slides.Identifier, error) {
	return Extract(s.config.ProviderRegistry, link)
}
