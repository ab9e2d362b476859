package session

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/alanbriolat/video-slides"
	"github.com/alanbriolat/video-slides/internal/pubsub"
	"github.com/alanbriolat/video-slides/internal/slides"
	"github.com/alanbriolat/video-slides/internal/sync_"
)

const eventBufSize = 16

var (
	ErrNoGenerator = errors.New("no generator configured")
)

// Generator is the remote side of a submission; *slides.Client is the real one.
type Generator interface {
	GenerateSlides(ctx context.Context, id video_slides.Identifier) (slides.Slides, error)
	GenerateComment(ctx context.Context, id video_slides.Identifier) (string, error)
}

type Config struct {
	Generator        Generator
	Database         Database
	ProviderRegistry *video_slides.ProviderRegistry
}

var DefaultConfig = Config{
	Database:         NilDatabase{},
	ProviderRegistry: &video_slides.DefaultProviderRegistry,
}

// visible is everything guarded by the Session lock: the latest generation, its submission and the visible state.
type visible struct {
	generation uint64
	submission *Submission
	state      State
	closed     bool
}

// A Session drives submissions and owns the single visible state. Submissions may overlap; only the newest one is
// allowed to change what is visible.
type Session struct {
	config    Config
	ctx       context.Context
	ctxCancel context.CancelFunc
	log       *zap.SugaredLogger

	current *sync_.Mutexed[visible]
	events  pubsub.Publisher[Event]
	workers sync.WaitGroup
}

func New(config Config, ctx context.Context) (*Session, error) {
	if config.Generator == nil {
		return nil, ErrNoGenerator
	}
	if config.Database == nil {
		config.Database = NilDatabase{}
	}
	if config.ProviderRegistry == nil {
		config.ProviderRegistry = &video_slides.DefaultProviderRegistry
	}
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		config:    config,
		ctx:       ctx,
		ctxCancel: cancel,
		log:       zap.S().Named("session"),

		current: sync_.NewMutexed(visible{state: Idle{}}),
		events:  pubsub.NewPublisherBufSize[Event](eventBufSize),
	}
	return s, nil
}

// Subscribe to StateChanged and SubmissionDiscarded events. Events are queued while the Session lock is held, so a
// subscriber that calls back into the Session while handling one can stall it.
func (s *Session) Subscribe() (pubsub.ReceiverCloser[Event], error) {
	return s.events.SubscribeBufSize(eventBufSize)
}

// State returns the currently visible state.
func (s *Session) State() State {
	return s.current.Get().state
}

func (s *Session) Snapshot() Snapshot {
	v := s.current.Get()
	return newSnapshot(v.submission, v.state)
}

// Close stops accepting submissions, aborts requests still in flight and waits for them to finish.
func (s *Session) Close() {
	_ = s.current.Locked(func(v *visible) error {
		v.closed = true
		return nil
	})
	s.ctxCancel()
	s.workers.Wait()
	s.events.Close()
}

// apply must be called with the Session lock held.
func (s *Session) apply(v *visible, sub *Submission, state State) {
	old := newSnapshot(v.submission, v.state)
	v.submission = sub
	v.state = state
	s.events.Send(StateChanged{
		submissionEvent: submissionEvent{sub},
		Old:             old,
		New:             newSnapshot(sub, state),
		State:           state,
	})
}
