package pubsub

import (
	"errors"
	"sync"
)

const (
	DefaultPublisherBufSize  = 1
	DefaultSubscriberBufSize = 1
)

var (
	ErrPublisherClosed = errors.New("publisher closed")
)

// A Publisher fans every sent message out to all of its subscribers, in the order the messages were sent. Subscribers
// must keep receiving (or be closed), otherwise they hold up delivery to everyone else.
type Publisher[T any] interface {
	SenderCloser[T]
	AddSubscriber(SenderCloser[T]) error
	Subscribe() (ReceiverCloser[T], error)
	SubscribeBufSize(int) (ReceiverCloser[T], error)
}

type publisher[T any] struct {
	mu          sync.Mutex
	ch          Channel[T]
	running     sync.WaitGroup
	pending     sync.WaitGroup // messages not yet delivered to all subscribers
	subscribers map[SenderCloser[T]]struct{}
	closed      bool
}

func NewPublisher[T any]() Publisher[T] {
	return NewPublisherBufSize[T](DefaultPublisherBufSize)
}

func NewPublisherBufSize[T any](bufSize int) Publisher[T] {
	p := &publisher[T]{
		ch:          NewChannel[T](bufSize),
		subscribers: make(map[SenderCloser[T]]struct{}),
	}
	p.running.Add(1)
	go p.dispatch()
	return p
}

func (p *publisher[T]) dispatch() {
	defer p.running.Done()
	for v := range p.ch.Receive() {
		// Deliver outside the lock, so that subscribing is never blocked by a slow subscriber
		for _, s := range p.snapshot() {
			if ok := s.Send(v); !ok {
				p.unsubscribe(s)
			}
		}
		p.pending.Done()
	}
}

func (p *publisher[T]) snapshot() []SenderCloser[T] {
	p.mu.Lock()
	defer p.mu.Unlock()
	subscribers := make([]SenderCloser[T], 0, len(p.subscribers))
	for s := range p.subscribers {
		subscribers = append(subscribers, s)
	}
	return subscribers
}

// Send will queue the value for delivery to all current subscribers.
func (p *publisher[T]) Send(msg T) bool {
	p.pending.Add(1)
	if ok := p.ch.Send(msg); !ok {
		p.pending.Done()
		return false
	}
	return true
}

func (p *publisher[T]) Subscribe() (ReceiverCloser[T], error) {
	return p.SubscribeBufSize(DefaultSubscriberBufSize)
}

func (p *publisher[T]) SubscribeBufSize(bufSize int) (ReceiverCloser[T], error) {
	s := NewChannel[T](bufSize)
	if err := p.AddSubscriber(s); err != nil {
		return nil, err
	}
	return s, nil
}

// AddSubscriber registers an existing sender; it will be closed when the publisher closes.
func (p *publisher[T]) AddSubscriber(s SenderCloser[T]) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPublisherClosed
	}
	p.subscribers[s] = struct{}{}
	return nil
}

func (p *publisher[T]) unsubscribe(s SenderCloser[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.subscribers, s)
}

// Close idempotently shuts down the publisher after delivering everything already sent, then closes all subscribers.
func (p *publisher[T]) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.ch.Close()
	p.pending.Wait()
	p.running.Wait()

	for _, s := range p.snapshot() {
		p.unsubscribe(s)
		s.Close()
	}
}

func (p *publisher[T]) Closed() <-chan struct{} {
	return p.ch.Closed()
}
