package broker

import (
	"context"
	"sync/atomic"
)

// https://stackoverflow.com/questions/36417199/how-to-broadcast-message-using-channel

type Message interface {
	Name() string
}

type Broker[T Message] struct {
	subCount  atomic.Int64
	dropCount atomic.Uint64
	bufSize   int

	publishCh chan T
	subCh     chan chan T
	unsubCh   chan chan T
	done      chan struct{}
}

func NewBroker[T Message](bufSize int) *Broker[T] {
	return &Broker[T]{
		bufSize:   bufSize,
		publishCh: make(chan T, 1),
		// unbuffered so that Subscribe and Unsubscribe return only once the
		// loop has taken the change; anything published afterwards sees it
		subCh:   make(chan chan T),
		unsubCh: make(chan chan T),
		done:    make(chan struct{}),
	}
}

// Start runs the fan-out loop until ctx is done. After that, publishing is
// a no-op and new subscriptions receive a closed channel.
func (b *Broker[T]) Start(ctx context.Context) {
	defer close(b.done)

	subs := map[chan T]struct{}{}
	for {
		select {
		case <-ctx.Done():
			return
		case msgCh := <-b.subCh:
			subs[msgCh] = struct{}{}
			b.subCount.Store(int64(len(subs)))
		case msgCh := <-b.unsubCh:
			delete(subs, msgCh)
			b.subCount.Store(int64(len(subs)))
		case msg := <-b.publishCh:
			for msgCh := range subs {
				// msgCh is buffered, use non-blocking send to protect the broker:
				select {
				case msgCh <- msg:
				default:
					b.dropCount.Add(1)
				}
			}
		}
	}
}

func (b *Broker[T]) Subscribe() chan T {
	msgCh := make(chan T, b.bufSize)
	select {
	case b.subCh <- msgCh:
	case <-b.done:
		close(msgCh)
	}
	return msgCh
}

func (b *Broker[T]) Unsubscribe(msgCh chan T) {
	select {
	case b.unsubCh <- msgCh:
	case <-b.done:
	}
}

func (b *Broker[T]) Publish(msg T) {
	select {
	case b.publishCh <- msg:
	case <-b.done:
	}
}

func (b *Broker[T]) SubCount() int {
	return int(b.subCount.Load())
}

func (b *Broker[T]) DropCount() int {
	return int(b.dropCount.Load())
}

type Publisher[T Message] interface {
	Publish(msg T)
}
