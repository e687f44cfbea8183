package player

import (
	"log/slog"
	"sync"
	"time"
)

// Handler consumes messages delivered by a Looper.
type Handler interface {
	HandleMessage(msg *Message)
}

// Looper is a single-consumer message queue with a dispatcher
// goroutine. Messages from a given poster are handled in posting
// order. Posting never blocks; the queue is unbounded.
type Looper struct {
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*Message
	stopped bool
	running bool

	wg sync.WaitGroup
}

// NewLooper creates a looper. Start must be called before any posted
// message is dispatched.
func NewLooper(name string) *Looper {
	l := &Looper{
		name:   name,
		logger: slog.Default(),
	}
	l.cond = sync.NewCond(&l.mu)
	return l
}

// Start launches the dispatcher goroutine delivering messages to h.
func (l *Looper) Start(h Handler) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running || l.stopped {
		return
	}
	l.running = true
	l.wg.Add(1)
	go l.loop(h)
}

func (l *Looper) loop(h Handler) {
	defer l.wg.Done()
	for {
		l.mu.Lock()
		for len(l.queue) == 0 && !l.stopped {
			l.cond.Wait()
		}
		if l.stopped && len(l.queue) == 0 {
			l.mu.Unlock()
			return
		}
		msg := l.queue[0]
		l.queue = l.queue[1:]
		l.mu.Unlock()

		h.HandleMessage(msg)
	}
}

// Post enqueues msg for dispatch. Messages posted after Stop are
// answered with ErrInvalidOperation on their reply channel, if any,
// and otherwise dropped.
func (l *Looper) Post(msg *Message) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		msg.postReply(newMessage(msg.kind).set("err", ErrInvalidOperation))
		return
	}
	l.queue = append(l.queue, msg)
	l.cond.Signal()
	l.mu.Unlock()
}

// PostDelayed posts msg after the given delay. There is no handle to
// cancel the timer; stale deliveries are invalidated by generation
// counters at the handler.
func (l *Looper) PostDelayed(msg *Message, delay time.Duration) {
	if delay <= 0 {
		l.Post(msg)
		return
	}
	time.AfterFunc(delay, func() {
		l.Post(msg)
	})
}

// PostAndAwait posts msg and blocks the caller until the handler
// replies. The loop itself never blocks on a response.
func (l *Looper) PostAndAwait(msg *Message) *Message {
	msg.reply = make(chan *Message, 1)
	l.Post(msg)
	return <-msg.reply
}

// Stop lets the dispatcher drain already queued messages and then
// exit. Messages posted after Stop are rejected.
func (l *Looper) Stop() {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.stopped = true
	l.cond.Broadcast()
	l.mu.Unlock()
	l.wg.Wait()
}
