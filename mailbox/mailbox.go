// Package mailbox implements the per-command response queues a Peer uses to
// hand messages from its reader worker to whichever goroutine is waiting on
// a particular command name.
package mailbox

import (
	"sync"
	"time"

	"github.com/btcsuite/btcd/wire"
)

// Mailbox is an ordered queue of received messages guarded by a mutex, with
// waiters woken through a replaced-on-push notify channel rather than
// sync.Cond: Go's Cond has no built-in way to wait with a deadline, and
// recv needs one. Closing and replacing a channel on every push gives the
// same broadcast-wake-all semantics a condvar would, while still letting a
// waiter select against time.After. The queue is drained one message per
// Recv call, FIFO.
type Mailbox struct {
	mutex  sync.Mutex
	queue  []wire.Message
	notify chan struct{}
}

// NewMailbox returns an empty mailbox ready to receive pushes and waiters.
func NewMailbox() *Mailbox {
	return &Mailbox{notify: make(chan struct{})}
}

// Push appends msg to the queue and wakes every waiter blocked in Recv.
func (m *Mailbox) Push(msg wire.Message) {
	m.mutex.Lock()
	m.queue = append(m.queue, msg)
	old := m.notify
	m.notify = make(chan struct{})
	m.mutex.Unlock()

	close(old)
}

// Recv waits until the queue is non-empty or timeout elapses, then pops and
// returns the oldest message. A zero or negative timeout waits forever. On
// timeout it returns (nil, false) without touching the queue.
func (m *Mailbox) Recv(timeout time.Duration) (wire.Message, bool) {
	var deadline <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		m.mutex.Lock()
		if len(m.queue) > 0 {
			msg := m.queue[0]
			m.queue = m.queue[1:]
			m.mutex.Unlock()
			return msg, true
		}
		wait := m.notify
		m.mutex.Unlock()

		if deadline == nil {
			<-wait
			continue
		}

		select {
		case <-wait:
			// Spurious or genuine wake; loop back and re-check the queue
			// under the lock rather than trusting the channel alone.
		case <-deadline:
			return nil, false
		}
	}
}

// Len returns the number of messages currently queued.
func (m *Mailbox) Len() int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return len(m.queue)
}
