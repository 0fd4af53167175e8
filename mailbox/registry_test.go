package mailbox

import (
	"sync"
	"testing"
	"time"

	"github.com/btcsuite/btcd/wire"
)

func TestMailboxFIFO(t *testing.T) {
	box := NewMailbox()
	box.Push(wire.NewMsgPing(1))
	box.Push(wire.NewMsgPing(2))

	first, ok := box.Recv(time.Second)
	if !ok {
		t.Fatal("first Recv timed out")
	}
	second, ok := box.Recv(time.Second)
	if !ok {
		t.Fatal("second Recv timed out")
	}

	p1 := first.(*wire.MsgPing)
	p2 := second.(*wire.MsgPing)
	if p1.Nonce != 1 || p2.Nonce != 2 {
		t.Errorf("FIFO order violated: got nonces %d, %d, want 1, 2", p1.Nonce, p2.Nonce)
	}
}

func TestMailboxTimeout(t *testing.T) {
	box := NewMailbox()

	start := time.Now()
	_, ok := box.Recv(50 * time.Millisecond)
	elapsed := time.Since(start)

	if ok {
		t.Fatal("Recv on empty mailbox returned a message")
	}
	if elapsed < 50*time.Millisecond {
		t.Errorf("Recv returned early after %v, want >= 50ms", elapsed)
	}
	if box.Len() != 0 {
		t.Errorf("Len() = %d after timed-out Recv, want 0", box.Len())
	}
}

func TestMailboxBlocksUntilPush(t *testing.T) {
	box := NewMailbox()

	done := make(chan wire.Message, 1)
	go func() {
		msg, _ := box.Recv(time.Second)
		done <- msg
	}()

	time.Sleep(20 * time.Millisecond)
	box.Push(wire.NewMsgVerAck())

	select {
	case msg := <-done:
		if _, ok := msg.(*wire.MsgVerAck); !ok {
			t.Errorf("received %T, want *wire.MsgVerAck", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("Recv never woke up after Push")
	}
}

func TestRegistryGetIsLazyAndShared(t *testing.T) {
	reg := NewRegistry()

	a := reg.Get("version")
	b := reg.Get("version")
	if a != b {
		t.Fatal("Get returned different mailboxes for the same command name")
	}

	c := reg.Get("verack")
	if a == c {
		t.Fatal("Get returned the same mailbox for different command names")
	}
}

func TestRegistryConcurrentGetCreatesOnlyOneMailbox(t *testing.T) {
	reg := NewRegistry()

	var wg sync.WaitGroup
	boxes := make([]*Mailbox, 50)
	for i := range boxes {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			boxes[i] = reg.Get("cfheaders")
		}(i)
	}
	wg.Wait()

	for i := 1; i < len(boxes); i++ {
		if boxes[i] != boxes[0] {
			t.Fatal("concurrent Get calls returned distinct mailboxes for the same command")
		}
	}
}
