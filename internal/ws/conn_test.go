package ws

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// slowSocket flags any overlapping write, which the real connection forbids.
type slowSocket struct {
	active   int32
	overlaps int32
	writes   int32
}

func (s *slowSocket) write() {
	if !atomic.CompareAndSwapInt32(&s.active, 0, 1) {
		atomic.AddInt32(&s.overlaps, 1)
	}
	time.Sleep(time.Millisecond)
	atomic.AddInt32(&s.writes, 1)
	atomic.StoreInt32(&s.active, 0)
}

func (s *slowSocket) WriteJSON(v interface{}) error                   { s.write(); return nil }
func (s *slowSocket) WriteMessage(messageType int, data []byte) error { s.write(); return nil }
func (s *slowSocket) Close() error                                    { return nil }

func TestConnSerializesConcurrentWrites(t *testing.T) {
	sock := &slowSocket{}
	conn := NewConn(sock)

	const writers, perWriter = 8, 5
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			msg := Message{Type: MessageTypeGameState, Payload: json.RawMessage(`{}`)}
			if n%2 == 0 {
				msg.Type = MessageTypeError
			}
			for j := 0; j < perWriter; j++ {
				conn.Send(msg)
			}
		}(i)
	}
	wg.Wait()

	if got := atomic.LoadInt32(&sock.overlaps); got != 0 {
		t.Errorf("%d overlapping writes reached the connection; want 0", got)
	}
	if got := atomic.LoadInt32(&sock.writes); got != writers*perWriter {
		t.Errorf("%d writes delivered; want %d", got, writers*perWriter)
	}
}

func TestConnSendCloseInterleavesWithSend(t *testing.T) {
	sock := &slowSocket{}
	conn := NewConn(sock)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 5; i++ {
			conn.Send(Message{Type: MessageTypeClock, Payload: json.RawMessage(`{}`)})
		}
	}()
	go func() {
		defer wg.Done()
		conn.SendClose("done")
	}()
	wg.Wait()

	if got := atomic.LoadInt32(&sock.overlaps); got != 0 {
		t.Errorf("%d overlapping writes reached the connection; want 0", got)
	}
}
