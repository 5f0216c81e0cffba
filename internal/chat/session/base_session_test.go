package session

import (
	"context"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edchat/edchat-go/internal/chat/transport"
)

// stubConn 记录写出内容的 transport.Conn 测试替身。
type stubConn struct {
	mu     sync.Mutex
	writes []string

	closed    chan struct{}
	closeOnce sync.Once
}

var _ transport.Conn = (*stubConn)(nil)

func newStubConn() *stubConn {
	return &stubConn{closed: make(chan struct{})}
}

func (c *stubConn) ReadLine() (string, error) {
	<-c.closed
	return "", io.EOF
}

func (c *stubConn) WriteString(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.closed:
		return net.ErrClosed
	default:
	}
	c.writes = append(c.writes, text)
	return nil
}

func (c *stubConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *stubConn) RemoteAddr() net.Addr { return nil }
func (c *stubConn) LocalAddr() net.Addr  { return nil }

func (c *stubConn) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.writes))
	copy(out, c.writes)
	return out
}

func (c *stubConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// recordingLogic 记录回调序列的 Logic 测试替身。
type recordingLogic struct {
	label  string
	events *[]string
}

var _ Logic = (*recordingLogic)(nil)

func (l *recordingLogic) OnEnter(Session)        { *l.events = append(*l.events, l.label+".enter") }
func (l *recordingLogic) OnLeave(Session)        { *l.events = append(*l.events, l.label+".leave") }
func (l *recordingLogic) OnData(_ Session, line string) {
	*l.events = append(*l.events, l.label+".data:"+line)
}

func TestBaseSessionPushOrder(t *testing.T) {
	conn := newStubConn()
	sess := NewBaseSession(context.Background(), 1, conn, 16, nil)
	defer sess.Close()

	sess.Push("one\n")
	sess.Push("two\n")
	sess.Push("three\n")

	require.Eventually(t, func() bool {
		return len(conn.snapshot()) == 3
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"one\n", "two\n", "three\n"}, conn.snapshot())
}

func TestBaseSessionDisconnectFlushes(t *testing.T) {
	conn := newStubConn()
	sess := NewBaseSession(context.Background(), 1, conn, 16, nil)

	sess.Push("Bye!\n")
	sess.Disconnect()

	// 断开前已入队的输出必须先写出，然后才关闭连接。
	require.Eventually(t, conn.isClosed, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"Bye!\n"}, conn.snapshot())
	assert.Error(t, sess.Context().Err())
}

func TestBaseSessionPushAfterClose(t *testing.T) {
	conn := newStubConn()
	sess := NewBaseSession(context.Background(), 1, conn, 1, nil)

	require.NoError(t, sess.Close())
	assert.NoError(t, sess.Close())

	// 关闭后的 Push 与 Disconnect 静默丢弃，不阻塞。
	sess.Push("late\n")
	sess.Disconnect()
	assert.Empty(t, conn.snapshot())
}

func TestBaseSessionRebindPairing(t *testing.T) {
	conn := newStubConn()

	var events []string
	exitCount := 0
	sess := NewBaseSession(context.Background(), 1, conn, 16, func(Session) {
		exitCount++
		events = append(events, "exit")
	})
	defer sess.Close()

	first := &recordingLogic{label: "first", events: &events}
	second := &recordingLogic{label: "second", events: &events}

	assert.Nil(t, sess.CurrentLogic())
	sess.Rebind(first)
	sess.SubmitLine("hello")
	sess.Rebind(second)
	sess.Rebind(nil)

	assert.Equal(t, []string{
		"first.enter",
		"first.data:hello",
		"first.leave",
		"second.enter",
		"second.leave",
		"exit",
	}, events)
	assert.Nil(t, sess.CurrentLogic())

	// 退场回调只执行一次，退场后的输入被丢弃。
	sess.Rebind(nil)
	sess.SubmitLine("after exit")
	assert.Equal(t, 1, exitCount)
	assert.NotContains(t, events, "first.data:after exit")
}

func TestBaseSessionDefaults(t *testing.T) {
	conn := newStubConn()
	sess := NewBaseSession(nil, 42, conn, 0, nil)
	defer sess.Close()

	assert.Equal(t, uint64(42), sess.ID())
	assert.Equal(t, "anonymous", sess.Name())
	sess.SetName("alice")
	assert.Equal(t, "alice", sess.Name())
	assert.NotNil(t, sess.Context())
}
