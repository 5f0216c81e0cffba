package session

import (
	"context"
	"net"
	"sync"

	"go.uber.org/zap"

	"github.com/edchat/edchat-go/internal/chat/transport"
	"github.com/edchat/edchat-go/pkg/log"
)

// defaultSendQueueSize 为每个会话的发送队列容量。
const defaultSendQueueSize = 256

// 未选名会话的缺省显示名。
const anonymousName = "anonymous"

// outboundText 表示一条待发送文本；closing 为 true 时表示这是
// 优雅断开的终止标记：写出之前的全部文本后关闭底层连接。
type outboundText struct {
	text    string
	closing bool
}

// BaseSession 提供了 Session 接口的基础实现。
//
// 设计目标：
//   - 发送路径走会话级队列与专职发送协程，避免多协程并发写连接，
//     也避免单个慢客户端在广播时阻塞其他会话；
//   - 读路径由外部接入层驱动（ReadLine 循环），本类型不自行读取；
//   - logic 字段只在服务器事件锁内被访问，无需自带锁。
type BaseSession struct {
	id uint64

	ctx    context.Context
	cancel context.CancelFunc

	conn transport.Conn

	name  string
	logic Logic

	// onExit 在 Rebind(nil) 时回调一次，由服务器完成名字释放与
	// 会话集合移除。
	onExit func(Session)
	exited bool

	sendQueue chan outboundText

	closeOnce sync.Once
}

// 确保 BaseSession 实现了 Session 接口。
var _ Session = (*BaseSession)(nil)

// NewBaseSession 创建一个基于行连接的基础会话。
//
// 参数：
//   - parent   ：会话所属上层上下文；为 nil 时使用 context.Background()；
//   - id       ：会话 ID，由调用侧保证全局唯一；
//   - conn     ：底层行连接；
//   - queueSize：发送队列容量，<= 0 时使用默认值；
//   - onExit   ：会话退场回调，可为 nil。
func NewBaseSession(parent context.Context, id uint64, conn transport.Conn, queueSize int, onExit func(Session)) *BaseSession {
	if parent == nil {
		parent = context.Background()
	}
	if queueSize <= 0 {
		queueSize = defaultSendQueueSize
	}
	ctx, cancel := context.WithCancel(parent)

	s := &BaseSession{
		id:        id,
		ctx:       ctx,
		cancel:    cancel,
		conn:      conn,
		name:      anonymousName,
		onExit:    onExit,
		sendQueue: make(chan outboundText, queueSize),
	}

	go s.sendLoop()

	return s
}

// ID 实现 Session.ID。
func (s *BaseSession) ID() uint64 {
	return s.id
}

// Name 实现 Session.Name。
func (s *BaseSession) Name() string {
	return s.name
}

// SetName 实现 Session.SetName。
func (s *BaseSession) SetName(name string) {
	s.name = name
}

// Context 实现 Session.Context。
func (s *BaseSession) Context() context.Context {
	return s.ctx
}

// RemoteAddr 实现 Session.RemoteAddr。
func (s *BaseSession) RemoteAddr() net.Addr {
	return s.conn.RemoteAddr()
}

// CurrentLogic 实现 Session.CurrentLogic。
func (s *BaseSession) CurrentLogic() Logic {
	return s.logic
}

// SubmitLine 将一行完整输入转交给当前绑定的 Logic。
// 由接入层在读到每个行终止符时调用，调用前需持有服务器事件锁。
func (s *BaseSession) SubmitLine(line string) {
	if s.logic == nil {
		// 会话正在退场，丢弃尾部输入。
		return
	}
	s.logic.OnData(s, line)
}

// Rebind 实现 Session.Rebind。
func (s *BaseSession) Rebind(next Logic) {
	if s.logic != nil {
		s.logic.OnLeave(s)
	}
	s.logic = next
	if next != nil {
		next.OnEnter(s)
		return
	}

	// 完全退场，退场回调只执行一次。
	if !s.exited {
		s.exited = true
		if s.onExit != nil {
			s.onExit(s)
		}
	}
}

// Push 实现 Session.Push。
//
// 仅将文本投递到会话级发送队列，由专职发送协程按顺序写出，
// 保证广播时不会因单个连接阻塞整个事件处理。
func (s *BaseSession) Push(text string) {
	select {
	case <-s.ctx.Done():
		// 会话已关闭，丢弃输出。
	case s.sendQueue <- outboundText{text: text}:
	default:
		log.Warn("session send queue full, dropping output",
			zap.Uint64("sessionID", s.id),
			zap.String("name", s.name))
	}
}

// Disconnect 实现 Session.Disconnect。
func (s *BaseSession) Disconnect() {
	select {
	case <-s.ctx.Done():
		return
	case s.sendQueue <- outboundText{closing: true}:
	default:
		// 队列已满时直接关闭，放弃未写出的输出。
		_ = s.Close()
	}
}

// Close 实现 Session.Close。
func (s *BaseSession) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.cancel()
		err = s.conn.Close()
	})
	return err
}

// sendLoop 为每个会话启动的专职发送协程。
//
// 发送路径仅在此协程中执行；遇到 closing 标记或写失败时关闭会话。
func (s *BaseSession) sendLoop() {
	for {
		select {
		case <-s.ctx.Done():
			return
		case msg := <-s.sendQueue:
			if msg.closing {
				_ = s.Close()
				return
			}
			if err := s.conn.WriteString(msg.text); err != nil {
				// 写失败视为会话异常，关闭连接以触发读侧清理。
				_ = s.Close()
				return
			}
		}
	}
}
