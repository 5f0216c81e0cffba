package session

import (
	"context"
	"net"
)

// Logic 是会话当前绑定的行为。
//
// 约定：
//   - 同一会话同一时刻至多绑定一个 Logic；
//   - 三个回调均在服务器的事件锁内被调用，实现方不需要另行加锁；
//   - OnLeave 与 OnEnter 严格成对：换绑时旧 Logic 的 OnLeave 必然先于
//     新 Logic 的 OnEnter 执行，该配对由 Session.Rebind 统一保证。
type Logic interface {
	// OnData 处理会话收到的一行完整输入。
	OnData(sess Session, line string)

	// OnEnter 在会话绑定到该 Logic 时被调用一次。
	OnEnter(sess Session)

	// OnLeave 在会话解除与该 Logic 的绑定时被调用一次。
	OnLeave(sess Session)
}

// Session 抽象了一条聊天会话/连接。
//
// 约定：
//   - 每个 Session 对应一条底层连接；
//   - Session ID 在进程内保持全局唯一；
//   - Session 由服务器的会话集合独占持有，Logic 只保留非持有引用。
type Session interface {
	// ID 返回该会话的全局唯一标识。
	ID() uint64

	// Name 返回当前显示名，未选名时为 "anonymous"。
	Name() string

	// SetName 更新显示名。只应在名字登记成功后调用。
	SetName(name string)

	// Context 返回与该会话关联的上下文。
	// 会话关闭时触发 Context.Done()。
	Context() context.Context

	// RemoteAddr 返回远端地址，主要用于日志记录。
	RemoteAddr() net.Addr

	// CurrentLogic 返回当前绑定的 Logic；会话退场过程中为 nil。
	CurrentLogic() Logic

	// Rebind 切换会话绑定的 Logic。
	//
	// 行为：
	//   - 若当前已有绑定，先触发旧 Logic 的 OnLeave；
	//   - next 非 nil 时随后触发其 OnEnter；
	//   - next 为 nil 表示会话完全退场，触发退场回调（名字释放、会话
	//     集合移除由服务器完成），该回调至多执行一次。
	Rebind(next Logic)

	// Push 向对端推送一段文本，文本原样写出，不追加终止符。
	// 单向尽力投递：会话已关闭或发送队列已满时丢弃。
	Push(text string)

	// Disconnect 请求优雅断开：待已入队的输出全部写出后关闭底层连接。
	Disconnect()

	// Close 立即关闭该会话。多次调用是幂等的。
	Close() error
}
