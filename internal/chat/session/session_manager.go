package session

// SessionManager 维护当前所有在线会话的索引。
//
// 职责说明：
//   - 只负责会话的注册、查询和移除，不直接创建或关闭底层连接；
//   - Session 的具体生命周期由上层的接入层决定；
//   - 服务器基于 SessionManager 实现会话集合的独占持有。
type SessionManager interface {
	// Register 将一个已创建好的 Session 注册到管理器中。
	// 当存在相同 ID 的会话时返回错误，避免覆盖旧会话。
	Register(sess Session) error

	// Get 根据 session id 查找会话。
	Get(id uint64) (sess Session, ok bool)

	// Unregister 从管理器中移除指定 id 的会话。
	//
	// 说明：
	//   - 仅删除索引，不负责调用 sess.Close()；
	//   - 移除不存在的会话是 no-op，不视为错误。
	Unregister(id uint64)

	// Range 遍历当前所有在线会话。
	// 当 fn 返回 false 时，中断遍历。
	Range(fn func(sess Session) bool)

	// Count 返回当前已注册的会话数量。
	Count() int
}
