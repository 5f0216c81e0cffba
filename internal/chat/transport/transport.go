package transport

import (
	"net"
)

// Conn 抽象了一条面向行的文本连接。
//
// 约定：
//   - ReadLine 每遇到一个行终止符返回一行（不含终止符），内部负责跨多次读
//     取累积未完整的行；
//   - WriteString 将给定文本原样写出，不追加任何终止符，由调用方决定换行；
//   - Close 多次调用应是幂等的。
type Conn interface {
	// ReadLine 阻塞读取下一行完整输入。
	// 连接关闭时返回 io.EOF 或 net.ErrClosed。
	ReadLine() (string, error)

	// WriteString 将文本写出到对端。
	WriteString(s string) error

	// Close 关闭底层连接。
	Close() error

	// RemoteAddr 返回远端地址，主要用于日志记录。
	RemoteAddr() net.Addr

	// LocalAddr 返回本端地址。
	LocalAddr() net.Addr
}
