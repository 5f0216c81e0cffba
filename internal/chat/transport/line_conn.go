package transport

import (
	"bufio"
	"net"
	"strings"
	"sync"

	"github.com/edchat/edchat-go/pkg/util/merr"
)

// 默认允许的单行最大字节数（不含终止符）。
const defaultMaxLineSize = 4096

// LineConn 是 Conn 的字节流实现，适用于 TCP 等面向流的连接。
//
// 协议约定为 CR-LF 结尾的 ASCII 行；读取时容忍只有 LF 的客户端
// （telnet/netcat 常见行为），即按 LF 切行并剥掉行尾可选的 CR。
// 每个终止符恰好产生一行，半行数据跨多次 Read 累积。
type LineConn struct {
	conn net.Conn
	br   *bufio.Reader

	// maxLineSize 为允许的单行最大字节数，超出时返回 ErrLineTooLong。
	maxLineSize int

	closeOnce sync.Once
}

var _ Conn = (*LineConn)(nil)

// NewLineConn 将 net.Conn 包装为行连接。
// maxLineSize 为 0 时使用默认值。
func NewLineConn(conn net.Conn, maxLineSize int) *LineConn {
	if maxLineSize <= 0 {
		maxLineSize = defaultMaxLineSize
	}
	return &LineConn{
		conn:        conn,
		br:          bufio.NewReader(conn),
		maxLineSize: maxLineSize,
	}
}

// ReadLine 实现 Conn.ReadLine。
func (c *LineConn) ReadLine() (string, error) {
	var sb strings.Builder

	for {
		chunk, err := c.br.ReadSlice('\n')
		sb.Write(chunk)

		if sb.Len() > c.maxLineSize+2 {
			return "", merr.WrapErrLineTooLong(sb.Len(), c.maxLineSize)
		}

		if err == bufio.ErrBufferFull {
			// 行尚未结束，继续累积。
			continue
		}
		if err != nil {
			return "", err
		}

		line := sb.String()
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		return line, nil
	}
}

// WriteString 实现 Conn.WriteString。
func (c *LineConn) WriteString(s string) error {
	_, err := c.conn.Write([]byte(s))
	return err
}

// Close 实现 Conn.Close。
func (c *LineConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr 实现 Conn.RemoteAddr。
func (c *LineConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// LocalAddr 实现 Conn.LocalAddr。
func (c *LineConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}
