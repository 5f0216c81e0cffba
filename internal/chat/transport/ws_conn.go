package transport

import (
	"net"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// WSConn 是 Conn 的 WebSocket 实现：一条文本帧视为一行输入。
//
// 说明：
//   - gorilla/websocket 要求同一时刻至多一个写协程，
//     上层 Session 的发送协程天然满足该约束；
//   - 二进制帧与控制帧由底层库处理，这里只透出文本帧。
type WSConn struct {
	conn *websocket.Conn

	closeOnce sync.Once
}

var _ Conn = (*WSConn)(nil)

// NewWSConn 将已升级完成的 websocket 连接包装为行连接。
func NewWSConn(conn *websocket.Conn) *WSConn {
	return &WSConn{conn: conn}
}

// ReadLine 实现 Conn.ReadLine。
func (c *WSConn) ReadLine() (string, error) {
	for {
		msgType, data, err := c.conn.ReadMessage()
		if err != nil {
			return "", err
		}
		if msgType != websocket.TextMessage {
			continue
		}

		line := string(data)
		line = strings.TrimSuffix(line, "\n")
		line = strings.TrimSuffix(line, "\r")
		return line, nil
	}
}

// WriteString 实现 Conn.WriteString。
func (c *WSConn) WriteString(s string) error {
	return c.conn.WriteMessage(websocket.TextMessage, []byte(s))
}

// Close 实现 Conn.Close。
func (c *WSConn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		err = c.conn.Close()
	})
	return err
}

// RemoteAddr 实现 Conn.RemoteAddr。
func (c *WSConn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// LocalAddr 实现 Conn.LocalAddr。
func (c *WSConn) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}
