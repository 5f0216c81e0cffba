package transport

import (
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edchat/edchat-go/pkg/util/merr"
)

func TestLineConnReadLine(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	lc := NewLineConn(srv, 0)
	defer lc.Close()

	go func() {
		client.Write([]byte("hello\r\n"))
		client.Write([]byte("wor"))
		client.Write([]byte("ld\r\n"))
		// 容忍只有 LF 的客户端。
		client.Write([]byte("plain\n"))
		client.Close()
	}()

	line, err := lc.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "hello", line)

	line, err = lc.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "world", line)

	line, err = lc.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "plain", line)

	_, err = lc.ReadLine()
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineConnEmptyLine(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	lc := NewLineConn(srv, 0)
	defer lc.Close()

	go func() {
		client.Write([]byte("\r\n\r\n"))
	}()

	for i := 0; i < 2; i++ {
		line, err := lc.ReadLine()
		require.NoError(t, err)
		assert.Equal(t, "", line)
	}
}

func TestLineConnTooLong(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	lc := NewLineConn(srv, 8)
	defer lc.Close()

	go func() {
		client.Write([]byte(strings.Repeat("x", 64) + "\r\n"))
	}()

	_, err := lc.ReadLine()
	assert.ErrorIs(t, err, merr.ErrLineTooLong)
}

func TestLineConnWriteString(t *testing.T) {
	client, srv := net.Pipe()
	defer client.Close()

	lc := NewLineConn(srv, 0)
	defer lc.Close()

	go func() {
		require.NoError(t, lc.WriteString("Welcome\n"))
	}()

	buf := make([]byte, 16)
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "Welcome\n", string(buf[:n]))
}

func TestWSConnLine(t *testing.T) {
	upgrader := websocket.Upgrader{}
	lines := make(chan string, 1)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)

		wc := NewWSConn(conn)
		defer wc.Close()

		line, err := wc.ReadLine()
		require.NoError(t, err)
		lines <- line

		require.NoError(t, wc.WriteString("Welcome\n"))
	}))
	defer ts.Close()

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer client.Close()

	// 行尾终止符在 ReadLine 侧被剥掉。
	require.NoError(t, client.WriteMessage(websocket.TextMessage, []byte("hello ws\r\n")))
	assert.Equal(t, "hello ws", <-lines)

	_, data, err := client.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "Welcome\n", string(data))
}
