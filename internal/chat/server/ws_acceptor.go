package server

import (
	"context"
	"net/http"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/edchat/edchat-go/internal/chat/transport"
	"github.com/edchat/edchat-go/pkg/log"
)

// WSAcceptor 是 WebSocket 接入层：升级成功的连接被包装为行连接后，
// 与 TCP 接入的会话走完全相同的处理路径。
type WSAcceptor struct {
	srv      *Server
	httpSrv  *http.Server
	upgrader websocket.Upgrader
}

// NewWSAcceptor 创建 WebSocket 接入层。
//
// 参数：
//   - addr：HTTP 监听地址；
//   - path：升级路径，例如 "/ws"。
func NewWSAcceptor(addr, path string, srv *Server) (*WSAcceptor, error) {
	if addr == "" {
		return nil, errors.New("ws acceptor: addr is empty")
	}
	if path == "" {
		path = "/ws"
	}

	a := &WSAcceptor{
		srv: srv,
		upgrader: websocket.Upgrader{
			// 纯文本聊天服务，不做来源校验。
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc(path, a.handleUpgrade)
	a.httpSrv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return a, nil
}

// Serve 运行 WebSocket 接入服务，阻塞直至 ctx 取消。
func (a *WSAcceptor) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = a.httpSrv.Shutdown(shutdownCtx)
	}()

	if err := a.httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Close 立即关闭 HTTP 服务。
func (a *WSAcceptor) Close() error {
	return a.httpSrv.Close()
}

// handleUpgrade 处理一次 WebSocket 升级；升级后的连接在本协程中
// 走与 TCP 相同的会话生命周期。
func (a *WSAcceptor) handleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed",
			zap.String("remote", r.RemoteAddr),
			zap.Error(err))
		return
	}

	a.srv.HandleConn(r.Context(), transport.NewWSConn(conn))
}
