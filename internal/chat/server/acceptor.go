package server

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/edchat/edchat-go/internal/chat/transport"
	"github.com/edchat/edchat-go/pkg/log"
	"github.com/edchat/edchat-go/pkg/util/conc"
)

// Acceptor 是 TCP 接入层。
//
// 职责：
//   - 在监听器上接受连接并包装为行连接；
//   - 每个连接交由独立协程（可选协程池）驱动 Server.HandleConn；
//   - 瞬时 accept 错误按指数退避重试，其余错误向上返回。
type Acceptor struct {
	ln   net.Listener
	srv  *Server
	pool *conc.Pool

	closeOnce sync.Once
}

// NewAcceptor 使用已有的 Listener 创建接入层。
// pool 可为 nil，此时每个连接直接启动协程。
func NewAcceptor(ln net.Listener, srv *Server, pool *conc.Pool) (*Acceptor, error) {
	if ln == nil {
		return nil, errors.New("acceptor: listener is nil")
	}
	if srv == nil {
		return nil, errors.New("acceptor: server is nil")
	}
	return &Acceptor{
		ln:   ln,
		srv:  srv,
		pool: pool,
	}, nil
}

// NewTCPAcceptor 在给定地址上监听 TCP 并创建接入层。
func NewTCPAcceptor(addr string, srv *Server, pool *conc.Pool) (*Acceptor, error) {
	if addr == "" {
		return nil, errors.New("acceptor: addr is empty")
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	return NewAcceptor(ln, srv, pool)
}

// Addr 返回实际监听地址。
func (a *Acceptor) Addr() net.Addr {
	return a.ln.Addr()
}

// Serve 运行接受循环，阻塞直至 ctx 取消或监听器关闭。
func (a *Acceptor) Serve(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	// 瞬时错误（例如句柄耗尽）的重试退避。
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 5 * time.Millisecond
	bo.MaxInterval = time.Second

	for {
		conn, err := a.ln.Accept()
		if err != nil {
			// 若上层已取消，则将错误视为正常退出。
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			if errors.Is(err, net.ErrClosed) {
				return nil
			}

			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				time.Sleep(bo.NextBackOff())
				continue
			}

			return err
		}
		bo.Reset()

		wg.Add(1)
		task := func() {
			defer wg.Done()
			a.srv.HandleConn(ctx, transport.NewLineConn(conn, a.srv.cfg.MaxLineSize))
		}

		if a.pool == nil {
			go task()
			continue
		}
		if err := a.pool.Submit(task); err != nil {
			wg.Done()
			log.Warn("submit connection handler failed",
				zap.Stringer("remote", conn.RemoteAddr()),
				zap.Error(err))
			_ = conn.Close()
		}
	}
}

// Close 关闭监听器。已建立的连接不受影响。
func (a *Acceptor) Close() error {
	var err error
	a.closeOnce.Do(func() {
		err = a.ln.Close()
	})
	return err
}
