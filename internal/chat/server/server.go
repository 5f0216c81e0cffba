package server

import (
	"context"
	"io"
	"net"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/edchat/edchat-go/internal/chat/config"
	"github.com/edchat/edchat-go/internal/chat/logic"
	"github.com/edchat/edchat-go/internal/chat/session"
	"github.com/edchat/edchat-go/internal/chat/transport"
	"github.com/edchat/edchat-go/pkg/log"
	"github.com/edchat/edchat-go/pkg/metrics"
	"github.com/edchat/edchat-go/pkg/util/merr"
	"github.com/edchat/edchat-go/pkg/util/typeutil"
)

// Server 组合了聊天服务的全部共享状态：
//   - 会话集合（独占持有全部 Session）；
//   - 房间注册表与常驻大厅；
//   - 名字登记表；
//   - 共享的选名 Logic。
//
// 并发模型：mu 为事件锁，每条客户端行（含其触发的全部广播与换绑）
// 都在锁内完整处理，共享注册表的读写因此互不交错；单个会话的行
// 严格按到达顺序处理（由其连接处理协程保证）。会话的输出走各自的
// 发送队列，不在锁内阻塞。
type Server struct {
	cfg *config.ServerConfig

	mu sync.Mutex

	sessions session.SessionManager
	ids      session.IDAllocator

	// names 为当前占用的显示名集合，断开即释放。
	names typeutil.Set[string]

	// rooms 只保存用户创建的房间；大厅单独持有，因此按名字删除
	// 永远找不到大厅，大厅在结构上不可删除。
	rooms map[string]*logic.RoomChat
	hall  *logic.RoomChat

	nameLogic *logic.NameSelection
}

// 确保 Server 满足 Logic 所需的房间管理能力。
var _ logic.RoomService = (*Server)(nil)

// NewServer 创建聊天服务实例。
func NewServer(cfg *config.ServerConfig) *Server {
	if cfg == nil {
		cfg = config.Default()
	}

	s := &Server{
		cfg:      cfg,
		sessions: session.NewBaseSessionManager(),
		names:    typeutil.NewSet[string](),
		rooms:    make(map[string]*logic.RoomChat),
	}

	s.hall = logic.NewRoomChat(cfg.Name+" Hall", s)
	s.nameLogic = logic.NewNameSelection(cfg.Name, s.hall, s.names)
	return s
}

// AddRoom 实现 logic.RoomService.AddRoom。
// 已存在同名房间时为 no-op。
func (s *Server) AddRoom(name string) {
	if _, exists := s.rooms[name]; exists {
		return
	}
	s.rooms[name] = logic.NewRoomChat(name, s)
	metrics.Rooms.Inc()
	log.Info("room created", zap.String("room", name))
}

// DelRoom 实现 logic.RoomService.DelRoom。
func (s *Server) DelRoom(name string) error {
	room, exists := s.rooms[name]
	if !exists {
		return merr.WrapErrRoomNotFound(name)
	}
	if !room.IsEmpty() {
		return merr.WrapErrRoomNotEmpty(name, len(room.MemberNames()))
	}
	delete(s.rooms, name)
	metrics.Rooms.Dec()
	log.Info("room deleted", zap.String("room", name))
	return nil
}

// GetRoom 实现 logic.RoomService.GetRoom。
func (s *Server) GetRoom(name string) (session.Logic, error) {
	room, exists := s.rooms[name]
	if !exists {
		return nil, merr.WrapErrRoomNotFound(name)
	}
	return room, nil
}

// Hall 实现 logic.RoomService.Hall。
func (s *Server) Hall() session.Logic {
	return s.hall
}

// RoomNames 实现 logic.RoomService.RoomNames。
func (s *Server) RoomNames() []string {
	return lo.Keys(s.rooms)
}

// SessionCount 返回当前在线会话数量。
func (s *Server) SessionCount() int {
	return s.sessions.Count()
}

// HandleConn 驱动一条连接的完整生命周期：创建会话、绑定选名 Logic、
// 循环读行并在事件锁内交给当前 Logic，最后统一做退场清理。
//
// 通常由接入层在独立协程中调用，阻塞直至连接关闭。
func (s *Server) HandleConn(ctx context.Context, conn transport.Conn) {
	sess := session.NewBaseSession(ctx, s.ids.Next(), conn, s.cfg.SendQueueSize, s.onSessionExit)

	if err := s.sessions.Register(sess); err != nil {
		log.Error("register session failed",
			zap.Uint64("sessionID", sess.ID()),
			zap.Error(err))
		_ = sess.Close()
		return
	}

	metrics.ConnectedSessions.Inc()
	defer metrics.ConnectedSessions.Dec()

	log.Info("session connected",
		zap.Uint64("sessionID", sess.ID()),
		zap.Stringer("remote", sess.RemoteAddr()))

	s.mu.Lock()
	sess.Rebind(s.nameLogic)
	s.mu.Unlock()

	cause := s.readLines(sess, conn)

	// 退场：OnLeave、名字释放、会话集合移除都在锁内完整展开。
	s.mu.Lock()
	sess.Rebind(nil)
	s.mu.Unlock()
	_ = sess.Close()

	if cause != nil {
		log.Warn("session closed with error",
			zap.Uint64("sessionID", sess.ID()),
			zap.Error(cause))
		return
	}
	log.Info("session closed", zap.Uint64("sessionID", sess.ID()))
}

// readLines 持续读取连接上的行并交给会话处理。
// 返回 nil 表示正常断开（对端关闭），否则为断开原因。
func (s *Server) readLines(sess *session.BaseSession, conn transport.Conn) error {
	for {
		line, err := conn.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}

		metrics.LinesTotal.Inc()

		s.mu.Lock()
		sess.SubmitLine(line)
		s.mu.Unlock()
	}
}

// onSessionExit 在会话完全退场时被调用（Rebind(nil) 触发，事件锁内）。
// 释放名字并从会话集合移除；重复移除是 no-op。
func (s *Server) onSessionExit(sess session.Session) {
	s.names.Remove(sess.Name())
	s.sessions.Unregister(sess.ID())
	log.Debug("session exited",
		zap.Uint64("sessionID", sess.ID()),
		zap.String("name", sess.Name()))
}

// Close 关闭全部在线会话。
// 各连接处理协程会随连接关闭依次完成自身的退场清理。
func (s *Server) Close() {
	s.sessions.Range(func(sess session.Session) bool {
		_ = sess.Close()
		return true
	})
}
