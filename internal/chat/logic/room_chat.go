package logic

import (
	"fmt"
	"sort"

	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/edchat/edchat-go/internal/chat/session"
	"github.com/edchat/edchat-go/pkg/log"
	"github.com/edchat/edchat-go/pkg/metrics"
	"github.com/edchat/edchat-go/pkg/util/merr"
)

// actionFunc 为单条斜杠命令的处理函数。
type actionFunc func(sess session.Session, args []string)

// actionRoute 描述一条命令路由：处理函数加参数个数下限。
type actionRoute struct {
	handler actionFunc
	minArgs int
}

// RoomChat 处理聊天房间内的行为：普通行按加入顺序广播给全部成员，
// 斜杠命令经由显式的动作表分发。
//
// 成员列表只由本房间自身的 OnEnter/OnLeave 修改，且全部回调都在
// 服务器事件锁内执行，广播与成员变更不会交错。
type RoomChat struct {
	name string
	svc  RoomService

	// members 按加入顺序排列，广播与 /who 均按此顺序。
	members []session.Session

	actions map[string]actionRoute
}

var _ session.Logic = (*RoomChat)(nil)

// NewRoomChat 创建一个空房间。
func NewRoomChat(name string, svc RoomService) *RoomChat {
	r := &RoomChat{
		name: name,
		svc:  svc,
	}

	// 动作名到处理函数的显式映射，缺失条目即未知动作。
	r.actions = map[string]actionRoute{
		"quit":     {handler: r.doQuit},
		"who":      {handler: r.doWho},
		"addroom":  {handler: r.doAddroom, minArgs: 1},
		"gotoroom": {handler: r.doGotoroom, minArgs: 1},
		"delroom":  {handler: r.doDelroom, minArgs: 1},
		"roomlist": {handler: r.doRoomlist},
		"hall":     {handler: r.doHall},
		"help":     {handler: r.doHelp},
	}
	return r
}

// Name 返回房间名。
func (r *RoomChat) Name() string {
	return r.name
}

// IsEmpty 返回房间当前是否没有成员。
func (r *RoomChat) IsEmpty() bool {
	return len(r.members) == 0
}

// MemberNames 按加入顺序返回当前成员的显示名。
func (r *RoomChat) MemberNames() []string {
	return lo.Map(r.members, func(sess session.Session, _ int) string {
		return sess.Name()
	})
}

// OnEnter 实现 session.Logic.OnEnter。
func (r *RoomChat) OnEnter(sess session.Session) {
	r.members = append(r.members, sess)
	sess.Push(fmt.Sprintf("Welcome to %s\n", r.name))
	r.broadcastUserState(sess, "enters room")
}

// OnLeave 实现 session.Logic.OnLeave。
func (r *RoomChat) OnLeave(sess session.Session) {
	idx := -1
	for i, m := range r.members {
		if m == sess {
			idx = i
			break
		}
	}
	if idx < 0 {
		// 进入/离开配对不变量保证不会出现；真出现说明换绑路径有缺陷。
		log.Error("session leaves room it never entered",
			zap.String("room", r.name),
			zap.Uint64("sessionID", sess.ID()))
		return
	}
	r.members = append(r.members[:idx], r.members[idx+1:]...)
	r.broadcastUserState(sess, "leaves room")
}

// OnData 实现 session.Logic.OnData。
func (r *RoomChat) OnData(sess session.Session, line string) {
	if line == "" {
		return
	}

	if line[0] == '/' {
		r.dispatchAction(sess, line[1:])
		return
	}

	r.broadcast(fmt.Sprintf("%s: \"%s\" says:\n%s\n", nowString(), sess.Name(), line))
}

// dispatchAction 将命令体切分后经动作表分发。
// 未知动作只向发起会话回写错误行，不产生其他影响。
func (r *RoomChat) dispatchAction(sess session.Session, body string) {
	action, args := splitAction(body)

	route, ok := r.actions[action]
	if !ok {
		sess.Push(fmt.Sprintf("Error: unknown action: %s\n", action))
		metrics.CommandsTotal.WithLabelValues(action, metrics.StatusFail).Inc()
		log.Debug("unknown action",
			zap.String("room", r.name),
			zap.Uint64("sessionID", sess.ID()),
			zap.String("action", action))
		return
	}
	if len(args) < route.minArgs {
		sess.Push(fmt.Sprintf("Error: action \"%s\" needs a room name\n", action))
		metrics.CommandsTotal.WithLabelValues(action, metrics.StatusFail).Inc()
		return
	}

	route.handler(sess, args)
	metrics.CommandsTotal.WithLabelValues(action, metrics.StatusOK).Inc()
}

// broadcastUserState 向全部成员通告成员状态变化。
func (r *RoomChat) broadcastUserState(sess session.Session, state string) {
	r.broadcast(fmt.Sprintf("%s: \"%s\" %s.", nowString(), sess.Name(), state))
}

// broadcast 按成员加入顺序向每个成员推送一行文本。
// 同步的有界扇出：每个成员恰好收到一次。
func (r *RoomChat) broadcast(words string) {
	for _, m := range r.members {
		m.Push(words + "\n")
	}
	metrics.BroadcastsTotal.Inc()
	metrics.BroadcastFanout.Observe(float64(len(r.members)))
}

func (r *RoomChat) doQuit(sess session.Session, _ []string) {
	sess.Push("Bye!\n")
	sess.Disconnect()
}

func (r *RoomChat) doWho(sess session.Session, _ []string) {
	for _, m := range r.members {
		sess.Push(m.Name() + "\n")
	}
}

func (r *RoomChat) doAddroom(sess session.Session, args []string) {
	roomName := args[0]
	r.svc.AddRoom(roomName)
	sess.Push(fmt.Sprintf("Info: add new room \"%s\"\n", roomName))
}

func (r *RoomChat) doGotoroom(sess session.Session, args []string) {
	newRoom, err := r.svc.GetRoom(args[0])
	if err != nil {
		sess.Push("Error: no such room.\n")
		return
	}
	sess.Rebind(newRoom)
}

func (r *RoomChat) doDelroom(sess session.Session, args []string) {
	roomName := args[0]
	if err := r.svc.DelRoom(roomName); err != nil {
		switch {
		case errors.Is(err, merr.ErrRoomNotFound):
			sess.Push(fmt.Sprintf("Error: no such room \"%s\"\n", roomName))
		case errors.Is(err, merr.ErrRoomNotEmpty):
			sess.Push(fmt.Sprintf("Error: room \"%s\" is not empty, can not delete it\n", roomName))
		default:
			sess.Push(fmt.Sprintf("Error: can not delete room \"%s\"\n", roomName))
			log.Warn("delete room failed",
				zap.String("room", roomName),
				zap.Error(err))
		}
		return
	}
	sess.Push(fmt.Sprintf("Info: delete room \"%s\"\n", roomName))
}

func (r *RoomChat) doRoomlist(sess session.Session, _ []string) {
	names := r.svc.RoomNames()
	sort.Strings(names)

	sess.Push("Info: room list\n")
	for _, roomName := range names {
		sess.Push(fmt.Sprintf("\t %s\n", roomName))
	}
	sess.Push("room list over\n")
}

func (r *RoomChat) doHall(sess session.Session, _ []string) {
	sess.Rebind(r.svc.Hall())
}

func (r *RoomChat) doHelp(sess session.Session, _ []string) {
	sess.Push("Info: action list\n" +
		"/addroom room_name\n\tAdd a new room\n" +
		"/delroom room_name\n\tDelete the room\n" +
		"/gotoroom room_name\n\tGoto another room\n" +
		"/hall\n\tGoto the hall\n" +
		"/help\n\tShow this help\n" +
		"/quit\n\tQuit the chat\n" +
		"/roomlist\n\tShow all rooms\n" +
		"/who\n\tShow all room members\n")
}
