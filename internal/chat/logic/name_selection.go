package logic

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/edchat/edchat-go/internal/chat/session"
	"github.com/edchat/edchat-go/pkg/log"
	"github.com/edchat/edchat-go/pkg/util/typeutil"
)

// NameSelection 处理用户选名阶段的行为。
//
// 会话接入后首先绑定到这里；提交一个未被占用的名字后，
// 会话换绑到配置的下一个房间（通常是大厅）。
//
// names 为服务器持有的名字登记表的共享引用，本类型只登记名字，
// 释放统一发生在会话断开时（由服务器完成），因此 OnLeave 为 no-op：
// 正常选名成功离开本 Logic 时名字必须继续占用。
type NameSelection struct {
	serviceName string
	next        session.Logic
	names       typeutil.Set[string]
}

var _ session.Logic = (*NameSelection)(nil)

// NewNameSelection 创建选名 Logic。
//
// 参数：
//   - serviceName：服务显示名，用于欢迎横幅；
//   - next       ：选名成功后会话换绑的目标（大厅房间）；
//   - names      ：服务器持有的名字登记表（共享，不持有）。
func NewNameSelection(serviceName string, next session.Logic, names typeutil.Set[string]) *NameSelection {
	return &NameSelection{
		serviceName: serviceName,
		next:        next,
		names:       names,
	}
}

// OnEnter 实现 session.Logic.OnEnter。
func (l *NameSelection) OnEnter(sess session.Session) {
	sess.Push(fmt.Sprintf("Welcome to %s\nPlease input your user name >", l.serviceName))
}

// OnData 实现 session.Logic.OnData。
func (l *NameSelection) OnData(sess session.Session, line string) {
	if line == "" {
		sess.Push("Please input your user name >")
		return
	}

	if l.names.Contain(line) {
		sess.Push("Error: name exists.\nPlease input your user name>")
		return
	}

	l.names.Insert(line)
	sess.SetName(line)
	log.Debug("user name selected",
		zap.Uint64("sessionID", sess.ID()),
		zap.String("name", line))
	sess.Rebind(l.next)
}

// OnLeave 实现 session.Logic.OnLeave。
func (l *NameSelection) OnLeave(session.Session) {}
