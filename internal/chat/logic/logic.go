package logic

import (
	"strings"
	"time"

	"github.com/edchat/edchat-go/internal/chat/session"
)

// RoomService 是 Logic 执行房间管理命令所需的服务器侧能力。
//
// 说明：
//   - Logic 自身不持有房间注册表，所有注册表变更都经由服务器完成；
//   - 全部方法都在服务器事件锁内被调用，实现方不需要另行加锁。
type RoomService interface {
	// AddRoom 创建指定名字的房间；已存在时为 no-op。
	AddRoom(name string)

	// DelRoom 删除指定名字的房间。
	// 房间不存在返回 ErrRoomNotFound；房间非空返回 ErrRoomNotEmpty。
	DelRoom(name string) error

	// GetRoom 查找指定名字的房间。
	// 房间不存在返回 ErrRoomNotFound。
	GetRoom(name string) (session.Logic, error)

	// Hall 返回常驻的大厅房间。
	Hall() session.Logic

	// RoomNames 返回当前全部用户创建房间的名字。
	RoomNames() []string
}

// nowString 返回当前时间的可读表示，用于消息前缀。
// 与 ANSI C ctime 的格式保持一致。
func nowString() string {
	return time.Now().Format(time.ANSIC)
}

// maxActionArgs 为斜杠命令允许的最大参数个数。
// 一行命令至多切分出 1 个动作名加 maxActionArgs 个参数。
const maxActionArgs = 5

// splitAction 将去掉前导 '/' 的命令体切分为动作名和参数。
//
// 规则：
//   - 以连续空白为分隔；
//   - 参数至多 maxActionArgs 个，最后一个参数保留其中嵌入的空白；
//   - 动作名是紧随 '/' 的一段文本，若命令体以空白开头则动作名为空串，
//     按未知动作处理。
func splitAction(body string) (action string, args []string) {
	i := strings.IndexAny(body, " \t")
	if i < 0 {
		return body, nil
	}
	action = body[:i]

	rest := strings.TrimLeft(body[i:], " \t")
	for rest != "" && len(args) < maxActionArgs-1 {
		j := strings.IndexAny(rest, " \t")
		if j < 0 {
			args = append(args, rest)
			return action, args
		}
		args = append(args, rest[:j])
		rest = strings.TrimLeft(rest[j:], " \t")
	}
	if rest != "" {
		args = append(args, rest)
	}
	return action, args
}
