// Licensed to the LF AI & Data foundation under one
// or more contributor license agreements. See the NOTICE file
// distributed with this work for additional information
// regarding copyright ownership. The ASF licenses this file
// to you under the Apache License, Version 2.0 (the
// "License"); you may not use this file except in compliance
// with the License. You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	// edchatNamespace 是当前项目所有 Prometheus 指标使用的命名空间。
	edchatNamespace = "edchat"

	serverSubsystem = "server"

	// 以下为当前使用的通用标签名。
	actionLabelName = "action"
	roomLabelName   = "room"
	statusLabelName = "status"

	StatusOK   = "ok"
	StatusFail = "fail"
)

// fanoutBuckets 为单次广播扇出人数的桶划分。
var fanoutBuckets = prometheus.ExponentialBuckets(1, 2, 10)

var (
	// ConnectedSessions 为当前在线会话数量。
	ConnectedSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: edchatNamespace,
			Subsystem: serverSubsystem,
			Name:      "connected_sessions",
			Help:      "number of currently connected sessions",
		})

	// Rooms 为当前用户创建的房间数量（不含大厅）。
	Rooms = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: edchatNamespace,
			Subsystem: serverSubsystem,
			Name:      "rooms",
			Help:      "number of user-created rooms",
		})

	// LinesTotal 为已处理的客户端行数。
	LinesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: edchatNamespace,
			Subsystem: serverSubsystem,
			Name:      "lines_total",
			Help:      "total number of client lines handled",
		})

	// CommandsTotal 按 action 与处理结果统计斜杠命令次数。
	CommandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: edchatNamespace,
			Subsystem: serverSubsystem,
			Name:      "commands_total",
			Help:      "total number of slash commands dispatched",
		}, []string{actionLabelName, statusLabelName})

	// BroadcastsTotal 为房间广播次数。
	BroadcastsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: edchatNamespace,
			Subsystem: serverSubsystem,
			Name:      "broadcasts_total",
			Help:      "total number of room broadcasts",
		})

	// BroadcastFanout 为单次广播送达的会话数量分布。
	BroadcastFanout = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: edchatNamespace,
			Subsystem: serverSubsystem,
			Name:      "broadcast_fanout",
			Help:      "distribution of sessions reached per broadcast",
			Buckets:   fanoutBuckets,
		})
)

// Register 将全部指标注册到给定 Registry。
func Register(r prometheus.Registerer) {
	r.MustRegister(ConnectedSessions)
	r.MustRegister(Rooms)
	r.MustRegister(LinesTotal)
	r.MustRegister(CommandsTotal)
	r.MustRegister(BroadcastsTotal)
	r.MustRegister(BroadcastFanout)
}
