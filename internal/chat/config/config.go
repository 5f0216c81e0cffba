package config

import (
	"github.com/cockroachdb/errors"

	"github.com/edchat/edchat-go/pkg/log"
	zviper "github.com/edchat/edchat-go/pkg/util/viper"
)

// ServerConfig 为聊天服务的完整配置。
type ServerConfig struct {
	// Name 为服务显示名，用于大厅房间命名与欢迎横幅。
	Name string `mapstructure:"name"`

	// ListenAddr 为 TCP 监听地址，例如 "0.0.0.0:5005"。
	ListenAddr string `mapstructure:"listen-addr"`

	// WSListenAddr 为 WebSocket 接入点监听地址，留空表示关闭。
	WSListenAddr string `mapstructure:"ws-listen-addr"`

	// WSPath 为 WebSocket 升级路径。
	WSPath string `mapstructure:"ws-path"`

	// MetricsAddr 为 Prometheus 指标服务监听地址，留空表示关闭。
	MetricsAddr string `mapstructure:"metrics-addr"`

	// MaxLineSize 为允许的单行最大字节数。
	MaxLineSize int `mapstructure:"max-line-size"`

	// SendQueueSize 为每个会话的发送队列容量。
	SendQueueSize int `mapstructure:"send-queue-size"`

	// MaxConnections 为连接处理协程池容量，<= 0 表示不限。
	MaxConnections int `mapstructure:"max-connections"`

	// Logging 为日志配置。
	Logging log.Config `mapstructure:"logging"`
}

// Default 返回带缺省值的配置。
func Default() *ServerConfig {
	return &ServerConfig{
		Name:           "EdChat",
		ListenAddr:     "0.0.0.0:5005",
		WSPath:         "/ws",
		MaxLineSize:    4096,
		SendQueueSize:  256,
		MaxConnections: 0,
		Logging: log.Config{
			Level:  "info",
			Format: "console",
			Stdout: true,
		},
	}
}

// Load 从给定路径加载配置文件，缺失的字段回退到缺省值。
func Load(path string) (*ServerConfig, error) {
	cfg := Default()

	v := zviper.New()
	if err := v.LoadFile(path); err != nil {
		return nil, errors.Wrapf(err, "load config file %q", path)
	}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrapf(err, "unmarshal config file %q", path)
	}
	return cfg, nil
}
