// Copyright 2019 PingCAP, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package log

import (
	"os"
	"path/filepath"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger 根据配置初始化一个 zap Logger。
//
// 输出目标：
//   - cfg.Stdout 为 true 时输出到标准输出；
//   - cfg.File.Filename 非空时输出到滚动日志文件（lumberjack）；
//   - 两者都关闭时丢弃全部日志输出。
func InitLogger(cfg *Config) (*zap.Logger, *ZapProperties, error) {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(levelOrDefault(cfg.Level))); err != nil {
		return nil, nil, errors.Wrapf(err, "invalid log level %q", cfg.Level)
	}

	var syncers []zapcore.WriteSyncer
	if cfg.Stdout {
		syncers = append(syncers, zapcore.AddSync(os.Stdout))
	}
	if cfg.File.Filename != "" {
		fileSyncer, err := newFileSyncer(&cfg.File)
		if err != nil {
			return nil, nil, err
		}
		syncers = append(syncers, fileSyncer)
	}

	var syncer zapcore.WriteSyncer
	switch len(syncers) {
	case 0:
		syncer = zapcore.AddSync(nopWriter{})
	case 1:
		syncer = syncers[0]
	default:
		syncer = zapcore.NewMultiWriteSyncer(syncers...)
	}

	core := zapcore.NewCore(cfg.buildEncoder(), syncer, level)
	logger := zap.New(core, cfg.buildOptions(syncer)...)

	props := &ZapProperties{
		Core:   core,
		Syncer: syncer,
		Level:  level,
	}
	return logger, props, nil
}

// newFileSyncer 创建基于 lumberjack 的滚动文件输出。
func newFileSyncer(cfg *FileLogConfig) (zapcore.WriteSyncer, error) {
	if st, err := os.Stat(cfg.Filename); err == nil && st.IsDir() {
		return nil, errors.Newf("can't use directory %q as log file name", cfg.Filename)
	}

	filename := cfg.Filename
	if cfg.RootPath != "" && !filepath.IsAbs(filename) {
		filename = filepath.Join(cfg.RootPath, filename)
	}

	maxSize := cfg.MaxSize
	if maxSize <= 0 {
		maxSize = defaultLogMaxSize
	}

	return zapcore.AddSync(&lumberjack.Logger{
		Filename:   filename,
		MaxSize:    maxSize,
		MaxAge:     cfg.MaxDays,
		MaxBackups: cfg.MaxBackups,
		LocalTime:  true,
	}), nil
}

func levelOrDefault(level string) string {
	if level == "" {
		return "info"
	}
	return level
}

type nopWriter struct{}

func (nopWriter) Write(p []byte) (int, error) {
	return len(p), nil
}
