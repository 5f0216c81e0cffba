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
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

var _globalL, _globalP atomic.Value

func init() {
	logger, props, _ := InitLogger(&Config{Level: "info", Format: "console"})
	ReplaceGlobals(logger, props)
}

type ctxLogKeyType struct{}

var CtxLogKey = ctxLogKeyType{}

// L 返回全局 Logger。在 ReplaceGlobals 生效前可以安全调用。
func L() *zap.Logger {
	return _globalL.Load().(*zap.Logger)
}

// S 返回全局 SugaredLogger。
func S() *zap.SugaredLogger {
	return L().Sugar()
}

// Prop 返回全局 Logger 对应的 ZapProperties。
func Prop() *ZapProperties {
	return _globalP.Load().(*ZapProperties)
}

// ReplaceGlobals 替换全局 Logger 及其属性，并返回撤销函数。
func ReplaceGlobals(logger *zap.Logger, props *ZapProperties) func() {
	prevL, prevP := _globalL.Load(), _globalP.Load()
	_globalL.Store(logger)
	_globalP.Store(props)
	if prevL == nil || prevP == nil {
		return func() {}
	}
	return func() {
		_globalL.Store(prevL)
		_globalP.Store(prevP)
	}
}

// Debug 在 Debug 级别输出一条日志。
// 消息包含调用处传入的字段以及 Logger 已经携带的字段。
func Debug(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Debug(msg, fields...)
}

// Info 在 Info 级别输出一条日志。
func Info(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Info(msg, fields...)
}

// Warn 在 Warn 级别输出一条日志。
func Warn(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Warn(msg, fields...)
}

// Error 在 Error 级别输出一条日志。
func Error(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Error(msg, fields...)
}

// Fatal 在 Fatal 级别输出一条日志，随后调用 os.Exit(1) 退出进程。
func Fatal(msg string, fields ...zap.Field) {
	L().WithOptions(zap.AddCallerSkip(1)).Fatal(msg, fields...)
}

// With 创建一个携带额外字段的子 Logger。
// 子 Logger 添加的字段不会影响父 Logger，反之亦然。
func With(fields ...zap.Field) *zap.Logger {
	return L().With(fields...)
}

// WithContext 将给定 Logger 写入 context，供 Ctx 取出。
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, CtxLogKey, logger)
}

// Ctx 从 context 中取出 Logger；context 中不存在时回退到全局 Logger。
func Ctx(ctx context.Context) *zap.Logger {
	if ctx == nil {
		return L()
	}
	if logger, ok := ctx.Value(CtxLogKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return L()
}
