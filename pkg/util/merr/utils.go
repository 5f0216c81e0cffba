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

package merr

import (
	"context"
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
)

// Code 返回给定错误对应的错误码。
func Code(err error) int32 {
	if err == nil {
		return 0
	}

	cause := errors.Cause(err)
	switch specificErr := cause.(type) {
	case chatError:
		return specificErr.code()

	default:
		if errors.Is(specificErr, context.Canceled) {
			return CanceledCode
		} else if errors.Is(specificErr, context.DeadlineExceeded) {
			return TimeoutCode
		} else {
			return errUnexpected.code()
		}
	}
}

func IsRetryableErr(err error) bool {
	if err, ok := err.(chatError); ok {
		return err.retriable
	}

	return false
}

func IsCanceledOrTimeout(err error) bool {
	return errors.IsAny(err, context.Canceled, context.DeadlineExceeded)
}

// IsUserError 判断给定错误是否为用户输入层面的可恢复错误。
// 这类错误只需要向发起会话回写一行提示，不应记录为系统错误。
func IsUserError(err error) bool {
	return GetErrorType(err) == InputError
}

func GetErrorType(err error) ErrorType {
	cause := errors.Cause(err)
	if merr, ok := cause.(chatError); ok {
		return merr.errType
	}

	return SystemError
}

// field 风格的辅助封装，保持 wrap 信息结构统一：value(name, value) -> "name=value"。
type valueField struct {
	name  string
	value any
}

func value(name string, value any) valueField {
	return valueField{
		name,
		value,
	}
}

func (f valueField) String() string {
	return fmt.Sprintf("%s=%v", f.name, f.value)
}

func wrapFields(err chatError, fields ...valueField) error {
	if len(fields) == 0 {
		return err
	}

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f.String())
	}
	return errors.Wrapf(err, "%s", strings.Join(parts, ", "))
}

func wrapFieldsWithDesc(err chatError, desc string, fields ...valueField) error {
	parts := make([]string, 0, len(fields)+1)
	for _, f := range fields {
		parts = append(parts, f.String())
	}
	if desc != "" {
		parts = append(parts, desc)
	}
	if len(parts) == 0 {
		return err
	}
	return errors.Wrapf(err, "%s", strings.Join(parts, ", "))
}

// Command 相关错误封装。
func WrapErrUnknownAction(action string, msg ...string) error {
	err := wrapFields(ErrUnknownAction, value("action", action))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrNameInUse(name string, msg ...string) error {
	err := wrapFields(ErrNameInUse, value("name", name))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrRoomNotFound(room string, msg ...string) error {
	err := wrapFields(ErrRoomNotFound, value("room", room))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrRoomNotEmpty(room string, members int, msg ...string) error {
	err := wrapFields(ErrRoomNotEmpty,
		value("room", room),
		value("members", members),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrMissingArg(action string, msg ...string) error {
	err := wrapFields(ErrMissingArg, value("action", action))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Session 相关错误封装。
func WrapErrSessionDuplicated(id uint64, msg ...string) error {
	err := wrapFields(ErrSessionDuplicated, value("sessionID", id))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrSessionNotFound(id uint64, msg ...string) error {
	err := wrapFields(ErrSessionNotFound, value("sessionID", id))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrSessionClosed(id uint64, msg ...string) error {
	err := wrapFields(ErrSessionClosed, value("sessionID", id))
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Transport 相关错误封装。
func WrapErrLineTooLong(size, limit int, msg ...string) error {
	err := wrapFields(ErrLineTooLong,
		value("size", size),
		value("limit", limit),
	)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

// Server 相关错误封装。
func WrapErrServerClosed(msg ...string) error {
	err := error(ErrServerClosed)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}

func WrapErrServerInternal(reason string, msg ...string) error {
	err := wrapFieldsWithDesc(ErrServerInternal, reason)
	if len(msg) > 0 {
		err = errors.Wrap(err, strings.Join(msg, "->"))
	}
	return err
}
