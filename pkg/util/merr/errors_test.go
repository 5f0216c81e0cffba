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
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/suite"
)

type ErrSuite struct {
	suite.Suite
}

func (s *ErrSuite) TestCode() {
	err := WrapErrRoomNotFound("lounge")
	errors.Wrap(err, "failed to switch room")
	s.ErrorIs(err, ErrRoomNotFound)
	s.Equal(Code(ErrRoomNotFound), Code(err))
	s.Equal(TimeoutCode, Code(context.DeadlineExceeded))
	s.Equal(CanceledCode, Code(context.Canceled))
	s.Equal(errUnexpected.errCode, Code(errUnexpected))
	s.Equal(int32(0), Code(nil))

	sameCodeErr := newChatError("new error", ErrRoomNotFound.errCode, false)
	s.True(sameCodeErr.Is(ErrRoomNotFound))
}

func (s *ErrSuite) TestWrap() {
	// Command 相关错误。
	s.ErrorIs(WrapErrUnknownAction("dance"), ErrUnknownAction)
	s.ErrorIs(WrapErrNameInUse("alice", "name selection"), ErrNameInUse)
	s.ErrorIs(WrapErrRoomNotFound("lounge", "gotoroom"), ErrRoomNotFound)
	s.ErrorIs(WrapErrRoomNotEmpty("lounge", 3, "delroom"), ErrRoomNotEmpty)
	s.ErrorIs(WrapErrMissingArg("gotoroom"), ErrMissingArg)

	// Session 相关错误。
	s.ErrorIs(WrapErrSessionDuplicated(1), ErrSessionDuplicated)
	s.ErrorIs(WrapErrSessionNotFound(2, "unregister"), ErrSessionNotFound)
	s.ErrorIs(WrapErrSessionClosed(3), ErrSessionClosed)

	// Transport/Server 相关错误。
	s.ErrorIs(WrapErrLineTooLong(9000, 4096), ErrLineTooLong)
	s.ErrorIs(WrapErrServerClosed("accept"), ErrServerClosed)
	s.ErrorIs(WrapErrServerInternal("broadcast failed"), ErrServerInternal)
}

func (s *ErrSuite) TestErrorType() {
	s.Equal(InputError, GetErrorType(WrapErrRoomNotFound("lounge")))
	s.Equal(SystemError, GetErrorType(WrapErrSessionDuplicated(1)))
	s.Equal(SystemError, GetErrorType(errors.New("raw")))
	s.True(IsUserError(WrapErrNameInUse("bob")))
	s.False(IsUserError(WrapErrServerClosed()))
}

func (s *ErrSuite) TestCombine() {
	var (
		errFirst  = errors.New("first")
		errSecond = errors.New("second")
		errThird  = errors.New("third")
	)

	err := Combine(errFirst, errSecond)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.Equal("first: second", err.Error())

	err = Combine(errFirst, errSecond, errThird)
	s.True(errors.Is(err, errFirst))
	s.True(errors.Is(err, errSecond))
	s.True(errors.Is(err, errThird))

	err = Combine(nil, errFirst)
	s.True(errors.Is(err, errFirst))

	s.NoError(Combine(nil, nil))
}

func (s *ErrSuite) TestIsRetryable() {
	s.False(IsRetryableErr(ErrRoomNotFound))
	s.False(IsRetryableErr(errors.New("raw")))
}

func TestErrors(t *testing.T) {
	suite.Run(t, new(ErrSuite))
}
