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

package conc

import (
	ants "github.com/panjf2000/ants/v2"
)

// Pool 封装 ants 协程池，用于限制并发执行的任务数量。
//
// 说明：
//   - cap <= 0 时创建容量无上限的池；
//   - Submit 在池已满且配置为阻塞模式时会阻塞调用方。
type Pool struct {
	inner *ants.Pool
}

// NewPool 创建一个容量为 cap 的协程池。
func NewPool(cap int, opts ...PoolOption) (*Pool, error) {
	opt := defaultPoolOption()
	for _, o := range opts {
		o(opt)
	}

	pool, err := ants.NewPool(cap, opt.antsOptions()...)
	if err != nil {
		return nil, err
	}
	return &Pool{inner: pool}, nil
}

// Submit 向池中提交一个任务。
func (p *Pool) Submit(task func()) error {
	return p.inner.Submit(task)
}

// Running 返回当前正在执行任务的 worker 数量。
func (p *Pool) Running() int {
	return p.inner.Running()
}

// Free 返回当前空闲的 worker 数量。
func (p *Pool) Free() int {
	return p.inner.Free()
}

// Release 关闭协程池并释放 worker 资源。
func (p *Pool) Release() {
	p.inner.Release()
}
