/*
 * Copyright (C) 2024, Xiongfa Li.
 * All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *   http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */


// Package metrics 记录应用启动过程中的各个步骤（StartupStep）。
package metrics

import "sync/atomic"

type Tag struct {
	Key   string
	Value string
}

// Tags 步骤标签的只读快照
type Tags []Tag

func (t Tags) Len() int {
	return len(t)
}

func (t Tags) Get(i int) Tag {
	return t[i]
}

// ForEach 依次遍历标签，f返回false时停止
func (t Tags) ForEach(f func(tag Tag) bool) {
	for _, v := range t {
		if !f(v) {
			return
		}
	}
}

type StartupStep interface {
	// 步骤名称，如neve.context.refresh
	GetName() string

	// 步骤id，在同一个ApplicationStartup中唯一且递增
	GetID() int64

	// 父步骤id，没有父步骤时第二个返回值为false
	GetParentID() (int64, bool)

	// 添加标签，End之后调用无效
	Tag(key, value string) StartupStep

	// 添加标签，值由f计算，End之后调用无效
	TagFunc(key string, f func() string) StartupStep

	GetTags() Tags

	// 结束步骤，重复调用无效
	End()
}

type ApplicationStartup interface {
	// 创建并开始一个步骤
	Start(name string) StartupStep
}

// Default 不做任何记录的ApplicationStartup，未配置时使用
var Default ApplicationStartup = NewDefaultApplicationStartup()

type defaultApplicationStartup struct {
	idSeq int64
}

func NewDefaultApplicationStartup() *defaultApplicationStartup {
	return &defaultApplicationStartup{}
}

func (s *defaultApplicationStartup) Start(name string) StartupStep {
	return &defaultStep{
		name: name,
		id:   atomic.AddInt64(&s.idSeq, 1),
	}
}

type defaultStep struct {
	name string
	id   int64
}

func (s *defaultStep) GetName() string {
	return s.name
}

func (s *defaultStep) GetID() int64 {
	return s.id
}

func (s *defaultStep) GetParentID() (int64, bool) {
	return 0, false
}

func (s *defaultStep) Tag(key, value string) StartupStep {
	return s
}

func (s *defaultStep) TagFunc(key string, f func() string) StartupStep {
	return s
}

func (s *defaultStep) GetTags() Tags {
	return nil
}

func (s *defaultStep) End() {}
