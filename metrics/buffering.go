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


package metrics

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/xfali/xlog"
)

// TimelineEvent 已结束的步骤
type TimelineEvent struct {
	Step      StartupStep
	StartTime time.Time
	EndTime   time.Time
}

func (e TimelineEvent) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

// StartupTimeline 启动时间线
type StartupTimeline struct {
	StartTime time.Time
	Events    []TimelineEvent
}

type StepFilter func(step StartupStep) bool

// NamePrefixFilter 只记录名称以prefix开头的步骤
func NamePrefixFilter(prefix string) StepFilter {
	return func(step StartupStep) bool {
		return strings.HasPrefix(step.GetName(), prefix)
	}
}

// BufferingApplicationStartup 将结束的步骤记录到容量有限的时间线中
type BufferingApplicationStartup struct {
	logger    xlog.Logger
	capacity  int
	startTime time.Time
	idSeq     int64
	started   bool
	dropped   bool

	filters []StepFilter
	active  []*bufferedStep
	events  []TimelineEvent
	lock    sync.Mutex

	now func() time.Time
}

type BufferingOpt func(*BufferingApplicationStartup)

func NewBufferingApplicationStartup(capacity int, opts ...BufferingOpt) *BufferingApplicationStartup {
	ret := &BufferingApplicationStartup{
		logger:   xlog.GetLogger(),
		capacity: capacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.startTime = ret.now()
	return ret
}

func OptBufferingSetLogger(v xlog.Logger) BufferingOpt {
	return func(s *BufferingApplicationStartup) {
		s.logger = v
	}
}

// 配置时间来源
func OptBufferingSetClock(now func() time.Time) BufferingOpt {
	return func(s *BufferingApplicationStartup) {
		if now != nil {
			s.now = now
		}
	}
}

// StartRecording 重置时间线开始时间，只能在第一个步骤开始前调用
func (s *BufferingApplicationStartup) StartRecording() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.started {
		return errors.New("Cannot restart recording once steps have been buffered. ")
	}
	s.startTime = s.now()
	return nil
}

// AddFilter 添加过滤器，步骤结束时所有过滤器都返回true才会被记录
func (s *BufferingApplicationStartup) AddFilter(filter StepFilter) {
	if filter == nil {
		return
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	s.filters = append(s.filters, filter)
}

func (s *BufferingApplicationStartup) Start(name string) StartupStep {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.started = true
	s.idSeq++
	step := &bufferedStep{
		name:     name,
		id:       s.idSeq,
		start:    s.now(),
		recorder: s.record,
	}
	if n := len(s.active); n > 0 {
		step.parentID = s.active[n-1].id
		step.hasParent = true
	}
	s.active = append(s.active, step)
	return step
}

func (s *BufferingApplicationStartup) record(step *bufferedStep) {
	s.lock.Lock()
	defer s.lock.Unlock()

	step.end = s.now()
	for i := len(s.active) - 1; i >= 0; i-- {
		if s.active[i] == step {
			s.active = append(s.active[:i], s.active[i+1:]...)
			break
		}
	}
	// 过滤在结束时进行，被过滤的步骤仍作为子步骤的父步骤
	for _, f := range s.filters {
		if !f(step) {
			return
		}
	}
	if len(s.events) >= s.capacity {
		if !s.dropped {
			s.dropped = true
			s.logger.Warnf("Startup timeline is full (capacity %d), step %s dropped\n", s.capacity, step.name)
		}
		return
	}
	s.events = append(s.events, TimelineEvent{
		Step:      step,
		StartTime: step.start,
		EndTime:   step.end,
	})
}

// GetBufferedTimeline 获得当前时间线的副本
func (s *BufferingApplicationStartup) GetBufferedTimeline() StartupTimeline {
	s.lock.Lock()
	defer s.lock.Unlock()

	return StartupTimeline{
		StartTime: s.startTime,
		Events:    append([]TimelineEvent(nil), s.events...),
	}
}

// DrainBufferedTimeline 获得当前时间线并清空缓存
func (s *BufferingApplicationStartup) DrainBufferedTimeline() StartupTimeline {
	s.lock.Lock()
	defer s.lock.Unlock()

	ret := StartupTimeline{
		StartTime: s.startTime,
		Events:    s.events,
	}
	s.events = nil
	s.dropped = false
	return ret
}

type bufferedStep struct {
	name      string
	id        int64
	parentID  int64
	hasParent bool
	start     time.Time
	end       time.Time

	tags     Tags
	ended    bool
	recorder func(*bufferedStep)
	lock     sync.Mutex
}

func (s *bufferedStep) GetName() string {
	return s.name
}

func (s *bufferedStep) GetID() int64 {
	return s.id
}

func (s *bufferedStep) GetParentID() (int64, bool) {
	return s.parentID, s.hasParent
}

func (s *bufferedStep) Tag(key, value string) StartupStep {
	s.lock.Lock()
	defer s.lock.Unlock()

	if !s.ended {
		s.tags = append(s.tags, Tag{Key: key, Value: value})
	}
	return s
}

func (s *bufferedStep) TagFunc(key string, f func() string) StartupStep {
	s.lock.Lock()
	ended := s.ended
	s.lock.Unlock()
	if f == nil || ended {
		return s
	}
	return s.Tag(key, f())
}

func (s *bufferedStep) GetTags() Tags {
	s.lock.Lock()
	defer s.lock.Unlock()
	return append(Tags(nil), s.tags...)
}

func (s *bufferedStep) End() {
	s.lock.Lock()
	if s.ended {
		s.lock.Unlock()
		return
	}
	s.ended = true
	s.lock.Unlock()

	s.recorder(s)
}
