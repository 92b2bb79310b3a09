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


package appcontext

import (
	"context"
	"time"
)

type BaseApplicationEvent struct {
	timestamp time.Time
	ctx       context.Context
}

func NewBaseApplicationEvent() *BaseApplicationEvent {
	return &BaseApplicationEvent{
		timestamp: time.Now(),
		ctx:       context.Background(),
	}
}

func (e *BaseApplicationEvent) ResetOccurredTime() {
	e.timestamp = time.Now()
}

func (e *BaseApplicationEvent) OccurredTime() time.Time {
	return e.timestamp
}

func (e *BaseApplicationEvent) SetEventContext(ctx context.Context) {
	e.ctx = ctx
}

func (e *BaseApplicationEvent) GetEventContext() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// ApplicationContextEvent ApplicationContext生命周期事件
type ApplicationContextEvent struct {
	BaseApplicationEvent
	appCtx ApplicationContext
}

func newApplicationContextEvent(appCtx ApplicationContext) ApplicationContextEvent {
	return ApplicationContextEvent{
		BaseApplicationEvent: *NewBaseApplicationEvent(),
		appCtx:               appCtx,
	}
}

func (e *ApplicationContextEvent) GetAppContext() ApplicationContext {
	return e.appCtx
}

// 服务启动后触发，Bean已经初始化完成，可以执行任意的业务逻辑
type ContextStartedEvent struct {
	ApplicationContextEvent
}

func NewContextStartedEvent(appCtx ApplicationContext) *ContextStartedEvent {
	return &ContextStartedEvent{newApplicationContextEvent(appCtx)}
}

// 服务停止后触发，应尽快做清理工作
type ContextStoppedEvent struct {
	ApplicationContextEvent
}

func NewContextStoppedEvent(appCtx ApplicationContext) *ContextStoppedEvent {
	return &ContextStoppedEvent{newApplicationContextEvent(appCtx)}
}

// 已到达ApplicationContext生命周期末端，应用即将退出
type ContextClosedEvent struct {
	ApplicationContextEvent
}

func NewContextClosedEvent(appCtx ApplicationContext) *ContextClosedEvent {
	return &ContextClosedEvent{newApplicationContextEvent(appCtx)}
}

// GetEventContext 从事件中提取事件context
// e实现了EventContextHolder时返回事件的context，否则返回defaultCtx
func GetEventContext(e ApplicationEvent, defaultCtx context.Context) context.Context {
	if ev, ok := e.(EventContextHolder); ok {
		if ctx := ev.GetEventContext(); ctx != nil {
			return ctx
		}
	}
	return defaultCtx
}
