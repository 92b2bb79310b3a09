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

type ApplicationEvent interface {
	// 事件发生的时间
	OccurredTime() time.Time
}

// EventContextHolder 携带context的事件
type EventContextHolder interface {
	GetEventContext() context.Context
}

type ApplicationEventPublisher interface {
	// 异步发送事件，事件队列满时返回错误
	PublishEvent(e ApplicationEvent) error

	// 异步发送事件，事件队列满时等待直到ctx结束
	PostEvent(ctx context.Context, e ApplicationEvent) error

	// 同步发送事件
	SendEvent(e ApplicationEvent) error
}

type ApplicationEventListener interface {
	// 默认事件监听器接口
	// 监听器应尽快处理事件，耗时操作请使用协程
	OnApplicationEvent(e ApplicationEvent)
}

type ApplicationEventConsumerRegistry interface {
	// consumer: ApplicationEvent消费方法，类型func(ApplicationEvent)
	RegisterApplicationEventConsumer(consumer interface{}) error
}

type ApplicationEventConsumerListener interface {
	ApplicationEventListener
	ApplicationEventConsumerRegistry
}

type ApplicationEventConsumer interface {
	// 获得ApplicationEvent消费方法，类型func(ApplicationEvent)
	// 方法应尽快处理事件，耗时操作请使用协程
	RegisterConsumer(registry ApplicationEventConsumerRegistry) error
}

type ApplicationEventHandler interface {
	// 增加事件监听器
	// 监听器应尽快处理事件，耗时操作请使用协程
	AddListeners(listeners ...interface{})
}

type ApplicationEventProcessor interface {
	ApplicationEventPublisher
	ApplicationEventHandler

	// 同步通知事件
	// 不同于PublishEvent，NotifyEvent在Processor Close之后仍然能向Listener发送事件。
	NotifyEvent(e ApplicationEvent) error

	// 启动处理器，如有初始化操作必须定义在该方法
	Start() error

	// 停止处理，与Start方法对应，如有针对Start初始化的清理操作必须定义在该方法
	Close() error
}
