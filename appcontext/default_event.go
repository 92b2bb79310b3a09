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
	"errors"
	"sync"

	"github.com/xfali/neve-ioc/bean"
	"github.com/xfali/neve-ioc/order"
	"github.com/xfali/xlog"
)

const (
	defaultEventBufferSize = 4096
)

var (
	errEventDisabled   = errors.New("Application event process: Disabled. ")
	errEventNotRunning = errors.New("Event Processor not running. ")
	errEventNil        = errors.New("Event is nil. ")
	errEventQueueFull  = errors.New("Event queue is full. ")
)

type defaultEventProcessor struct {
	logger xlog.Logger

	// 元素为order.Sourced，按监听器对象声明的顺序排列
	listeners    []interface{}
	listenerLock sync.Mutex

	eventBufSize int
	eventChan    chan ApplicationEvent

	consumerListenerFac func() ApplicationEventConsumerListener

	stopChan   chan struct{}
	finishChan chan struct{}
	started    bool
	stateLock  sync.Mutex
}

type EventProcessorOpt func(processor *defaultEventProcessor)

func NewEventProcessor(opts ...EventProcessorOpt) *defaultEventProcessor {
	ret := &defaultEventProcessor{
		logger:              xlog.GetLogger(),
		eventBufSize:        defaultEventBufferSize,
		consumerListenerFac: defaultConsumerListenerFac,
	}

	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func OptSetEventProcessorLogger(logger xlog.Logger) EventProcessorOpt {
	return func(proc *defaultEventProcessor) {
		proc.logger = logger
	}
}

// set event channel buffer size
func OptSetEventBufferSize(size int) EventProcessorOpt {
	return func(proc *defaultEventProcessor) {
		proc.eventBufSize = size
	}
}

func OptSetConsumerListenerFactory(fac func() ApplicationEventConsumerListener) EventProcessorOpt {
	return func(processor *defaultEventProcessor) {
		processor.consumerListenerFac = fac
	}
}

// 事件处理器由ApplicationContext管理，属于框架内部bean
func (h *defaultEventProcessor) BeanRole() bean.Role {
	return bean.RoleInfrastructure
}

func (h *defaultEventProcessor) Start() error {
	h.stateLock.Lock()
	defer h.stateLock.Unlock()

	if h.started {
		return errors.New("Event Processor already started. ")
	}
	h.eventChan = make(chan ApplicationEvent, h.eventBufSize)
	h.stopChan = make(chan struct{})
	h.finishChan = make(chan struct{})
	h.started = true

	go h.eventLoop(h.eventChan, h.stopChan, h.finishChan)

	return nil
}

func (h *defaultEventProcessor) Close() error {
	h.stateLock.Lock()
	if !h.started {
		h.stateLock.Unlock()
		return nil
	}
	h.started = false
	stopChan, finishChan := h.stopChan, h.finishChan
	h.stateLock.Unlock()

	close(stopChan)
	//wait for eventLoop exit
	<-finishChan
	h.logger.Infoln("Event Processor closed.")
	return nil
}

// AddListeners 非监听器对象被忽略
// 监听器按照源对象的顺序（order.Ordered）通知，顺序相同时按添加顺序
func (h *defaultEventProcessor) AddListeners(listeners ...interface{}) {
	for _, o := range listeners {
		l := h.toListener(o)
		if l == nil {
			continue
		}
		h.listenerLock.Lock()
		h.listeners = append(h.listeners, order.Wrap(l, order.GetOrder(o, order.LowestPrecedence), true))
		order.Sort(h.listeners)
		h.listenerLock.Unlock()
	}
}

func (h *defaultEventProcessor) toListener(o interface{}) ApplicationEventListener {
	if l, ok := o.(ApplicationEventListener); ok {
		return l
	}

	l := h.consumerListenerFac()
	if c, ok := o.(ApplicationEventConsumer); ok {
		if err := c.RegisterConsumer(l); err != nil {
			h.logger.Errorln(err)
			return nil
		}
		return l
	}
	// 消费方法 func(ApplicationEvent)
	if err := l.RegisterApplicationEventConsumer(o); err != nil {
		return nil
	}
	return l
}

func (h *defaultEventProcessor) channel() (chan ApplicationEvent, chan struct{}, error) {
	h.stateLock.Lock()
	defer h.stateLock.Unlock()

	if !h.started {
		return nil, nil, errEventNotRunning
	}
	return h.eventChan, h.stopChan, nil
}

func (h *defaultEventProcessor) notifyEvent(e ApplicationEvent) {
	h.listenerLock.Lock()
	listeners := make([]interface{}, len(h.listeners))
	copy(listeners, h.listeners)
	h.listenerLock.Unlock()

	for _, v := range listeners {
		h.invokeListener(v.(order.Sourced).Unwrap().(ApplicationEventListener), e)
	}
}

func (h *defaultEventProcessor) invokeListener(l ApplicationEventListener, e ApplicationEvent) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Errorf("Event listener %T panic with event %T: %v\n", l, e, r)
		}
	}()
	l.OnApplicationEvent(e)
}

func (h *defaultEventProcessor) eventLoop(eventChan chan ApplicationEvent, stopChan, finishChan chan struct{}) {
	defer close(finishChan)
	for {
		select {
		case <-stopChan:
			// 处理剩余的事件
			for {
				select {
				case e := <-eventChan:
					h.notifyEvent(e)
				default:
					return
				}
			}
		case e := <-eventChan:
			h.notifyEvent(e)
		}
	}
}

func (h *defaultEventProcessor) PublishEvent(e ApplicationEvent) error {
	if e == nil {
		return errEventNil
	}
	ch, stop, err := h.channel()
	if err != nil {
		return err
	}
	select {
	case <-stop:
		return errEventNotRunning
	default:
	}
	select {
	case ch <- e:
		return nil
	default:
		return errEventQueueFull
	}
}

func (h *defaultEventProcessor) PostEvent(ctx context.Context, e ApplicationEvent) error {
	if e == nil {
		return errEventNil
	}
	ch, stop, err := h.channel()
	if err != nil {
		return err
	}
	select {
	case ch <- e:
		return nil
	case <-stop:
		return errEventNotRunning
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *defaultEventProcessor) SendEvent(e ApplicationEvent) error {
	if e == nil {
		return errEventNil
	}
	h.notifyEvent(e)
	return nil
}

func (h *defaultEventProcessor) NotifyEvent(e ApplicationEvent) error {
	return h.SendEvent(e)
}

type dummyEventProc struct{}

func NewDisableEventProcessor() *dummyEventProc {
	return &dummyEventProc{}
}

func (p *dummyEventProc) BeanRole() bean.Role {
	return bean.RoleInfrastructure
}

func (p *dummyEventProc) NotifyEvent(e ApplicationEvent) error {
	return errEventDisabled
}

func (p *dummyEventProc) PublishEvent(e ApplicationEvent) error {
	return errEventDisabled
}

func (p *dummyEventProc) PostEvent(ctx context.Context, e ApplicationEvent) error {
	return errEventDisabled
}

func (p *dummyEventProc) SendEvent(e ApplicationEvent) error {
	return errEventDisabled
}

func (p *dummyEventProc) AddListeners(listeners ...interface{}) {}

func (p *dummyEventProc) Start() error {
	return nil
}

func (p *dummyEventProc) Close() error {
	return nil
}
