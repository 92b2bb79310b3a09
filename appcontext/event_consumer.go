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
	"errors"
	"reflect"
)

var eventType = reflect.TypeOf((*ApplicationEvent)(nil)).Elem()

type ConsumerInvoker interface {
	// 消费，data类型不匹配时返回false
	Invoke(data interface{}) bool

	// 检查consumer是否符合类型要求
	ResolveConsumer(consumer interface{}) error
}

// funcInvoker 包装func(T)，event为true时T必须实现ApplicationEvent
type funcInvoker struct {
	event bool
	et    reflect.Type
	fv    reflect.Value
}

func (invoker *funcInvoker) ResolveConsumer(consumer interface{}) error {
	t := reflect.TypeOf(consumer)
	if t == nil || t.Kind() != reflect.Func {
		return errors.New("Param is not a function. ")
	}
	if t.NumIn() != 1 {
		return errors.New("Param is not match, expect func(T). ")
	}
	et := t.In(0)
	if invoker.event && !et.AssignableTo(eventType) {
		return errors.New("Param is not match, function param must Implements ApplicationEvent. ")
	}
	invoker.et = et
	invoker.fv = reflect.ValueOf(consumer)
	return nil
}

func (invoker *funcInvoker) Invoke(data interface{}) bool {
	t := reflect.TypeOf(data)
	if t == nil || !t.AssignableTo(invoker.et) {
		return false
	}
	invoker.fv.Call([]reflect.Value{reflect.ValueOf(data)})
	return true
}

// eventConsumerListener 将func(EventType)形式的消费方法转换为监听器
type eventConsumerListener struct {
	invokers []ConsumerInvoker
}

func defaultConsumerListenerFac() ApplicationEventConsumerListener {
	return &eventConsumerListener{}
}

func (l *eventConsumerListener) RegisterApplicationEventConsumer(consumer interface{}) error {
	invoker := &funcInvoker{event: true}
	if err := invoker.ResolveConsumer(consumer); err != nil {
		return err
	}
	l.invokers = append(l.invokers, invoker)
	return nil
}

func (l *eventConsumerListener) OnApplicationEvent(e ApplicationEvent) {
	for _, invoker := range l.invokers {
		invoker.Invoke(e)
	}
}

type PayloadApplicationEvent struct {
	BaseApplicationEvent
	payload interface{}
}

// NewPayloadApplicationEvent payload为nil时返回nil
func NewPayloadApplicationEvent(payload interface{}) *PayloadApplicationEvent {
	if payload == nil {
		return nil
	}
	return &PayloadApplicationEvent{
		BaseApplicationEvent: *NewBaseApplicationEvent(),
		payload:              payload,
	}
}

func (e *PayloadApplicationEvent) GetPayload() interface{} {
	return e.payload
}

// PayloadEventListener 监听PayloadApplicationEvent，将payload交给类型匹配的消费方法
type PayloadEventListener struct {
	invokers []ConsumerInvoker
}

// consumer: 获得payload的消费方法，类型func(Type)
func NewPayloadEventListener(consumer ...interface{}) *PayloadEventListener {
	ret := &PayloadEventListener{
		invokers: make([]ConsumerInvoker, 0, len(consumer)),
	}
	err := ret.RefreshPayloadHandler(consumer...)
	if err != nil {
		panic(err)
	}
	return ret
}

func (l *PayloadEventListener) RefreshPayloadHandler(consumer ...interface{}) error {
	if len(consumer) == 0 {
		return errors.New("Payload consumer is empty. ")
	}
	for _, o := range consumer {
		if err := l.RegisterApplicationEventConsumer(o); err != nil {
			return err
		}
	}
	return nil
}

func (l *PayloadEventListener) RegisterApplicationEventConsumer(consumer interface{}) error {
	invoker := &funcInvoker{}
	if err := invoker.ResolveConsumer(consumer); err != nil {
		return err
	}
	l.invokers = append(l.invokers, invoker)
	return nil
}

func (l *PayloadEventListener) OnApplicationEvent(e ApplicationEvent) {
	pe, ok := e.(*PayloadApplicationEvent)
	if !ok {
		return
	}
	for _, invoker := range l.invokers {
		invoker.Invoke(pe.payload)
	}
}
