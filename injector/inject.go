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


package injector

import (
	"reflect"
	"strings"

	"github.com/xfali/neve-ioc/bean"
	"github.com/xfali/xlog"
)

const (
	defaultInjectTagName    = "inject"
	defaultRequiredTagField = "required"
	defaultOmitTagField     = "omiterror"
)

var (
	InjectTagName    = defaultInjectTagName
	RequiredTagField = defaultRequiredTagField
	OmitTagField     = defaultOmitTagField
)

type Injector interface {
	// 是否可以注入，是返回true，否则返回false
	CanInject(o interface{}) bool

	// 从对象容器中注入对象到参数o
	// return: 当注入出错时返回
	Inject(container bean.Container, o interface{}) error

	// 类型是否可以注入
	CanInjectType(t reflect.Type) bool

	// 从对象容器中注入对象到value
	InjectValue(c bean.Container, name string, v reflect.Value) error
}

type Actuator func(c bean.Container, name string, v reflect.Value) error

// Listener 注入失败监听器，返回nil表示忽略该错误
type Listener interface {
	OnInjectFailed(err error) error
}

type ListenerManager interface {
	// 添加tag字段对应的监听器
	AddListener(field string, listener Listener)

	// 解析tag，返回注入名称及对应的监听器
	ParseListener(tag string) (string, []Listener)
}

// OmitErrorListener 仅记录错误日志
type OmitErrorListener struct {
	logger xlog.Logger
}

func NewOmitErrorListener(logger xlog.Logger) *OmitErrorListener {
	return &OmitErrorListener{
		logger: logger.WithDepth(2),
	}
}

func (l *OmitErrorListener) OnInjectFailed(err error) error {
	l.logger.Errorln(err)
	return nil
}

// RequiredListener 返回错误，注入失败
type RequiredListener struct{}

func NewRequiredListener() *RequiredListener {
	return &RequiredListener{}
}

func (l *RequiredListener) OnInjectFailed(err error) error {
	return err
}

type defaultListenerManager struct {
	listeners map[string]Listener
}

func NewListenerManager(param ...xlog.Logger) *defaultListenerManager {
	var logger xlog.Logger
	if len(param) > 0 {
		logger = param[0]
	} else {
		logger = xlog.GetLogger()
	}
	return &defaultListenerManager{
		listeners: map[string]Listener{
			RequiredTagField: NewRequiredListener(),
			OmitTagField:     NewOmitErrorListener(logger),
		},
	}
}

func (mgr *defaultListenerManager) AddListener(field string, listener Listener) {
	if listener != nil {
		mgr.listeners[field] = listener
	}
}

func (mgr *defaultListenerManager) ParseListener(tag string) (string, []Listener) {
	strs := strings.Split(tag, ",")
	opts := strs[1:]
	// default must be required
	if len(opts) == 0 {
		opts = []string{RequiredTagField}
	}

	ret := make([]Listener, 0, len(opts))
	for _, v := range opts {
		l := mgr.listeners[strings.TrimSpace(v)]
		if l != nil {
			ret = append(ret, l)
		}
	}

	return strings.TrimSpace(strs[0]), ret
}

// 依次通知监听器，返回最后一个未被忽略的错误
func notifyFailed(listeners []Listener, err error) error {
	var ret error
	for _, l := range listeners {
		if e := l.OnInjectFailed(err); e != nil {
			ret = e
		}
	}
	return ret
}
