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
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/xfali/neve-ioc/bean"
	errors2 "github.com/xfali/neve-ioc/errors"
	"github.com/xfali/neve-ioc/reflection"
	"github.com/xfali/xlog"
)

type defaultInjectInvoker struct {
	types    []reflect.Type
	names    []string
	fv       reflect.Value
	funcName string
}

func (invoker *defaultInjectInvoker) Invoke(ij Injector, container bean.Container, manager ListenerManager) error {
	values, err := resolveParams(ij, container, manager, invoker.types, invoker.names)
	if err != nil {
		return fmt.Errorf("Inject function [%s] failed: %v ", invoker.FunctionName(), err)
	}
	invoker.fv.Call(values)
	return nil
}

// 注入方法参数，name可附带tag选项，如"dataSource,omiterror"
func resolveParams(ij Injector, container bean.Container, manager ListenerManager, types []reflect.Type, names []string) ([]reflect.Value, error) {
	values := make([]reflect.Value, len(types))
	for i, t := range types {
		o := reflect.New(t).Elem()
		name := ""
		if i < len(names) {
			name = names[i]
		}
		var listeners []Listener
		if manager != nil {
			name, listeners = manager.ParseListener(name)
		}
		err := ij.InjectValue(container, name, o)
		if err != nil {
			err = fmt.Errorf("param %d [%s] error: %v", i, reflection.GetTypeName(t), err)
			if len(listeners) == 0 {
				return nil, err
			}
			if err = notifyFailed(listeners, err); err != nil {
				return nil, err
			}
		}
		values[i] = o
	}
	return values, nil
}

func (invoker *defaultInjectInvoker) FunctionName() string {
	return invoker.funcName
}

func (invoker *defaultInjectInvoker) ResolveFunction(injector Injector, names []string, function interface{}) error {
	if function == nil {
		return errors.New("Param is nil. ")
	}
	t := reflect.TypeOf(function)
	if t.Kind() != reflect.Func {
		return errors.New("Param is not a function. ")
	}

	s := t.NumIn()
	if s == 0 {
		return errors.New("Param is not match, expect func(Type1, Type2...TypeN). ")
	}

	if len(names) > 0 {
		invoker.names = formatNames(names, s)
	}

	for i := 0; i < s; i++ {
		tt := t.In(i)
		if !injector.CanInjectType(tt) {
			return fmt.Errorf("Cannot Inject Type : %s . ", reflection.GetTypeName(tt))
		}
		invoker.types = append(invoker.types, tt)
	}
	invoker.fv = reflect.ValueOf(function)
	invoker.funcName = t.String()
	return nil
}

func formatNames(names []string, size int) []string {
	srcSize := len(names)
	if srcSize == size {
		return names
	} else if srcSize > size {
		return names[:size]
	}
	ret := make([]string, size)
	copy(ret, names)
	return ret
}

type defaultInjectFunctionHandler struct {
	logger   xlog.Logger
	injector Injector
	creator  func() FunctionInjectInvoker

	lm       ListenerManager
	invokers []FunctionInjectInvoker
	locker   sync.Mutex
}

func NewDefaultInjectFunctionHandler(logger xlog.Logger, manager ListenerManager) *defaultInjectFunctionHandler {
	if logger == nil {
		logger = xlog.GetLogger()
	}
	return &defaultInjectFunctionHandler{
		logger:  logger,
		creator: create,
		lm:      manager,
	}
}

func (fi *defaultInjectFunctionHandler) SetListenerManager(manager ListenerManager) {
	fi.lm = manager
}

func (fi *defaultInjectFunctionHandler) SetInjector(injector Injector) {
	fi.injector = injector
}

func (fi *defaultInjectFunctionHandler) InjectAllFunctions(container bean.Container) error {
	fi.locker.Lock()
	invokers := fi.invokers
	fi.invokers = nil
	fi.locker.Unlock()

	var errs errors2.Errors
	for _, invoker := range invokers {
		err := invoker.Invoke(fi.injector, container, fi.lm)
		if err != nil {
			fi.logger.Errorln(err)
			_ = errs.AddError(err)
		}
	}
	return errs.Err()
}

func create() FunctionInjectInvoker {
	return &defaultInjectInvoker{}
}

func (fi *defaultInjectFunctionHandler) RegisterInjectFunction(function interface{}, names ...string) error {
	if fi.injector == nil {
		return errors.New("Injector is nil. ")
	}
	invoker := fi.creator()
	if err := invoker.ResolveFunction(fi.injector, names, function); err != nil {
		return err
	}
	fi.locker.Lock()
	defer fi.locker.Unlock()

	fi.invokers = append(fi.invokers, invoker)
	return nil
}
