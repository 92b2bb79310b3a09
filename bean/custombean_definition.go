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

package bean

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/xfali/neve-ioc/reflection"
)

type CustomBeanFactory interface {
	// 返回或者创建bean的方法
	// 该方法可能包含一个或者多个参数，参数会在实例化时自动注入
	// 该方法只能有一个返回值（或者值与error），返回的值将被注入到依赖该类型值的对象中
	BeanFactory() interface{}

	// BeanFactory返回创建bean方法如果带参数，且参数需要指定注入名称时将根据InjectNames返回的名称列表进行匹配
	// 注意：
	// 1、如果所有参数都不需要名称匹配，则返回nil
	// 2、如果需要使用名称匹配则：返回的string数组长度需要与创建bean方法的参数个数一致
	// 3、如果需要部分匹配，则需要自动匹配的参数对应的name填入空字符串""
	InjectNames() []string

	// BeanFactory返回值包含的初始化方法名，可为空
	InitMethodName() string

	// BeanFactory返回值包含的销毁方法名，可为空
	DestroyMethodName() string
}

type defaultCustomBeanFactory struct {
	beanFunc      interface{}
	names         []string
	initMethod    string
	destroyMethod string
}

type CustomBeanFactoryOpt func(*defaultCustomBeanFactory)

func NewCustomBeanFactory(beanFunc interface{}, initMethod, destroyMethod string) *defaultCustomBeanFactory {
	return NewCustomBeanFactoryWithName(beanFunc, nil, initMethod, destroyMethod)
}

func NewCustomBeanFactoryWithName(beanFunc interface{}, names []string, initMethod, destroyMethod string) *defaultCustomBeanFactory {
	return NewCustomBeanFactoryWithOpts(beanFunc,
		CustomBeanFactoryOpts.Names(names),
		CustomBeanFactoryOpts.PreAfterSet(initMethod),
		CustomBeanFactoryOpts.PostDestroy(destroyMethod))
}

func NewCustomBeanFactoryWithOpts(beanFunc interface{}, opts ...CustomBeanFactoryOpt) *defaultCustomBeanFactory {
	ft := reflect.TypeOf(beanFunc)
	if err := verifyBeanFunctionEx(ft); err != nil {
		panic(fmt.Errorf("NewCustomBeanFactory with a invalid function type: %s, error: %v", ft.String(), err))
	}
	ret := &defaultCustomBeanFactory{
		beanFunc: beanFunc,
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

type customBeanFactoryOpts struct{}

var CustomBeanFactoryOpts customBeanFactoryOpts

func (o customBeanFactoryOpts) Names(names []string) CustomBeanFactoryOpt {
	return func(f *defaultCustomBeanFactory) {
		f.names = names
	}
}

// 配置创建后调用的初始化方法
func (o customBeanFactoryOpts) PreAfterSet(method string) CustomBeanFactoryOpt {
	return func(f *defaultCustomBeanFactory) {
		f.initMethod = method
	}
}

// 配置销毁时调用的方法
func (o customBeanFactoryOpts) PostDestroy(method string) CustomBeanFactoryOpt {
	return func(f *defaultCustomBeanFactory) {
		f.destroyMethod = method
	}
}

func (b *defaultCustomBeanFactory) BeanFactory() interface{} {
	return b.beanFunc
}

func (b *defaultCustomBeanFactory) InjectNames() []string {
	return b.names
}

func (b *defaultCustomBeanFactory) InitMethodName() string {
	return b.initMethod
}

func (b *defaultCustomBeanFactory) DestroyMethodName() string {
	return b.destroyMethod
}

func newCustomMethodBeanDefinition(b CustomBeanFactory) (Definition, error) {
	initName := b.InitMethodName()
	destroyName := b.DestroyMethodName()
	d, err := newFunctionExDefinitionWithHooks(b.BeanFactory(),
		func(v reflect.Value) error {
			if err := callInitializing(v); err != nil {
				return err
			}
			return callByName(v, initName)
		},
		func(v reflect.Value) error {
			if err := callByName(v, destroyName); err != nil {
				return err
			}
			return callDisposable(v)
		})
	if err != nil {
		return nil, err
	}
	if err := verifyMethod(d.t, initName); err != nil {
		return nil, err
	}
	if err := verifyMethod(d.t, destroyName); err != nil {
		return nil, err
	}
	return d, nil
}

func checkPublic(name string) bool {
	return name[0] >= 'A' && name[0] <= 'Z'
}

func verifyMethod(t reflect.Type, name string) error {
	if name == "" {
		return nil
	}
	if !checkPublic(name) {
		return fmt.Errorf("Type %s method %s is private ", reflection.GetTypeName(t), name)
	}
	m, ok := t.MethodByName(name)
	if !ok {
		return fmt.Errorf("Type %s method %s not found ", reflection.GetTypeName(t), name)
	}
	in := m.Type.NumIn()
	// 接口方法不包含receiver
	if t.Kind() != reflect.Interface {
		in--
	}
	if in != 0 {
		return fmt.Errorf("Type %s method %s cannot with params ", reflection.GetTypeName(t), name)
	}
	return nil
}

func callByName(value reflect.Value, name string) error {
	if name == "" {
		return nil
	}
	m := value.MethodByName(name)
	if !m.IsValid() {
		return fmt.Errorf("%s method %s is invalid", reflection.GetTypeName(value.Type()), name)
	}
	rets := m.Call(nil)
	for i := len(rets) - 1; i >= 0; i-- {
		ret := rets[i]
		if ret.IsValid() && ret.Type().Implements(ErrorType) && !ret.IsNil() {
			return ret.Interface().(error)
		}
	}
	return nil
}

type singletonFunction struct {
	once sync.Once
	f    interface{}

	ret []reflect.Value
}

func (f *singletonFunction) get() interface{} {
	ft := reflect.TypeOf(f.f)
	if err := verifyBeanFunctionEx(ft); err != nil {
		panic(err)
	}

	retFv := reflect.MakeFunc(ft, func(args []reflect.Value) (results []reflect.Value) {
		f.once.Do(func() {
			fv := reflect.ValueOf(f.f)
			f.ret = fv.Call(args)
		})
		return f.ret
	})
	return retFv.Interface()
}

// SingletonFactory 包装工厂方法，使其只被调用一次
func SingletonFactory(function interface{}) interface{} {
	s := singletonFunction{
		f: function,
	}
	return s.get()
}
