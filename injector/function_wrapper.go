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
	"fmt"
	"reflect"

	"github.com/xfali/neve-ioc/bean"
)

// WrapBean 将带参数的bean工厂方法包装为无参数方法，参数在bean实例化时注入
// 其他类型的bean原样返回
func WrapBean(o interface{}, container bean.Container, injector Injector, manager ListenerManager) (interface{}, error) {
	// 如果是CustomBeanFactory则需要将创建bean方法的参数自动代理注入，变为无参数仅返回的创建方法
	if b, ok := o.(bean.CustomBeanFactory); ok {
		fac := b.BeanFactory()
		if reflect.TypeOf(fac).NumIn() == 0 {
			return o, nil
		}
		f, err := WrapBeanFactoryByNameFunc(fac, b.InjectNames(), container, injector, manager)
		if err != nil {
			return nil, err
		}
		return bean.NewCustomBeanFactoryWithOpts(f,
			bean.CustomBeanFactoryOpts.PreAfterSet(b.InitMethodName()),
			bean.CustomBeanFactoryOpts.PostDestroy(b.DestroyMethodName())), nil
	}
	return WrapBeanFactoryByNameFunc(o, nil, container, injector, manager)
}

func WrapBeanFactoryFunc(o interface{}, container bean.Container, injector Injector, manager ListenerManager) (interface{}, error) {
	return WrapBeanFactoryByNameFunc(o, nil, container, injector, manager)
}

// WrapBeanFactoryByNameFunc 按names指定的名称注入工厂方法参数，names为空时全部按类型注入
// 包装后的方法保持原方法的返回值，注入失败时panic，由bean.Resolve转换为error
func WrapBeanFactoryByNameFunc(o interface{}, names []string, container bean.Container, injector Injector, manager ListenerManager) (interface{}, error) {
	ft := reflect.TypeOf(o)
	if ft == nil || ft.Kind() != reflect.Func {
		return o, nil
	}
	pn := ft.NumIn()
	if pn == 0 {
		return o, nil
	}
	if ft.IsVariadic() {
		return o, fmt.Errorf("Bean Factory function: %s cannot be variadic ", ft.String())
	}
	if len(names) > 0 && pn != len(names) {
		return o, fmt.Errorf("Bean Factory function: %s have %d params but with %d names, Not match ", ft.String(), pn, len(names))
	}
	if ft.NumOut() == 0 {
		return o, fmt.Errorf("Bean Factory function: %s without any return value ", ft.String())
	}
	rt := ft.Out(0)
	if rt.Kind() != reflect.Ptr && rt.Kind() != reflect.Interface {
		return o, fmt.Errorf("Bean Factory function: %s 1st return value must be pointer or interface ", ft.String())
	}

	types := make([]reflect.Type, pn)
	for i := 0; i < pn; i++ {
		types[i] = ft.In(i)
		if !injector.CanInjectType(types[i]) {
			return o, fmt.Errorf("Bean Factory function: %s param %d cannot be injected ", ft.String(), i)
		}
	}
	outs := make([]reflect.Type, ft.NumOut())
	for i := range outs {
		outs[i] = ft.Out(i)
	}

	fv := reflect.ValueOf(o)
	retFv := reflect.MakeFunc(reflect.FuncOf(nil, outs, false), func(args []reflect.Value) (results []reflect.Value) {
		values, err := resolveParams(injector, container, manager, types, names)
		if err != nil {
			panic(fmt.Errorf("Inject function [%s] failed: %v ", ft.String(), err))
		}
		return fv.Call(values)
	})
	return retFv.Interface(), nil
}
