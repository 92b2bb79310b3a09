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
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	errors2 "github.com/xfali/neve-ioc/errors"
	"github.com/xfali/neve-ioc/reflection"
)

type instanceHook func(v reflect.Value) error

// 由工厂方法创建bean，根据作用域缓存或每次创建实例
type functionExDefinition struct {
	name    string
	o       interface{}
	fn      reflect.Value
	t       reflect.Type
	withErr bool
	meta    Metadata

	// 正在创建该bean的goroutine，用于检测循环依赖
	creators    map[int64]struct{}
	creatorLock sync.Mutex
	createLock  sync.Mutex

	singleton    reflect.Value
	instanceLock sync.RWMutex
	initOnce     int32
	destroyOnce  int32

	initHook    instanceHook
	destroyHook instanceHook
}

func verifyBeanFunctionEx(ft reflect.Type) error {
	if ft.Kind() != reflect.Func {
		return errors.New("Param not function ")
	}
	switch ft.NumOut() {
	case 1:
	case 2:
		if ft.Out(1) != ErrorType {
			return errors.New("Bean function 2nd return value must be error ")
		}
	default:
		return errors.New("Bean function must have 1 return value or (value, error) ")
	}

	rt := ft.Out(0)
	if rt.Kind() != reflect.Ptr && rt.Kind() != reflect.Interface {
		return errors.New("Bean function 1st return value must be pointer or interface ")
	}

	return nil
}

func newFunctionExDefinition(o interface{}) (Definition, error) {
	return newFunctionExDefinitionWithHooks(o, callInitializing, callDisposable)
}

func newFunctionExDefinitionWithHooks(o interface{}, initHook, destroyHook instanceHook) (*functionExDefinition, error) {
	ft := reflect.TypeOf(o)
	err := verifyBeanFunctionEx(ft)
	if err != nil {
		return nil, err
	}
	if ft.NumIn() > 0 {
		return nil, fmt.Errorf("Bean function %s has params, wrap it with injector before register ", ft.String())
	}
	ot := ft.Out(0)
	return &functionExDefinition{
		o:           o,
		name:        reflection.GetTypeName(ot),
		fn:          reflect.ValueOf(o),
		t:           ot,
		withErr:     ft.NumOut() == 2,
		meta:        newMetadata(),
		initHook:    initHook,
		destroyHook: destroyHook,
	}, nil
}

func (d *functionExDefinition) Type() reflect.Type {
	return d.t
}

func (d *functionExDefinition) Name() string {
	return d.name
}

func (d *functionExDefinition) isSingleton() bool {
	return d.meta.Scope != ScopePrototype
}

func (d *functionExDefinition) Value() reflect.Value {
	if !d.isSingleton() {
		return d.newPrototype()
	}
	if v := d.loadSingleton(); v.IsValid() {
		return v
	}

	d.enter()
	defer d.leave()

	d.createLock.Lock()
	defer d.createLock.Unlock()
	if v := d.loadSingleton(); v.IsValid() {
		return v
	}

	v := d.create()
	if isNilValue(v) {
		return v
	}

	d.instanceLock.Lock()
	d.singleton = v
	initialized := atomic.LoadInt32(&d.initOnce) == 1
	d.instanceLock.Unlock()

	// 容器初始化完成后才创建的单例立即回调
	if initialized {
		d.init(v)
	}
	return v
}

// 原型实例不由容器持有，创建后立即回调初始化且不参与销毁
func (d *functionExDefinition) newPrototype() reflect.Value {
	d.enter()
	defer d.leave()

	v := d.create()
	if isNilValue(v) {
		return v
	}
	d.init(v)
	return v
}

func (d *functionExDefinition) init(v reflect.Value) {
	if d.initHook != nil {
		if err := d.initHook(v); err != nil {
			panic(fmt.Errorf("Bean %s after set failed: %w ", d.name, err))
		}
	}
}

func (d *functionExDefinition) loadSingleton() reflect.Value {
	d.instanceLock.RLock()
	defer d.instanceLock.RUnlock()
	return d.singleton
}

// 同一goroutine重入创建即为循环依赖，不同goroutine并发创建互不影响
func (d *functionExDefinition) enter() {
	id := goroutineID()
	d.creatorLock.Lock()
	defer d.creatorLock.Unlock()
	if _, ok := d.creators[id]; ok {
		panic(fmt.Errorf("BeanDefinition: [Function] inject type [%s] Circular dependency ", d.name))
	}
	if d.creators == nil {
		d.creators = map[int64]struct{}{}
	}
	d.creators[id] = struct{}{}
}

func (d *functionExDefinition) leave() {
	id := goroutineID()
	d.creatorLock.Lock()
	defer d.creatorLock.Unlock()
	delete(d.creators, id)
}

func isNilValue(v reflect.Value) bool {
	if !v.IsValid() {
		return true
	}
	switch v.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

func (d *functionExDefinition) create() reflect.Value {
	rets := d.fn.Call(nil)
	if d.withErr {
		if e := rets[1]; !e.IsNil() {
			panic(fmt.Errorf("Bean %s create failed: %w ", d.name, e.Interface().(error)))
		}
	}
	v := rets[0]
	if v.Kind() == reflect.Interface && !v.IsNil() {
		v = v.Elem()
	}
	return v
}

func (d *functionExDefinition) Interface() interface{} {
	return d.o
}

func (d *functionExDefinition) IsObject() bool {
	return false
}

func (d *functionExDefinition) Instantiated() bool {
	return d.loadSingleton().IsValid()
}

// 仅单例由容器管理生命周期
func (d *functionExDefinition) snapshot() []reflect.Value {
	if v := d.loadSingleton(); v.IsValid() {
		return []reflect.Value{v}
	}
	return nil
}

func (d *functionExDefinition) AfterSet() error {
	// 与单例创建互斥，保证回调只执行一次
	d.instanceLock.Lock()
	first := atomic.CompareAndSwapInt32(&d.initOnce, 0, 1)
	v := d.singleton
	d.instanceLock.Unlock()
	if first && v.IsValid() && d.initHook != nil {
		return d.initHook(v)
	}
	return nil
}

func (d *functionExDefinition) Destroy() error {
	if atomic.CompareAndSwapInt32(&d.destroyOnce, 0, 1) {
		var errs errors2.Errors
		instances := d.snapshot()
		for i := len(instances) - 1; i >= 0; i-- {
			if d.destroyHook != nil {
				_ = errs.AddError(d.destroyHook(instances[i]))
			}
		}
		return errs.Err()
	}
	return nil
}

func (d *functionExDefinition) Classify(classifier Classifier) (bool, error) {
	var errs errors2.Errors
	ok := false
	for _, i := range d.snapshot() {
		ret, err := classifier.Classify(i.Interface())
		if ret {
			ok = ret
		}
		_ = errs.AddError(err)
	}
	return ok, errs.Err()
}

func (d *functionExDefinition) Meta() *Metadata {
	return &d.meta
}

func callInitializing(v reflect.Value) error {
	if o, ok := v.Interface().(Initializing); ok {
		return o.BeanAfterSet()
	}
	return nil
}

func callDisposable(v reflect.Value) error {
	if o, ok := v.Interface().(Disposable); ok {
		return o.BeanDestroy()
	}
	return nil
}
