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
	"reflect"
	"sync"

	"github.com/xfali/goutils/container/skiplist"
	"github.com/xfali/neve-ioc/reflection"
)

const (
	defaultPoolSize    = 128
	defaultEnableCache = true
)

type Container interface {
	// 注册对象，名称使用对象类型名称，函数使用返回值类型名称
	Register(o interface{}, opts ...RegisterOpt) error

	// 使用指定名称注册对象
	RegisterByName(name string, o interface{}, opts ...RegisterOpt) error

	// 以别名保存definition，别名不参与Scan
	PutDefinition(name string, definition Definition) error

	GetDefinition(name string) (Definition, bool)

	// 根据名称获得对象
	Get(name string) (interface{}, bool)

	// 根据参数类型获得对象并赋值，参数必须为指针。
	// 先按类型名查找，未命中时从可赋值的bean中选择唯一候选或唯一primary
	GetByType(o interface{}) bool

	// 按注册顺序遍历，f返回false时停止
	Scan(f func(key string, value Definition) bool)

	// 按Scan顺序返回所有名称（不包含别名）
	Names() []string
}

type ContainerOpt func(*defaultContainer)

type defaultContainer struct {
	enableCache   bool
	scopeResolver ScopeMetadataResolver
	objectPool    *pool
}

func NewContainer(opts ...ContainerOpt) *defaultContainer {
	ret := &defaultContainer{
		enableCache:   defaultEnableCache,
		scopeResolver: NewDefaultScopeResolver(),
	}
	for _, opt := range opts {
		opt(ret)
	}

	ret.objectPool = newPool(defaultPoolSize, ret.enableCache)
	return ret
}

// 配置是否开启key缓存，用于提高scan的性能
// true为开启，false为关闭
// 默认开启
func OptContainerEnableCache(flag bool) ContainerOpt {
	return func(container *defaultContainer) {
		container.enableCache = flag
	}
}

// 配置作用域解析器
func OptSetScopeResolver(resolver ScopeMetadataResolver) ContainerOpt {
	return func(container *defaultContainer) {
		if resolver != nil {
			container.scopeResolver = resolver
		}
	}
}

type elem struct {
	def   Definition
	order int
	alias bool
}

type pool struct {
	l *skiplist.SkipList
	m map[string]*elem

	k     []string
	cache bool
	dirty bool

	locker sync.Mutex
}

func newPool(initSize int, cacheKey bool) *pool {
	ret := &pool{
		m:     make(map[string]*elem, initSize),
		l:     skiplist.New(skiplist.SetKeyCompareFunc(skiplist.CompareInt)),
		cache: cacheKey,
		dirty: true,
	}
	return ret
}

func (p *pool) keys() []string {
	p.locker.Lock()
	defer p.locker.Unlock()

	if p.cache && !p.dirty {
		return p.k
	}

	if p.l.Len() == 0 {
		return nil
	}

	ret := make([]string, 0, len(p.m))
	for x := p.l.First(); x != nil; x = x.Next() {
		ret = append(ret, x.Value().([]string)...)
	}

	p.k = ret
	// mark dirty false
	p.dirty = false

	return ret
}

func (p *pool) loadOrStore(name string, e *elem) (*elem, bool) {
	p.locker.Lock()
	defer p.locker.Unlock()

	if v, ok := p.m[name]; ok {
		return v, true
	}
	p.m[name] = e
	if e.alias {
		return e, false
	}
	keys := p.l.Get(e.order)
	if keys == nil {
		keys = []string{name}
	} else {
		keys = append(keys.([]string), name)
	}
	p.l.Set(e.order, keys)
	// mark dirty
	p.dirty = true
	return e, false
}

func (p *pool) load(name string) (*elem, bool) {
	p.locker.Lock()
	defer p.locker.Unlock()

	v, ok := p.m[name]
	return v, ok
}

func (c *defaultContainer) Register(o interface{}, opts ...RegisterOpt) error {
	return c.RegisterByName("", o, opts...)
}

func (c *defaultContainer) RegisterByName(name string, o interface{}, opts ...RegisterOpt) error {
	beanDefinition, err := CreateBeanDefinition(o)
	if err != nil {
		return err
	}
	if beanDefinition == nil {
		return errors.New("beanDefinition is nil. ")
	}

	if name == "" {
		// 对象使用类型名称，工厂方法使用返回值类型名称
		name = beanDefinition.Name()
		if name == "" {
			return errors.New("Cannot get bean name. ")
		}
	}

	meta := beanDefinition.Meta()
	meta.apply(opts...)
	if !meta.HasRole() {
		if v, ok := o.(RoleHint); ok {
			meta.Role = v.BeanRole()
		}
	}
	meta.Scope = c.scopeResolver.ResolveScopeMetadata(beanDefinition).ScopeName
	if err := verifyScope(beanDefinition, meta.Scope); err != nil {
		return err
	}

	e := &elem{
		def:   beanDefinition,
		order: meta.Order,
	}
	_, loaded := c.objectPool.loadOrStore(name, e)
	if loaded {
		return errors.New(name + " bean is exists. ")
	}
	return nil
}

func (c *defaultContainer) PutDefinition(name string, definition Definition) error {
	if definition == nil {
		return errors.New("Definition is nil. ")
	}
	e := &elem{
		def:   definition,
		order: definition.Meta().Order,
		alias: true,
	}
	_, loaded := c.objectPool.loadOrStore(name, e)
	if loaded {
		return errors.New(name + " bean is exists. ")
	}
	return nil
}

func (c *defaultContainer) GetDefinition(name string) (Definition, bool) {
	o, load := c.objectPool.load(name)
	if load {
		return o.def, load
	}
	return nil, false
}

func (c *defaultContainer) Get(name string) (interface{}, bool) {
	o, load := c.GetDefinition(name)
	if load {
		v, err := Resolve(o)
		if err != nil || !v.IsValid() {
			return nil, false
		}
		return v.Interface(), true
	}
	return nil, false
}

func (c *defaultContainer) GetByType(o interface{}) bool {
	v := reflect.ValueOf(o)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return false
	}
	v = v.Elem()
	if d, ok := c.GetDefinition(reflection.GetTypeName(v.Type())); ok {
		if assignDefinition(d, v) {
			return true
		}
	}
	// 类型名未命中时按可赋值的候选bean匹配
	d, err := MatchDefinition(c, v.Type())
	if err != nil {
		return false
	}
	return assignDefinition(d, v)
}

func assignDefinition(d Definition, v reflect.Value) bool {
	dv, err := Resolve(d)
	if err != nil || isNilValue(dv) || !dv.Type().AssignableTo(v.Type()) {
		return false
	}
	v.Set(dv)
	return true
}

func (c *defaultContainer) Scan(f func(key string, value Definition) bool) {
	keys := c.objectPool.keys()
	for _, k := range keys {
		if v, ok := c.objectPool.load(k); ok {
			if !f(k, v.def) {
				break
			}
		}
	}
}

func (c *defaultContainer) Names() []string {
	keys := c.objectPool.keys()
	ret := make([]string, len(keys))
	copy(ret, keys)
	return ret
}
