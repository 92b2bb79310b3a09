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

// Package order 对象排序，数值越小优先级越高。
// 未声明顺序的对象视为LowestPrecedence，排在所有声明顺序的对象之后。
package order

import (
	"math"
	"reflect"
	"sort"
)

const (
	// 最高优先级
	HighestPrecedence = math.MinInt32
	// 最低优先级，未声明顺序对象的默认值
	LowestPrecedence = math.MaxInt32
)

type Ordered interface {
	// 获得对象的顺序值，数值越小优先级越高
	GetOrder() int
}

// PriorityOrdered 优先排序标识，实现该接口的对象总是排在仅实现Ordered的对象之前
type PriorityOrdered interface {
	Ordered

	PriorityOrdered()
}

// SourceProvider 外部顺序来源，如注册bean时配置的顺序
// 返回顺序值以及是否存在
type SourceProvider func(o interface{}) (int, bool)

type Comparator struct {
	source SourceProvider
}

type Opt func(*Comparator)

func NewComparator(opts ...Opt) *Comparator {
	ret := &Comparator{}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// 配置外部顺序来源，优先于Ordered接口
func OptSetSourceProvider(provider SourceProvider) Opt {
	return func(c *Comparator) {
		c.source = provider
	}
}

var defaultComparator = NewComparator()

// Sourced 携带外部顺序的包装对象，比较时使用被包装的对象
type Sourced interface {
	// 被包装的对象
	Unwrap() interface{}

	// 外部顺序值以及是否存在
	SourceOrder() (int, bool)
}

type sourced struct {
	v     interface{}
	order int
	has   bool
}

func (s *sourced) Unwrap() interface{} {
	return s.v
}

func (s *sourced) SourceOrder() (int, bool) {
	return s.order, s.has
}

// Wrap 包装对象及其外部顺序，has为false时仍使用对象自身的顺序
func Wrap(o interface{}, order int, has bool) Sourced {
	return &sourced{v: o, order: order, has: has}
}

// Compare 比较a与b的顺序，a优先返回负数，b优先返回正数，相等返回0
func (c *Comparator) Compare(a, b interface{}) int {
	p1 := isPriority(unwrap(a))
	p2 := isPriority(unwrap(b))
	if p1 && !p2 {
		return -1
	} else if p2 && !p1 {
		return 1
	}

	o1 := c.getOrder(a)
	o2 := c.getOrder(b)
	if o1 < o2 {
		return -1
	} else if o1 > o2 {
		return 1
	}
	return 0
}

func (c *Comparator) getOrder(o interface{}) int {
	if s, ok := o.(Sourced); ok {
		if v, has := s.SourceOrder(); has {
			return v
		}
		o = s.Unwrap()
	}
	if o == nil {
		return LowestPrecedence
	}
	if c.source != nil {
		if v, ok := c.source(o); ok {
			return v
		}
	}
	return GetOrder(o, LowestPrecedence)
}

// Sort 稳定排序，相同顺序值保持原有顺序
func (c *Comparator) Sort(items []interface{}) {
	sort.SliceStable(items, func(i, j int) bool {
		return c.Compare(items[i], items[j]) < 0
	})
}

// SortValues 对reflect slice值进行原地稳定排序
func (c *Comparator) SortValues(v reflect.Value) {
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice || v.Len() < 2 {
		return
	}
	n := v.Len()
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool {
		return c.Compare(v.Index(idx[i]).Interface(), v.Index(idx[j]).Interface()) < 0
	})
	// 按排列复制原始元素，nil接口元素保持为零值
	sorted := reflect.MakeSlice(v.Type(), n, n)
	for i, j := range idx {
		sorted.Index(i).Set(v.Index(j))
	}
	reflect.Copy(v, sorted)
}

func unwrap(o interface{}) interface{} {
	if s, ok := o.(Sourced); ok {
		return s.Unwrap()
	}
	return o
}

func isPriority(o interface{}) bool {
	_, ok := o.(PriorityOrdered)
	return ok
}

// GetOrder 获得对象的顺序值，未实现Ordered时返回defaultOrder
func GetOrder(o interface{}, defaultOrder int) int {
	if v, ok := o.(Ordered); ok {
		return v.GetOrder()
	}
	return defaultOrder
}

// Sort 使用默认比较器排序
func Sort(items []interface{}) {
	defaultComparator.Sort(items)
}

// SortValues 使用默认比较器排序slice值
func SortValues(v reflect.Value) {
	defaultComparator.SortValues(v)
}

// Compare 使用默认比较器比较
func Compare(a, b interface{}) int {
	return defaultComparator.Compare(a, b)
}
