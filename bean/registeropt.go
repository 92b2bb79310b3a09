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

import "github.com/xfali/neve-ioc/order"

const (
	KeySetOrder       = "register.bean.order"
	KeySetRole        = "register.bean.role"
	KeySetScope       = "register.bean.scope"
	KeySetPrimary     = "register.bean.primary"
	KeySetDescription = "register.bean.description"
)

type Setter interface {
	Set(key string, value interface{})
}

// Bean注册配置，已支持的配置有：
// * bean.SetOrder(int) 配置bean注入顺序
// * bean.SetRole(Role) 配置bean角色
// * bean.SetScope(string) 配置bean作用域
// * bean.SetPrimary() 自动注入存在多个候选时优先选择
// * bean.SetDescription(string) 配置bean描述
type RegisterOpt func(setter Setter)

// 配置bean注入顺序，数值越小越靠前
func SetOrder(order int) RegisterOpt {
	return func(setter Setter) {
		setter.Set(KeySetOrder, order)
	}
}

// 配置bean角色
func SetRole(role Role) RegisterOpt {
	return func(setter Setter) {
		setter.Set(KeySetRole, role)
	}
}

// 配置bean作用域：ScopeSingleton、ScopePrototype
func SetScope(scope string) RegisterOpt {
	return func(setter Setter) {
		setter.Set(KeySetScope, scope)
	}
}

func SetPrimary() RegisterOpt {
	return func(setter Setter) {
		setter.Set(KeySetPrimary, true)
	}
}

func SetDescription(desc string) RegisterOpt {
	return func(setter Setter) {
		setter.Set(KeySetDescription, desc)
	}
}

// Metadata bean注册时附加的元数据
type Metadata struct {
	Order       int
	Role        Role
	Scope       string
	Primary     bool
	Description string

	hasOrder bool
	hasRole  bool
}

func newMetadata() Metadata {
	return Metadata{
		Order: order.LowestPrecedence,
		Role:  RoleApplication,
	}
}

func (m *Metadata) Set(key string, value interface{}) {
	switch key {
	case KeySetOrder:
		m.Order = value.(int)
		m.hasOrder = true
	case KeySetRole:
		m.Role = value.(Role)
		m.hasRole = true
	case KeySetScope:
		m.Scope = value.(string)
	case KeySetPrimary:
		m.Primary = value.(bool)
	case KeySetDescription:
		m.Description = value.(string)
	}
}

// 是否显式配置了顺序
func (m *Metadata) HasOrder() bool {
	return m.hasOrder
}

// 是否显式配置了角色
func (m *Metadata) HasRole() bool {
	return m.hasRole
}

func (m *Metadata) apply(opts ...RegisterOpt) {
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
}
