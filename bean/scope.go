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
)

const (
	// 单例，整个容器只创建一次，默认作用域
	ScopeSingleton = "singleton"
	// 原型，每次获取或注入时均重新创建
	ScopePrototype = "prototype"
)

type ScopeMetadata struct {
	ScopeName string
}

// ScopeHint 由bean类型声明作用域，注册配置bean.SetScope优先
type ScopeHint interface {
	BeanScope() string
}

type ScopeMetadataResolver interface {
	// 解析bean definition的作用域，返回值的ScopeName不能为空
	ResolveScopeMetadata(definition Definition) ScopeMetadata
}

type defaultScopeResolver struct{}

func NewDefaultScopeResolver() *defaultScopeResolver {
	return &defaultScopeResolver{}
}

func (r *defaultScopeResolver) ResolveScopeMetadata(definition Definition) ScopeMetadata {
	if scope := definition.Meta().Scope; scope != "" {
		return ScopeMetadata{ScopeName: scope}
	}
	if definition.IsObject() {
		if v, ok := definition.Interface().(ScopeHint); ok && v.BeanScope() != "" {
			return ScopeMetadata{ScopeName: v.BeanScope()}
		}
		return ScopeMetadata{ScopeName: ScopeSingleton}
	}
	if hint := scopeFromType(definition.Type()); hint != "" {
		return ScopeMetadata{ScopeName: hint}
	}
	return ScopeMetadata{ScopeName: ScopeSingleton}
}

func scopeFromType(t reflect.Type) string {
	if t == nil || t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return ""
	}
	if v, ok := reflect.New(t.Elem()).Interface().(ScopeHint); ok {
		return v.BeanScope()
	}
	return ""
}

func verifyScope(definition Definition, scope string) error {
	switch scope {
	case ScopeSingleton:
		return nil
	case ScopePrototype:
		if definition.IsObject() {
			return fmt.Errorf("Bean %s is an object, scope %s not supported. ", definition.Name(), scope)
		}
		return nil
	}
	return fmt.Errorf("Bean %s with unknown scope: %s. ", definition.Name(), scope)
}
