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

	"github.com/xfali/neve-ioc/reflection"
)

type Definition interface {
	// 类型
	Type() reflect.Type

	// 名称
	Name() string

	// 获得值，单例返回缓存的实例，原型每次重新创建
	Value() reflect.Value

	// 获得注册的bean对象
	Interface() interface{}

	// 是否是可注入对象
	IsObject() bool

	// 在属性配置完成后调用
	AfterSet() error

	// 销毁对象
	Destroy() error

	// 使用分类器对bean实例分类
	Classify(classifier Classifier) (bool, error)

	// 注册时附加的元数据
	Meta() *Metadata
}

// Instantiator 可以提前创建实例的definition
type Instantiator interface {
	// 是否已创建实例
	Instantiated() bool
}

type DefinitionCreator func(o interface{}) (Definition, error)

var beanDefinitionCreators = map[reflect.Kind]DefinitionCreator{
	reflect.Ptr:   newObjectDefinition,
	reflect.Func:  newFunctionExDefinition,
	reflect.Slice: newSliceDefinition,
	reflect.Map:   newMapDefinition,
}

// 注册BeanDefinition创建器，使其能处理更多类型。
// 默认支持Pointer、Function、Slice、Map
func RegisterBeanDefinitionCreator(kind reflect.Kind, creator DefinitionCreator) {
	if creator != nil {
		beanDefinitionCreators[kind] = creator
	}
}

func CreateBeanDefinition(o interface{}) (Definition, error) {
	if o == nil {
		return nil, errors.New("Bean is nil. ")
	}
	if f, ok := o.(CustomBeanFactory); ok {
		return newCustomMethodBeanDefinition(f)
	}

	t := reflect.TypeOf(o)
	creator, ok := beanDefinitionCreators[t.Kind()]
	if !ok || creator == nil {
		return nil, errors.New("Cannot handle this type: " + reflection.GetTypeName(t))
	}

	return creator(o)
}

// Resolve 获得definition的值，将创建过程中的panic转换为error
func Resolve(definition Definition) (v reflect.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
			} else {
				err = fmt.Errorf("Resolve bean %s failed: %v ", definition.Name(), r)
			}
		}
	}()
	return definition.Value(), nil
}
