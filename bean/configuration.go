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
	"sort"

	"github.com/xfali/neve-ioc/reflection"
)

// BeanMethodOpts 配置对象声明bean方法及其注册配置，key为方法名
// 实现该接口时只有map中的方法会被注册为bean，否则配置对象所有符合要求的导出方法都会被注册
type BeanMethodOpts interface {
	BeanMethodOpts() map[string][]RegisterOpt
}

// MethodBean 配置对象中的bean方法
type MethodBean struct {
	// bean名称，方法名首字母小写
	Name string

	// 方法名
	Method string

	// 方法值，参数需要通过injector注入
	Factory interface{}

	Opts []RegisterOpt
}

// ParseConfiguration 解析配置对象的bean方法
// bean方法只能有一个返回值（或者值与error），返回值必须为指针或者接口
// 注意：配置对象上的角色等配置不会传递给bean方法
func ParseConfiguration(cfg interface{}) ([]MethodBean, error) {
	if cfg == nil {
		return nil, errors.New("Configuration is nil. ")
	}
	v := reflect.ValueOf(cfg)
	t := v.Type()
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("Configuration must be a struct pointer, but get %s. ", reflection.GetTypeName(t))
	}

	var declared map[string][]RegisterOpt
	if d, ok := cfg.(BeanMethodOpts); ok {
		declared = d.BeanMethodOpts()
		for name := range declared {
			if _, ok := t.MethodByName(name); !ok {
				return nil, fmt.Errorf("Configuration %s bean method %s not found. ", reflection.GetTypeName(t), name)
			}
		}
	}

	var ret []MethodBean
	for i := 0; i < t.NumMethod(); i++ {
		m := t.Method(i)
		if m.Name == "BeanMethodOpts" {
			continue
		}
		var opts []RegisterOpt
		if declared != nil {
			o, ok := declared[m.Name]
			if !ok {
				continue
			}
			opts = o
		}
		mv := v.Method(i)
		if !isBeanMethod(mv.Type()) {
			if declared != nil {
				return nil, fmt.Errorf("Configuration %s method %s is not a bean method. ", reflection.GetTypeName(t), m.Name)
			}
			continue
		}
		ret = append(ret, MethodBean{
			Name:    reflection.LowerFirst(m.Name),
			Method:  m.Name,
			Factory: mv.Interface(),
			Opts:    opts,
		})
	}
	sort.SliceStable(ret, func(i, j int) bool {
		return ret[i].Name < ret[j].Name
	})
	return ret, nil
}

func isBeanMethod(ft reflect.Type) bool {
	if verifyBeanFunctionEx(ft) != nil {
		return false
	}
	return ft.Out(0) != ErrorType
}
