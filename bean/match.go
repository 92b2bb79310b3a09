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
	"strings"

	"github.com/xfali/neve-ioc/reflection"
)

// MatchDefinition 在容器中查找可赋值给t的bean：唯一候选直接使用，
// 多个候选时选择primary，仍不能确定时选择以默认名称注册的bean
func MatchDefinition(c Container, t reflect.Type) (Definition, error) {
	var candidates []Definition
	var keys []string
	c.Scan(func(key string, value Definition) bool {
		if value.Type().AssignableTo(t) {
			candidates = append(candidates, value)
			keys = append(keys, key)
		}
		return true
	})
	switch len(candidates) {
	case 0:
		return nil, errors.New("Inject nothing, cannot find any Implementation: " + reflection.GetTypeName(t))
	case 1:
		return candidates[0], nil
	}

	var primaries []Definition
	for _, d := range candidates {
		if d.Meta().Primary {
			primaries = append(primaries, d)
		}
	}
	if len(primaries) == 1 {
		return primaries[0], nil
	}
	if len(primaries) > 1 {
		return nil, fmt.Errorf("Auto Inject %s found more than 1 primary bean. ", reflection.GetTypeName(t))
	}

	var defaults []Definition
	for i, d := range candidates {
		if keys[i] == d.Name() {
			defaults = append(defaults, d)
		}
	}
	if len(defaults) == 1 {
		return defaults[0], nil
	}
	return nil, fmt.Errorf("Auto Inject %s found more than 1 bean: [%s]. ",
		reflection.GetTypeName(t), strings.Join(keys, ","))
}
