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

import "fmt"

// Role bean的角色提示，用于区分业务bean与框架内部bean
type Role int

const (
	// 应用bean，未配置角色时的默认值
	RoleApplication Role = iota
	// 支撑性bean，通常是较大配置中的一部分
	RoleSupport
	// 框架内部bean，与最终用户无关
	RoleInfrastructure
)

func (r Role) String() string {
	switch r {
	case RoleApplication:
		return "application"
	case RoleSupport:
		return "support"
	case RoleInfrastructure:
		return "infrastructure"
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// RoleHint 对象声明自身的角色，注册配置bean.SetRole优先
type RoleHint interface {
	BeanRole() Role
}
