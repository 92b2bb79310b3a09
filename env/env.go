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


// Package env 应用运行环境：属性读取、占位符解析以及profile管理。
package env

import "github.com/xfali/fig"

const (
	KeyActiveProfiles  = "neve.profiles.active"
	KeyDefaultProfiles = "neve.profiles.default"

	DefaultProfile = "default"
)

type Environment interface {
	// 获得属性值，不存在时返回defaultValue
	// 查找顺序：系统环境变量（a.b.c -> A_B_C）、配置文件、父环境
	GetProperty(key string, defaultValue string) string

	// 属性是否存在
	ContainsProperty(key string) bool

	// 获得属性值，不存在时返回错误
	GetRequiredProperty(key string) (string, error)

	// 解析文本中的${key}以及${key:default}占位符，无法解析的占位符保持原样
	ResolvePlaceholders(text string) string

	// 解析文本中的占位符，无法解析时返回错误
	ResolveRequiredPlaceholders(text string) (string, error)

	// 显式激活的profile
	GetActiveProfiles() []string

	// 未激活任何profile时使用的profile
	GetDefaultProfiles() []string

	// 任意一个profile被激活时返回true，"!name"表示name未被激活
	AcceptsProfiles(profiles ...string) bool
}

type ConfigurableEnvironment interface {
	Environment

	SetActiveProfiles(profiles ...string)

	AddActiveProfile(profile string)

	SetDefaultProfiles(profiles ...string)

	// 获得配置文件属性
	Properties() fig.Properties

	// 合并父环境：父环境的属性作为后备，profile取并集
	Merge(parent ConfigurableEnvironment)
}

// EnvironmentCapable 持有Environment的组件，所有ApplicationContext均实现该接口
type EnvironmentCapable interface {
	GetEnvironment() Environment
}

// EnvironmentAware 需要获得Environment的bean实现该接口，在注入前回调
type EnvironmentAware interface {
	SetEnvironment(env Environment)
}
