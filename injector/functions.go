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


package injector

import (
	"github.com/xfali/neve-ioc/bean"
)

// InjectFunctionRegistry 登记需要注入参数的方法
type InjectFunctionRegistry interface {
	// function类型为func(T1, T2...Tn)，参数按names对应的bean名称注入，
	// ""表示按类型自动匹配，names不足参数个数时其余参数均自动匹配。
	// 方法只做赋值，不应阻塞
	RegisterInjectFunction(function interface{}, names ...string) error
}

// InjectFunction 由bean实现，上下文注入阶段回调以登记其注入方法
type InjectFunction interface {
	RegisterFunction(registry InjectFunctionRegistry) error
}

// InjectFunctionHandler 保存登记的方法并在注入阶段统一执行
type InjectFunctionHandler interface {
	InjectFunctionRegistry

	SetInjector(injector Injector)

	// 依次解析参数并调用所有已登记的方法
	InjectAllFunctions(container bean.Container) error
}

// FunctionInjectInvoker 单个待注入方法
type FunctionInjectInvoker interface {
	// 方法名，用于日志
	FunctionName() string

	Invoke(injector Injector, container bean.Container, manager ListenerManager) error

	// 校验方法签名及names个数，失败返回error
	ResolveFunction(injector Injector, names []string, function interface{}) error
}
