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

import "reflect"

type Initializing interface {
	// 当初始化和注入完成时回调
	BeanAfterSet() error
}

type Disposable interface {
	// 进入销毁阶段，应该尽快做回收处理并退出处理任务
	BeanDestroy() error
}

type Classifier interface {
	// 对象分类，判断对象是否实现某些接口，并进行相关归类。
	// return: bool 是否能够处理对象， error 处理是否有错误
	Classify(o interface{}) (bool, error)
}

var (
	InitializingType = reflect.TypeOf((*Initializing)(nil)).Elem()
	DisposableType   = reflect.TypeOf((*Disposable)(nil)).Elem()
	ErrorType        = reflect.TypeOf((*error)(nil)).Elem()
)
