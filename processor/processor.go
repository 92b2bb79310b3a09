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


package processor

import (
	"github.com/xfali/fig"
	"github.com/xfali/neve-ioc/bean"
)

// Processor 在容器完成注入后统一处理bean。
// 上下文按order.Ordered排序依次调用各处理器，未实现时保持添加顺序。
type Processor interface {
	// 读取配置并持有容器，在任何bean被分类前调用
	Init(conf fig.Properties, container bean.Container) error

	// 挑出关心的bean并暂存，返回true表示已接收。
	// 可能被并发调用，只做归类，不做耗时处理
	bean.Classifier

	// 所有bean分类完成且BeanAfterSet执行后调用一次，
	// 长时间运行的任务应另起协程
	Process() error

	// 上下文关闭时释放暂存的bean及资源
	bean.Disposable
}
