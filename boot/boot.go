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


package boot

import (
	"flag"
	"sync"

	"github.com/xfali/neve-ioc"
	"github.com/xfali/neve-ioc/bean"
)

var (
	// 默认的配置路径
	ConfigPath = "application.yaml"

	creator func() neve.Application = defaultCreator
	gApp    neve.Application
	once    sync.Once
)

// 注册到全局Application
// 支持注册
//  1、interface、struct指针，注册名称使用【类型名称】；
//  2、struct/interface的构造函数 func() TYPE，注册名称使用【返回值的类型名称】。
// opts添加bean注册的配置，详情查看bean.RegisterOpt
func RegisterBean(o interface{}, opts ...bean.RegisterOpt) error {
	return instance().RegisterBean(o, opts...)
}

// 注册到全局Application，使用指定名称注册对象
func RegisterBeanByName(name string, o interface{}, opts ...bean.RegisterOpt) error {
	return instance().RegisterBeanByName(name, o, opts...)
}

// 注册配置对象到全局Application，配置对象的bean方法返回值同样注册为bean
func RegisterConfiguration(cfg interface{}, opts ...bean.RegisterOpt) error {
	return instance().RegisterConfiguration(cfg, opts...)
}

// 自定义启动的Application
// 必须在注册对象和Run之前调用
func Customize(app neve.Application) {
	creator = func() neve.Application {
		return app
	}
}

func defaultCreator() neve.Application {
	if !flag.Parsed() {
		flag.StringVar(&ConfigPath, "f", ConfigPath, "Application configuration file path.")
		flag.Parse()
	}
	return neve.NewFileConfigApplication(neve.GetResource(ConfigPath))
}

func instance() neve.Application {
	once.Do(func() {
		gApp = creator()
	})
	return gApp
}

// 启动全局Application，阻塞直到退出
func Run() error {
	return instance().Run()
}

// 结束全局Application的Run
func Stop() {
	instance().Stop()
}
