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


package neve

import (
	"context"

	"github.com/xfali/fig"
	"github.com/xfali/neve-ioc/appcontext"
	"github.com/xfali/neve-ioc/application"
	"github.com/xfali/neve-ioc/bean"
	"github.com/xfali/neve-ioc/processor"
	"github.com/xfali/xlog"
)

type Application interface {
	// 注册对象，详情查看appcontext.ApplicationContext
	RegisterBean(o interface{}, opts ...bean.RegisterOpt) error

	// 使用指定名称注册对象
	RegisterBeanByName(name string, o interface{}, opts ...bean.RegisterOpt) error

	// 注册配置对象及其bean方法
	RegisterConfiguration(cfg interface{}, opts ...bean.RegisterOpt) error

	// 启动应用并阻塞，直到收到退出信号或者Stop
	Run() error

	// 结束Run的等待
	Stop()
}

type FileConfigApplication struct {
	logger xlog.Logger
	config fig.Properties
	ctx    appcontext.ApplicationContext
	waiter application.SignalWaiter
	runCtx context.Context
}

type Opt func(*FileConfigApplication)

// NewFileConfigApplication 从yaml配置文件创建Application，加载失败时直接退出
func NewFileConfigApplication(configPath string, opts ...Opt) *FileConfigApplication {
	logger := xlog.GetLogger()
	prop, err := fig.LoadYamlFile(configPath)
	if err != nil {
		logger.Fatalln("load config file failed: ", err)
		return nil
	}
	return NewApplication(prop, opts...)
}

func NewApplication(prop fig.Properties, opts ...Opt) *FileConfigApplication {
	ret := &FileConfigApplication{
		logger: xlog.GetLogger(),
		config: prop,
		runCtx: context.Background(),
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.ctx == nil {
		ret.ctx = appcontext.NewDefaultApplicationContext(appcontext.OptSetLogger(ret.logger))
	}
	if ret.waiter == nil {
		ret.waiter = application.NewSignalWaiter(application.SignalWaiterOpts.SetLogger(ret.logger))
	}

	err := ret.ctx.Init(prop)
	if err != nil {
		ret.logger.Panicln(err)
	}
	for _, v := range append([]processor.Processor{processor.NewValueProcessor()}, processors...) {
		err := ret.ctx.AddProcessor(v)
		if err != nil {
			ret.logger.Panicln(err)
		}
	}
	return ret
}

func (app *FileConfigApplication) RegisterBean(o interface{}, opts ...bean.RegisterOpt) error {
	return app.ctx.RegisterBean(o, opts...)
}

func (app *FileConfigApplication) RegisterBeanByName(name string, o interface{}, opts ...bean.RegisterOpt) error {
	return app.ctx.RegisterBeanByName(name, o, opts...)
}

func (app *FileConfigApplication) RegisterConfiguration(cfg interface{}, opts ...bean.RegisterOpt) error {
	_, err := app.ctx.RegisterConfiguration(cfg, opts...)
	return err
}

func (app *FileConfigApplication) Run() error {
	err := app.ctx.Start()
	if err != nil {
		_ = app.ctx.Close()
		return err
	}
	err = application.WaitAndClose(app.runCtx, app.waiter, app.ctx.Close)
	app.logger.Infoln("------ Application exited ------")
	return err
}

func (app *FileConfigApplication) Stop() {
	app.waiter.Stop()
}

// GetApplicationContext 获得应用的ApplicationContext
func (app *FileConfigApplication) GetApplicationContext() appcontext.ApplicationContext {
	return app.ctx
}

func OptSetApplicationContext(ctx appcontext.ApplicationContext) Opt {
	return func(application *FileConfigApplication) {
		application.ctx = ctx
	}
}

func OptSetSignalWaiter(waiter application.SignalWaiter) Opt {
	return func(application *FileConfigApplication) {
		application.waiter = waiter
	}
}

func OptSetLogger(logger xlog.Logger) Opt {
	return func(application *FileConfigApplication) {
		application.logger = logger
	}
}

// OptSetRunContext ctx结束时Run返回
func OptSetRunContext(ctx context.Context) Opt {
	return func(application *FileConfigApplication) {
		application.runCtx = ctx
	}
}

var processors []processor.Processor

// RegisterProcessor 注册全局处理器，所有之后创建的Application都会添加这些处理器
func RegisterProcessor(proc ...processor.Processor) {
	for _, v := range proc {
		if v != nil {
			processors = append(processors, v)
		}
	}
}
