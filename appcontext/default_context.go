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


package appcontext

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xfali/fig"
	"github.com/xfali/neve-ioc/bean"
	"github.com/xfali/neve-ioc/env"
	"github.com/xfali/neve-ioc/injector"
	"github.com/xfali/neve-ioc/metrics"
	"github.com/xfali/neve-ioc/order"
	"github.com/xfali/neve-ioc/processor"
	"github.com/xfali/neve-ioc/reflection"
	"github.com/xfali/xlog"
)

const (
	statusNone int32 = iota
	statusInitializing
	statusInitialized
)

const (
	EnvironmentBeanName        = "environment"
	ApplicationStartupBeanName = "applicationStartup"
)

type Opt func(*defaultApplicationContext)

type defaultApplicationContext struct {
	config       fig.Properties
	environment  env.ConfigurableEnvironment
	envProvided  bool
	logger       xlog.Logger
	container    bean.Container
	injector     injector.Injector
	funcHandler  injector.InjectFunctionHandler
	injectLicMgr injector.ListenerManager
	eventProc    ApplicationEventProcessor

	startup     metrics.ApplicationStartup
	startupLock sync.RWMutex

	ctxAwares []ApplicationContextAware
	envAwares []env.EnvironmentAware
	awareLock sync.Mutex

	processors     []processor.Processor
	processorsLock sync.Mutex
	// 通过AddProcessor添加的处理器不在容器中，由context负责销毁
	addedProcessors []processor.Processor

	appName       string
	disableInject bool
	disableEvent  bool
	curState      int32

	closeOnce sync.Once
}

func NewDefaultApplicationContext(opts ...Opt) *defaultApplicationContext {
	ret := &defaultApplicationContext{
		logger:    xlog.GetLogger(),
		container: bean.NewContainer(),
		curState:  statusNone,
	}
	for _, opt := range opts {
		opt(ret)
	}

	if ret.injectLicMgr == nil {
		ret.injectLicMgr = injector.NewListenerManager(ret.logger)
	}
	if ret.injector == nil {
		ret.injector = injector.New(injector.OptSetLogger(ret.logger), injector.OptSetListenerManager(ret.injectLicMgr))
	}
	if ret.funcHandler == nil {
		ret.funcHandler = injector.NewDefaultInjectFunctionHandler(ret.logger, ret.injectLicMgr)
	}
	ret.funcHandler.SetInjector(ret.injector)
	if ret.eventProc == nil {
		ret.eventProc = NewEventProcessor(OptSetEventProcessorLogger(ret.logger))
	}
	if ret.environment == nil {
		ret.environment = env.New(nil, env.OptSetLogger(ret.logger))
	}

	return ret
}

func OptSetContainer(container bean.Container) Opt {
	return func(context *defaultApplicationContext) {
		context.container = container
	}
}

func OptSetLogger(logger xlog.Logger) Opt {
	return func(context *defaultApplicationContext) {
		context.logger = logger
	}
}

func OptSetInjectListenerManager(manager injector.ListenerManager) Opt {
	return func(context *defaultApplicationContext) {
		context.injectLicMgr = manager
	}
}

func OptSetInjector(injector injector.Injector) Opt {
	return func(context *defaultApplicationContext) {
		context.injector = injector
	}
}

func OptSetInjectFunctionHandler(handler injector.InjectFunctionHandler) Opt {
	return func(context *defaultApplicationContext) {
		context.funcHandler = handler
	}
}

func OptSetEventProcessor(proc ApplicationEventProcessor) Opt {
	return func(context *defaultApplicationContext) {
		context.eventProc = proc
	}
}

func OptDisableEvent() Opt {
	return func(context *defaultApplicationContext) {
		context.disableEvent = true
	}
}

// 配置运行环境，未配置时使用Init传入的配置创建
func OptSetEnvironment(environment env.ConfigurableEnvironment) Opt {
	return func(context *defaultApplicationContext) {
		if environment != nil {
			context.environment = environment
			context.envProvided = true
		}
	}
}

// 配置启动步骤记录器，未配置时根据neve.startup.mode创建
func OptSetApplicationStartup(startup metrics.ApplicationStartup) Opt {
	return func(context *defaultApplicationContext) {
		context.startup = startup
	}
}

func (ctx *defaultApplicationContext) Init(config fig.Properties) (err error) {
	ctx.config = config
	if !ctx.envProvided {
		ctx.environment = env.New(config, env.OptSetLogger(ctx.logger))
	}
	ctx.appName = ctx.environment.GetProperty("neve.application.name", "Neve Application")
	ctx.disableInject = ctx.environment.GetProperty("neve.inject.disable", "false") == "true"

	event := ctx.environment.GetProperty("neve.application.eventMode", "on")
	event = strings.ToLower(event)
	if !ctx.disableEvent {
		ctx.disableEvent = event == "off" || event == "false"
	}
	if ctx.disableEvent {
		ctx.eventProc = NewDisableEventProcessor()
	}

	ctx.startupLock.Lock()
	if ctx.startup == nil {
		ctx.startup = NewApplicationStartup(ctx.environment, ctx.logger)
	}
	ctx.startupLock.Unlock()

	// 框架内部bean
	err = ctx.container.Register(ctx.eventProc, bean.SetRole(bean.RoleInfrastructure))
	if err != nil {
		return err
	}
	err = ctx.container.RegisterByName(EnvironmentBeanName, ctx.environment, bean.SetRole(bean.RoleInfrastructure))
	if err != nil {
		return err
	}

	return ctx.eventProc.Start()
}

func (ctx *defaultApplicationContext) GetApplicationName() string {
	return ctx.appName
}

func (ctx *defaultApplicationContext) GetEnvironment() env.Environment {
	return ctx.environment
}

func (ctx *defaultApplicationContext) SetApplicationStartup(startup metrics.ApplicationStartup) error {
	if startup == nil {
		return errors.New("ApplicationStartup is nil. ")
	}
	if atomic.LoadInt32(&ctx.curState) != statusNone {
		return errors.New("Context started, cannot set ApplicationStartup. ")
	}
	ctx.startupLock.Lock()
	defer ctx.startupLock.Unlock()
	ctx.startup = startup
	return nil
}

func (ctx *defaultApplicationContext) GetApplicationStartup() metrics.ApplicationStartup {
	ctx.startupLock.RLock()
	defer ctx.startupLock.RUnlock()
	if ctx.startup == nil {
		return metrics.Default
	}
	return ctx.startup
}

func (ctx *defaultApplicationContext) Close() (err error) {
	ctx.closeOnce.Do(func() {
		step := ctx.GetApplicationStartup().Start(stepClose)
		defer step.End()

		err := ctx.eventProc.Close()
		if err != nil {
			ctx.logger.Errorln(err)
		}
		ctx.notifyStopped()
		ctx.destroyBeans()
		ctx.notifyClosed()
	})

	return nil
}

func (ctx *defaultApplicationContext) RegisterBean(o interface{}, opts ...bean.RegisterOpt) error {
	return ctx.RegisterBeanByName("", o, opts...)
}

func (ctx *defaultApplicationContext) RegisterBeanByName(name string, o interface{}, opts ...bean.RegisterOpt) error {
	if atomic.LoadInt32(&ctx.curState) != statusNone {
		return errors.New("Context started, cannot register new object. ")
	}

	if o == nil {
		return errors.New("Bean is nil. ")
	}
	var err error
	o, err = injector.WrapBean(o, ctx.container, ctx.injector, ctx.injectLicMgr)
	if err != nil {
		return err
	}

	err = ctx.container.RegisterByName(name, o, opts...)
	if err != nil {
		return err
	}

	if !ctx.disableEvent {
		ctx.eventProc.AddListeners(o)
	}

	err = ctx.classifyInjectFunction(o)
	if err != nil {
		return err
	}

	ctx.addAware(o)

	if v, ok := o.(processor.Processor); ok {
		err = ctx.addProcessor(v)
		if err != nil {
			return err
		}
	}

	return nil
}

func (ctx *defaultApplicationContext) RegisterConfiguration(cfg interface{}, opts ...bean.RegisterOpt) ([]string, error) {
	beans, err := bean.ParseConfiguration(cfg)
	if err != nil {
		return nil, err
	}
	name := reflection.GetObjectName(cfg)
	if err := ctx.RegisterBeanByName(name, cfg, opts...); err != nil {
		return nil, err
	}

	names := []string{name}
	for _, b := range beans {
		if err := ctx.RegisterBeanByName(b.Name, b.Factory, b.Opts...); err != nil {
			return names, fmt.Errorf("Register configuration %s bean %s failed: %v ", name, b.Name, err)
		}
		names = append(names, b.Name)
	}
	return names, nil
}

func (ctx *defaultApplicationContext) addAware(o interface{}) {
	ctx.awareLock.Lock()
	defer ctx.awareLock.Unlock()

	if v, ok := o.(ApplicationContextAware); ok {
		ctx.ctxAwares = append(ctx.ctxAwares, v)
	}
	if v, ok := o.(env.EnvironmentAware); ok {
		ctx.envAwares = append(ctx.envAwares, v)
	}
}

func (ctx *defaultApplicationContext) addProcessor(p processor.Processor) error {
	ctx.processorsLock.Lock()
	defer ctx.processorsLock.Unlock()

	if err := p.Init(ctx.config, ctx.container); err != nil {
		return err
	}
	ctx.processors = append(ctx.processors, p)
	items := make([]interface{}, len(ctx.processors))
	for i := range ctx.processors {
		items[i] = ctx.processors[i]
	}
	order.Sort(items)
	for i := range items {
		ctx.processors[i] = items[i].(processor.Processor)
	}
	return nil
}

func (ctx *defaultApplicationContext) classifyInjectFunction(o interface{}) error {
	if v, ok := o.(injector.InjectFunction); ok {
		return v.RegisterFunction(ctx.funcHandler)
	}
	return nil
}

func (ctx *defaultApplicationContext) GetBean(name string) (interface{}, bool) {
	return ctx.container.Get(name)
}

func (ctx *defaultApplicationContext) GetBeanByType(o interface{}) bool {
	return ctx.container.GetByType(o)
}

func (ctx *defaultApplicationContext) GetBeanNames() []string {
	return ctx.container.Names()
}

func (ctx *defaultApplicationContext) GetBeanNamesByRole(role bean.Role) []string {
	var ret []string
	ctx.container.Scan(func(key string, value bean.Definition) bool {
		if value.Meta().Role == role {
			ret = append(ret, key)
		}
		return true
	})
	return ret
}

func (ctx *defaultApplicationContext) GetBeanRole(name string) (bean.Role, bool) {
	d, ok := ctx.container.GetDefinition(name)
	if !ok {
		return bean.RoleApplication, false
	}
	return d.Meta().Role, true
}

func (ctx *defaultApplicationContext) AddProcessor(p processor.Processor) error {
	if p == nil {
		return errors.New("Processor is nil. ")
	}
	if err := ctx.addProcessor(p); err != nil {
		return err
	}
	ctx.processorsLock.Lock()
	defer ctx.processorsLock.Unlock()
	ctx.addedProcessors = append(ctx.addedProcessors, p)
	return nil
}

func (ctx *defaultApplicationContext) AddListeners(listeners ...interface{}) {
	ctx.eventProc.AddListeners(listeners...)
}

func (ctx *defaultApplicationContext) PublishEvent(e ApplicationEvent) error {
	return ctx.eventProc.PublishEvent(e)
}

func (ctx *defaultApplicationContext) PostEvent(context context.Context, e ApplicationEvent) error {
	return ctx.eventProc.PostEvent(context, e)
}

func (ctx *defaultApplicationContext) SendEvent(e ApplicationEvent) error {
	return ctx.eventProc.SendEvent(e)
}

func (ctx *defaultApplicationContext) Start() error {
	// 第一次初始化，注入所有对象
	if !atomic.CompareAndSwapInt32(&ctx.curState, statusNone, statusInitializing) {
		return fmt.Errorf("Application Context Status error, current: %d . ", atomic.LoadInt32(&ctx.curState))
	}
	begin := time.Now()
	startup := ctx.GetApplicationStartup()
	refresh := startup.Start(stepRefresh).Tag("applicationName", ctx.appName)

	ctx.printCtxInfo()
	err := ctx.container.RegisterByName(ApplicationStartupBeanName, startup, bean.SetRole(bean.RoleInfrastructure))
	if err != nil {
		ctx.logger.Warnln(err)
	}

	// ApplicationContextAware and EnvironmentAware Set.
	ctx.runStep(startup, stepAware, ctx.notifyAware)
	// Inject Beans
	ctx.runStep(startup, stepInject, ctx.injectAll)
	// Processor classify, create singletons
	ctx.runStep(startup, stepClassify, func() {
		ctx.classifyBean(startup)
	})
	// call and inject all functions
	ctx.runStep(startup, stepFunctionInject, ctx.doFunctionInject)
	// Notify BeanAfterSet
	ctx.notifyBeanSet(startup)
	// Processor process
	ctx.runStep(startup, stepProcess, ctx.doProcess)

	// 初始化完成
	if !atomic.CompareAndSwapInt32(&ctx.curState, statusInitializing, statusInitialized) {
		ctx.logger.Fatal("Cannot be here!")
	}
	refresh.End()
	ctx.logger.Infof("%s started in %s\n", ctx.appName, time.Since(begin))

	ctx.notifyStarted()
	return nil
}

func (ctx *defaultApplicationContext) runStep(startup metrics.ApplicationStartup, name string, f func()) {
	step := startup.Start(name)
	defer step.End()
	f()
}

func (ctx *defaultApplicationContext) printCtxInfo() {
	path := ctx.environment.GetProperty("neve.application.banner", "")
	mode := ctx.environment.GetProperty("neve.application.bannerMode", "")
	mode = strings.ToLower(mode)
	if mode != "off" && mode != "false" {
		printBanner(selectWriter(), path)
	}
}

func (ctx *defaultApplicationContext) notifyAware() {
	ctx.awareLock.Lock()
	defer ctx.awareLock.Unlock()

	for _, v := range ctx.envAwares {
		v.SetEnvironment(ctx.environment)
	}
	for _, v := range ctx.ctxAwares {
		v.SetApplicationContext(ctx)
	}
}

// 必须先对对象分类，由于ValueProcessor会在Classify将配置的属性值注入，
// 配置对象的bean方法依赖这些属性，所以在此之后才创建单例
func (ctx *defaultApplicationContext) classifyBean(startup metrics.ApplicationStartup) {
	ctx.container.Scan(func(key string, value bean.Definition) bool {
		if value.IsObject() {
			ctx.classifyOneBean(value)
		}
		return true
	})

	ctx.runStep(startup, stepInstantiate, ctx.instantiateSingletons)

	ctx.container.Scan(func(key string, value bean.Definition) bool {
		if !value.IsObject() {
			ctx.classifyOneBean(value)
		}
		return true
	})
}

func (ctx *defaultApplicationContext) classifyOneBean(o bean.Definition) {
	ctx.processorsLock.Lock()
	defer ctx.processorsLock.Unlock()

	for _, processor := range ctx.processors {
		_, err := o.Classify(processor)
		if err != nil {
			ctx.logger.Errorln(err)
		}
	}
}

func (ctx *defaultApplicationContext) instantiateSingletons() {
	ctx.container.Scan(func(key string, value bean.Definition) bool {
		if value.IsObject() || value.Meta().Scope == bean.ScopePrototype {
			return true
		}
		i, ok := value.(bean.Instantiator)
		if !ok || i.Instantiated() {
			return true
		}
		if _, err := bean.Resolve(value); err != nil {
			ctx.logger.Errorf("Instantiate bean %s failed: %v\n", key, err)
		}
		return true
	})
}

func (ctx *defaultApplicationContext) notifyBeanSet(startup metrics.ApplicationStartup) {
	ctx.container.Scan(func(key string, value bean.Definition) bool {
		step := startup.Start(stepAfterSet).Tag("beanName", key)
		err := value.AfterSet()
		if err != nil {
			ctx.logger.Errorln(err)
		}
		step.End()
		return true
	})
}

func (ctx *defaultApplicationContext) doProcess() {
	ctx.processorsLock.Lock()
	defer ctx.processorsLock.Unlock()

	for _, processor := range ctx.processors {
		err := processor.Process()
		// processor error must return
		if err != nil {
			ctx.logger.Fatalln(err)
		}
	}
}

func (ctx *defaultApplicationContext) doFunctionInject() {
	if ctx.disableInject {
		return
	}
	err := ctx.funcHandler.InjectAllFunctions(ctx.container)
	if err != nil {
		ctx.logger.Errorln(err)
	}
}

func (ctx *defaultApplicationContext) injectAll() {
	if ctx.disableInject {
		return
	}
	ctx.container.Scan(func(key string, value bean.Definition) bool {
		if value.IsObject() && ctx.injector.CanInject(value.Interface()) {
			err := ctx.injector.Inject(ctx.container, value.Interface())
			if err != nil {
				ctx.logger.Errorln("Inject failed: ", err)
			}
		}
		return true
	})
}

// 按注册顺序的逆序销毁
func (ctx *defaultApplicationContext) destroyBeans() {
	names := ctx.container.Names()
	for i := len(names) - 1; i >= 0; i-- {
		d, ok := ctx.container.GetDefinition(names[i])
		if !ok {
			continue
		}
		if err := d.Destroy(); err != nil {
			ctx.logger.Errorln(err)
		}
	}

	ctx.processorsLock.Lock()
	defer ctx.processorsLock.Unlock()
	for _, p := range ctx.addedProcessors {
		if err := p.BeanDestroy(); err != nil {
			ctx.logger.Errorln(err)
		}
	}
}

func (ctx *defaultApplicationContext) notifyStarted() {
	if ctx.disableEvent {
		return
	}
	_ = ctx.PublishEvent(NewContextStartedEvent(ctx))
}

func (ctx *defaultApplicationContext) notifyClosed() {
	if ctx.disableEvent {
		return
	}
	_ = ctx.eventProc.NotifyEvent(NewContextClosedEvent(ctx))
}

func (ctx *defaultApplicationContext) notifyStopped() {
	if ctx.disableEvent {
		return
	}
	_ = ctx.eventProc.NotifyEvent(NewContextStoppedEvent(ctx))
}
