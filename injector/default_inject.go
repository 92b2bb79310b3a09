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
	"errors"
	"fmt"
	"reflect"

	"github.com/xfali/neve-ioc/bean"
	errors2 "github.com/xfali/neve-ioc/errors"
	"github.com/xfali/neve-ioc/order"
	"github.com/xfali/neve-ioc/reflection"
	"github.com/xfali/xlog"
)

type defaultInjector struct {
	logger    xlog.Logger
	actuators map[reflect.Kind]Actuator
	lm        ListenerManager
	tagName   string
	recursive bool
}

type Opt func(*defaultInjector)

func New(opts ...Opt) *defaultInjector {
	ret := &defaultInjector{
		logger:  xlog.GetLogger(),
		tagName: InjectTagName,
	}
	ret.actuators = map[reflect.Kind]Actuator{
		reflect.Interface: ret.injectInterface,
		reflect.Struct:    ret.injectStruct,
		reflect.Slice:     ret.injectSlice,
		reflect.Map:       ret.injectMap,
	}
	for _, opt := range opts {
		opt(ret)
	}
	if ret.lm == nil {
		ret.lm = NewListenerManager(ret.logger)
	}
	return ret
}

func (injector *defaultInjector) CanInject(o interface{}) bool {
	if o == nil {
		return false
	}
	t := reflect.TypeOf(o)
	if t.Kind() == reflect.Ptr {
		return t.Elem().Kind() == reflect.Struct
	}
	return false
}

func (injector *defaultInjector) Inject(c bean.Container, o interface{}) error {
	if !injector.CanInject(o) {
		return errors.New("Type Not support. ")
	}
	return injector.injectStructFields(c, reflect.ValueOf(o).Elem())
}

func (injector *defaultInjector) injectStructFields(c bean.Container, v reflect.Value) error {
	t := v.Type()
	if t.Kind() != reflect.Struct {
		return errors.New("result must be struct ptr")
	}

	var errs errors2.Errors
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		tagAll, ok := field.Tag.Lookup(injector.tagName)
		if !ok {
			continue
		}
		tag, listeners := injector.lm.ParseListener(tagAll)
		err := injector.InjectValue(c, tag, v.Field(i))
		if err != nil {
			err = fmt.Errorf("Inject failed: Field [%s: %s] error: %v ",
				reflection.GetTypeName(t), field.Name, err)
			_ = errs.AddError(notifyFailed(listeners, err))
		}
	}

	return errs.Err()
}

func (injector *defaultInjector) CanInjectType(t reflect.Type) bool {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	actuate := injector.actuators[t.Kind()]
	return actuate != nil
}

func (injector *defaultInjector) InjectValue(c bean.Container, name string, v reflect.Value) error {
	t := v.Type()
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	if !v.CanSet() {
		return errors.New("Inject Failed: Value cannot set. ")
	}
	actuate := injector.actuators[t.Kind()]
	if actuate == nil {
		return errors.New("Cannot inject this kind: " + reflection.GetTypeName(v.Type()))
	}
	return actuate(c, name, v)
}

func (injector *defaultInjector) injectInterface(c bean.Container, name string, v reflect.Value) error {
	return injector.injectByType(c, name, v)
}

func (injector *defaultInjector) injectStruct(c bean.Container, name string, v reflect.Value) error {
	vt := v.Type()
	if vt.Kind() == reflect.Ptr {
		return injector.injectByType(c, name, v)
	}

	if injector.recursive {
		return injector.injectStructFields(c, v)
	}
	// 只允许注入指针类型
	return fmt.Errorf("Inject struct: [%s] failed: value must be pointer. ", reflection.GetTypeName(vt))
}

// 指定名称时直接按名称获取，否则先按类型名称获取，再按类型自动匹配
func (injector *defaultInjector) injectByType(c bean.Container, name string, v reflect.Value) error {
	vt := v.Type()
	if name != "" {
		o, ok := c.GetDefinition(name)
		if !ok {
			return fmt.Errorf("Inject nothing, cannot find bean named %s. ", name)
		}
		return setDefinitionValue(o, v)
	}

	typeName := reflection.GetTypeName(vt)
	if o, ok := c.GetDefinition(typeName); ok {
		return setDefinitionValue(o, v)
	}

	o, err := bean.MatchDefinition(c, vt)
	if err != nil {
		return err
	}
	if err := setDefinitionValue(o, v); err != nil {
		return err
	}
	// cache to container
	if err := c.PutDefinition(typeName, o); err != nil {
		injector.logger.Debugf("Cache bean definition %s failed: %v\n", typeName, err)
	}
	return nil
}

func setDefinitionValue(d bean.Definition, v reflect.Value) error {
	dv, err := bean.Resolve(d)
	if err != nil {
		return err
	}
	if !dv.IsValid() || (dv.Kind() == reflect.Ptr && dv.IsNil()) {
		return fmt.Errorf("Bean %s value is nil. ", d.Name())
	}
	if !dv.Type().AssignableTo(v.Type()) {
		return fmt.Errorf("Bean %s type %s cannot assign to %s. ", d.Name(),
			reflection.GetTypeName(dv.Type()), reflection.GetTypeName(v.Type()))
	}
	v.Set(dv)
	return nil
}

func (injector *defaultInjector) injectSlice(c bean.Container, name string, v reflect.Value) error {
	vt := v.Type()
	explicit := name != ""
	if !explicit {
		name = reflection.GetSliceName(vt)
	}
	if o, ok := c.GetDefinition(name); ok {
		ov, err := bean.Resolve(o)
		if err != nil {
			return err
		}
		return reflection.SmartCopySlice(v, ov)
	}
	if explicit {
		return fmt.Errorf("Slice Inject nothing, cannot find bean named %s. ", name)
	}

	//自动注入
	items, err := collect(c, vt.Elem())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.New("Slice Inject nothing, cannot find any Implementation: " + name)
	}
	sorted := make([]interface{}, len(items))
	for i := range items {
		sorted[i] = items[i]
	}
	order.Sort(sorted)

	ret := reflect.MakeSlice(vt, 0, len(sorted))
	for _, o := range sorted {
		ret = reflect.Append(ret, o.(*collected).value)
	}
	v.Set(ret)
	return nil
}

func (injector *defaultInjector) injectMap(c bean.Container, name string, v reflect.Value) error {
	vt := v.Type()
	explicit := name != ""
	if !explicit {
		name = reflection.GetMapName(vt)
	}
	if o, ok := c.GetDefinition(name); ok {
		ov, err := bean.Resolve(o)
		if err != nil {
			return err
		}
		return reflection.SmartCopyMap(v, ov)
	}
	if explicit {
		return fmt.Errorf("Map Inject nothing, cannot find bean named %s. ", name)
	}
	if vt.Key().Kind() != reflect.String {
		return errors.New("Key type must be string. ")
	}

	//自动注入，key为bean名称
	items, err := collect(c, vt.Elem())
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return errors.New("Map Inject nothing, cannot find any Implementation: " + name)
	}
	ret := reflect.MakeMapWithSize(vt, len(items))
	for _, o := range items {
		ret.SetMapIndex(reflect.ValueOf(o.key).Convert(vt.Key()), o.value)
	}
	v.Set(ret)
	return nil
}

// 收集到的bean实例，携带注册时配置的顺序
type collected struct {
	key   string
	value reflect.Value
	meta  *bean.Metadata
}

func (o *collected) Unwrap() interface{} {
	return o.value.Interface()
}

func (o *collected) SourceOrder() (int, bool) {
	return o.meta.Order, o.meta.HasOrder()
}

func collect(c bean.Container, elemType reflect.Type) ([]*collected, error) {
	var ret []*collected
	var errs errors2.Errors
	c.Scan(func(key string, value bean.Definition) bool {
		if !value.Type().AssignableTo(elemType) {
			return true
		}
		ov, err := bean.Resolve(value)
		if err != nil {
			_ = errs.AddError(err)
			return true
		}
		if !ov.IsValid() || !ov.Type().AssignableTo(elemType) {
			return true
		}
		ret = append(ret, &collected{
			key:   key,
			value: ov,
			meta:  value.Meta(),
		})
		return true
	})
	return ret, errs.Err()
}

func OptSetLogger(v xlog.Logger) Opt {
	return func(injector *defaultInjector) {
		injector.logger = v
	}
}

func OptSetInjectTagName(v string) Opt {
	return func(injector *defaultInjector) {
		injector.tagName = v
	}
}

// 非指针结构体字段是否递归注入
func OptSetRecursive(recursive bool) Opt {
	return func(injector *defaultInjector) {
		injector.recursive = recursive
	}
}

// 配置注入执行器，使其能注入更多类型
func OptSetActuator(kind reflect.Kind, actuator Actuator) Opt {
	return func(injector *defaultInjector) {
		if actuator != nil {
			injector.actuators[kind] = actuator
		}
	}
}

// 配置监听管理器
func OptSetListenerManager(manager ListenerManager) Opt {
	return func(injector *defaultInjector) {
		if manager != nil {
			injector.lm = manager
		}
	}
}

// 配置监听器
func OptSetListener(field string, listener Listener) Opt {
	return func(injector *defaultInjector) {
		if injector.lm == nil {
			injector.lm = NewListenerManager(injector.logger)
		}
		injector.lm.AddListener(field, listener)
	}
}

// 获得注入器使用的监听管理器
func (injector *defaultInjector) ListenerManager() ListenerManager {
	return injector.lm
}
