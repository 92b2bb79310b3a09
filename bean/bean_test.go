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
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type a interface {
	Get() string
}

type aImpl struct {
	v       string
	set     int
	destroy int
}

func (o *aImpl) Get() string {
	return o.v
}

func (o *aImpl) BeanAfterSet() error {
	o.set++
	return nil
}

func (o *aImpl) BeanDestroy() error {
	o.destroy++
	return nil
}

type infraBean struct{}

func (b *infraBean) BeanRole() Role {
	return RoleInfrastructure
}

type protoBean struct {
	id int
}

func (b *protoBean) BeanScope() string {
	return ScopePrototype
}

func TestContainerRegister(t *testing.T) {
	t.Run("by type", func(t *testing.T) {
		c := NewContainer()
		if err := c.Register(&aImpl{v: "1"}); err != nil {
			t.Fatal(err)
		}
		o, ok := c.Get("*github.com.xfali.neve-ioc.bean.aImpl")
		if !ok {
			t.Fatal("not found")
		}
		if o.(a).Get() != "1" {
			t.Fatal("expect 1 but get: ", o.(a).Get())
		}
		var v *aImpl
		if !c.GetByType(&v) || v.Get() != "1" {
			t.Fatal("GetByType failed")
		}
	})

	t.Run("by assignable type", func(t *testing.T) {
		c := NewContainer()
		err := c.RegisterByName("dataSource", func() a {
			return &aImpl{v: "ds"}
		})
		if err != nil {
			t.Fatal(err)
		}
		var v a
		if !c.GetByType(&v) || v.Get() != "ds" {
			t.Fatal("expect bean registered with custom name found by interface type")
		}
		var impl *aImpl
		if c.GetByType(&impl) {
			t.Fatal("function bean declared as interface must not match concrete type")
		}
	})

	t.Run("by type ambiguous", func(t *testing.T) {
		c := NewContainer()
		_ = c.RegisterByName("a1", &aImpl{v: "1"})
		_ = c.RegisterByName("a2", &aImpl{v: "2"})
		var v a
		if c.GetByType(&v) {
			t.Fatal("expect ambiguous lookup failed but get: ", v.Get())
		}

		_ = c.RegisterByName("a3", &aImpl{v: "3"}, SetPrimary())
		if !c.GetByType(&v) || v.Get() != "3" {
			t.Fatal("expect primary bean")
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		c := NewContainer()
		if err := c.RegisterByName("x", &aImpl{}); err != nil {
			t.Fatal(err)
		}
		if err := c.RegisterByName("x", &aImpl{}); err == nil {
			t.Fatal("expect duplicate error")
		}
	})

	t.Run("nil", func(t *testing.T) {
		c := NewContainer()
		var p *aImpl
		if err := c.Register(p); err == nil {
			t.Fatal("expect nil pointer error")
		}
		if err := c.Register(1); err == nil {
			t.Fatal("expect unsupported type error")
		}
	})
}

func TestContainerOrder(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterByName("last", &aImpl{})
	_ = c.RegisterByName("second", &aImpl{}, SetOrder(10))
	_ = c.RegisterByName("first", &aImpl{}, SetOrder(-10))
	_ = c.RegisterByName("last2", &aImpl{})
	_ = c.PutDefinition("alias", &objectDefinition{o: &aImpl{}, meta: newMetadata()})

	expect := []string{"first", "second", "last", "last2"}
	if !reflect.DeepEqual(c.Names(), expect) {
		t.Fatal("expect ", expect, " but get ", c.Names())
	}
	var scanned []string
	c.Scan(func(key string, value Definition) bool {
		scanned = append(scanned, key)
		return len(scanned) < 2
	})
	if len(scanned) != 2 {
		t.Fatal("scan must stop")
	}
	if _, ok := c.GetDefinition("alias"); !ok {
		t.Fatal("alias must be found")
	}
}

func TestRole(t *testing.T) {
	c := NewContainer()
	_ = c.RegisterByName("app", &aImpl{})
	_ = c.RegisterByName("infra", &infraBean{})
	_ = c.RegisterByName("support", &infraBean{}, SetRole(RoleSupport))

	check := func(name string, role Role) {
		d, _ := c.GetDefinition(name)
		if d.Meta().Role != role {
			t.Fatalf("%s expect role %s but get %s", name, role, d.Meta().Role)
		}
	}
	check("app", RoleApplication)
	check("infra", RoleInfrastructure)
	check("support", RoleSupport)
	if RoleInfrastructure.String() != "infrastructure" {
		t.Fatal("unexpected role string")
	}
}

func TestScope(t *testing.T) {
	t.Run("singleton function", func(t *testing.T) {
		c := NewContainer()
		count := 0
		err := c.RegisterByName("s", func() a {
			count++
			return &aImpl{v: "s"}
		})
		if err != nil {
			t.Fatal(err)
		}
		o1, _ := c.Get("s")
		o2, _ := c.Get("s")
		if o1 != o2 || count != 1 {
			t.Fatal("singleton must create once, count: ", count)
		}
	})

	t.Run("prototype function", func(t *testing.T) {
		c := NewContainer()
		count := 0
		err := c.RegisterByName("p", func() *protoBean {
			count++
			return &protoBean{id: count}
		})
		if err != nil {
			t.Fatal(err)
		}
		d, _ := c.GetDefinition("p")
		if d.Meta().Scope != ScopePrototype {
			t.Fatal("expect prototype from hint but get: ", d.Meta().Scope)
		}
		o1, _ := c.Get("p")
		o2, _ := c.Get("p")
		if o1 == o2 || count != 2 {
			t.Fatal("prototype must create every time")
		}
	})

	t.Run("option over hint", func(t *testing.T) {
		c := NewContainer()
		err := c.RegisterByName("p", func() *protoBean {
			return &protoBean{}
		}, SetScope(ScopeSingleton))
		if err != nil {
			t.Fatal(err)
		}
		d, _ := c.GetDefinition("p")
		if d.Meta().Scope != ScopeSingleton {
			t.Fatal("expect singleton but get: ", d.Meta().Scope)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		c := NewContainer()
		if err := c.Register(&aImpl{}, SetScope(ScopePrototype)); err == nil {
			t.Fatal("object bean cannot be prototype")
		}
		if err := c.Register(func() a { return &aImpl{} }, SetScope("session")); err == nil {
			t.Fatal("expect unknown scope error")
		}
	})
}

func TestFunctionDefinition(t *testing.T) {
	t.Run("with error", func(t *testing.T) {
		c := NewContainer()
		err := c.RegisterByName("e", func() (a, error) {
			return nil, errors.New("create failed")
		})
		if err != nil {
			t.Fatal(err)
		}
		d, _ := c.GetDefinition("e")
		_, err = Resolve(d)
		if err == nil {
			t.Fatal("expect error")
		}
		t.Log(err)
		if _, ok := c.Get("e"); ok {
			t.Fatal("expect not found")
		}
	})

	t.Run("with params", func(t *testing.T) {
		c := NewContainer()
		if err := c.Register(func(x a) *aImpl { return nil }); err == nil {
			t.Fatal("function with params must be wrapped")
		}
	})

	t.Run("circular", func(t *testing.T) {
		c := NewContainer()
		err := c.RegisterByName("c", func() a {
			o, ok := c.Get("c")
			if !ok {
				panic("circular")
			}
			return o.(a)
		})
		if err != nil {
			t.Fatal(err)
		}
		d, _ := c.GetDefinition("c")
		if _, err := Resolve(d); err == nil {
			t.Fatal("expect circular error")
		}
	})

	t.Run("concurrent prototype", func(t *testing.T) {
		c := NewContainer()
		err := c.RegisterByName("p", func() a {
			time.Sleep(20 * time.Millisecond)
			return &aImpl{v: "p"}
		}, SetScope(ScopePrototype))
		if err != nil {
			t.Fatal(err)
		}
		var wg sync.WaitGroup
		var failed int32
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, ok := c.Get("p"); !ok {
					atomic.AddInt32(&failed, 1)
				}
			}()
		}
		wg.Wait()
		if failed != 0 {
			t.Fatal("concurrent get must not be treated as circular, failed: ", failed)
		}
	})

	t.Run("concurrent singleton", func(t *testing.T) {
		c := NewContainer()
		var created int32
		err := c.RegisterByName("s", func() a {
			atomic.AddInt32(&created, 1)
			time.Sleep(20 * time.Millisecond)
			return &aImpl{v: "s"}
		})
		if err != nil {
			t.Fatal(err)
		}
		var wg sync.WaitGroup
		values := make([]interface{}, 4)
		for i := range values {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				values[i], _ = c.Get("s")
			}(i)
		}
		wg.Wait()
		if created != 1 {
			t.Fatal("singleton must create once, created: ", created)
		}
		for _, v := range values {
			if v == nil || v != values[0] {
				t.Fatal("expect same singleton but get: ", v)
			}
		}
	})

	t.Run("prototype not retained", func(t *testing.T) {
		c := NewContainer()
		err := c.RegisterByName("p", func() *aImpl {
			return &aImpl{v: "p"}
		}, SetScope(ScopePrototype))
		if err != nil {
			t.Fatal(err)
		}
		for i := 0; i < 1000; i++ {
			o, ok := c.Get("p")
			if !ok {
				t.Fatal("expect prototype")
			}
			if o.(*aImpl).set != 1 {
				t.Fatal("prototype must be initialized on create")
			}
		}
		d, _ := c.GetDefinition("p")
		fd := d.(*functionExDefinition)
		if len(fd.snapshot()) != 0 || fd.Instantiated() {
			t.Fatal("prototype instances must not be retained, got: ", len(fd.snapshot()))
		}
	})

	t.Run("lifecycle", func(t *testing.T) {
		c := NewContainer()
		o := &aImpl{}
		_ = c.RegisterByName("f", func() a { return o })
		d, _ := c.GetDefinition("f")
		if d.(Instantiator).Instantiated() {
			t.Fatal("must be lazy")
		}
		_, _ = c.Get("f")
		if err := d.AfterSet(); err != nil {
			t.Fatal(err)
		}
		_ = d.AfterSet()
		if err := d.Destroy(); err != nil {
			t.Fatal(err)
		}
		_ = d.Destroy()
		if o.set != 1 || o.destroy != 1 {
			t.Fatal("lifecycle must run once, set: ", o.set, " destroy: ", o.destroy)
		}
	})
}

type dImpl struct {
	inited    bool
	destroyed bool
}

func (d *dImpl) DoInit() {
	d.inited = true
}

func (d *dImpl) DoDestroy() error {
	d.destroyed = true
	return nil
}

func TestCustomBeanFactory(t *testing.T) {
	c := NewContainer()
	o := &dImpl{}
	err := c.Register(NewCustomBeanFactory(func() *dImpl {
		return o
	}, "DoInit", "DoDestroy"))
	if err != nil {
		t.Fatal(err)
	}
	d, ok := c.GetDefinition("*github.com.xfali.neve-ioc.bean.dImpl")
	if !ok {
		t.Fatal("not found")
	}
	_, _ = Resolve(d)
	_ = d.AfterSet()
	_ = d.Destroy()
	if !o.inited || !o.destroyed {
		t.Fatal("custom method not called")
	}

	err = c.RegisterByName("bad", NewCustomBeanFactory(func() *dImpl {
		return o
	}, "NotExists", ""))
	if err == nil {
		t.Fatal("expect method not found error")
	}
}

type testConfiguration struct {
	prefix string
}

func (c *testConfiguration) DataSource() a {
	return &aImpl{v: c.prefix + "ds"}
}

func (c *testConfiguration) Service(x a) (*aImpl, error) {
	return &aImpl{v: x.Get()}, nil
}

func (c *testConfiguration) Name() string {
	return c.prefix
}

func (c *testConfiguration) BeanAfterSet() error {
	return nil
}

type declaredConfiguration struct {
	testConfiguration
}

func (c *declaredConfiguration) BeanMethodOpts() map[string][]RegisterOpt {
	return map[string][]RegisterOpt{
		"DataSource": {SetRole(RoleSupport)},
	}
}

func TestParseConfiguration(t *testing.T) {
	t.Run("all methods", func(t *testing.T) {
		beans, err := ParseConfiguration(&testConfiguration{prefix: "x"})
		if err != nil {
			t.Fatal(err)
		}
		if len(beans) != 2 {
			t.Fatal("expect 2 beans but get: ", len(beans))
		}
		if beans[0].Name != "dataSource" || beans[1].Name != "service" {
			t.Fatal("unexpected names: ", beans[0].Name, beans[1].Name)
		}
		v := reflect.ValueOf(beans[0].Factory).Call(nil)[0]
		if v.Interface().(a).Get() != "xds" {
			t.Fatal("unexpected value")
		}
	})

	t.Run("declared", func(t *testing.T) {
		beans, err := ParseConfiguration(&declaredConfiguration{})
		if err != nil {
			t.Fatal(err)
		}
		if len(beans) != 1 || beans[0].Method != "DataSource" || len(beans[0].Opts) != 1 {
			t.Fatal("unexpected beans: ", beans)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		if _, err := ParseConfiguration(testConfiguration{}); err == nil {
			t.Fatal("expect pointer error")
		}
	})
}
