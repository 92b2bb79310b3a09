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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/xfali/neve-ioc/appcontext"
	"github.com/xfali/neve-ioc/application"
)

const appYaml = `
neve:
  application:
    name: app-test
    bannerMode: off

userdata:
  value: "hello"
`

type appConfig struct {
	Value string `fig:"userdata.value"`
}

type appBean struct {
	Value     string
	destroyed bool
}

func (c *appConfig) Holder() *appBean {
	return &appBean{Value: c.Value}
}

func (b *appBean) BeanDestroy() error {
	b.destroyed = true
	return nil
}

type startedListener struct {
	ch chan struct{}
}

func (l *startedListener) OnApplicationEvent(e appcontext.ApplicationEvent) {
	if _, ok := e.(*appcontext.ContextStartedEvent); ok {
		close(l.ch)
	}
}

func TestApplication(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	assert.NoError(t, os.WriteFile(path, []byte(appYaml), 0644))

	waiter := application.NewSignalWaiter(application.SignalWaiterOpts.SetNotifySignals())
	app := NewFileConfigApplication(path, OptSetSignalWaiter(waiter))
	assert.NoError(t, app.RegisterConfiguration(&appConfig{}))
	started := make(chan struct{})
	assert.NoError(t, app.RegisterBean(&startedListener{ch: started}))

	done := make(chan error, 1)
	go func() {
		done <- app.Run()
	}()

	select {
	case <-started:
	case <-time.After(3 * time.Second):
		t.Fatal("application not started")
	}
	o, ok := app.GetApplicationContext().GetBean("holder")
	if !ok {
		t.Fatal("holder not found")
	}
	holder := o.(*appBean)
	assert.Equal(t, "hello", holder.Value)
	assert.Equal(t, "app-test", app.GetApplicationContext().GetApplicationName())

	app.Stop()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("application not stopped")
	}
	assert.True(t, holder.destroyed)
	assert.Error(t, app.RegisterBean(&appBean{}))
}

func TestGetResource(t *testing.T) {
	abs, _ := filepath.Abs("application.yaml")
	assert.Equal(t, abs, GetResource(abs))

	SetResourceRoot("root")
	defer SetResourceRoot("")
	t.Setenv(envResourceDir, "")
	assert.Equal(t, filepath.Join("root", "a.yaml"), GetResource("a.yaml"))

	t.Setenv(envResourceDir, "env")
	assert.Equal(t, filepath.Join("env", "a.yaml"), GetResource("a.yaml"))
}
