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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
	"github.com/xfali/fig"
	"github.com/xfali/neve-ioc"
	"github.com/xfali/neve-ioc/application"
)

type bootBean struct {
	destroyed chan struct{}
}

func (b *bootBean) BeanDestroy() error {
	close(b.destroyed)
	return nil
}

func TestBoot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	assert.NoError(t, os.WriteFile(path, []byte("neve:\n  application:\n    bannerMode: off\n"), 0644))
	prop, err := fig.LoadYamlFile(path)
	assert.NoError(t, err)
	waiter := application.NewSignalWaiter(application.SignalWaiterOpts.SetNotifySignals())
	Customize(neve.NewApplication(prop, neve.OptSetSignalWaiter(waiter)))

	b := &bootBean{destroyed: make(chan struct{})}
	assert.NoError(t, RegisterBean(b))

	done := make(chan error, 1)
	go func() {
		done <- Run()
	}()
	time.Sleep(100 * time.Millisecond)
	Stop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("boot not stopped")
	}
	select {
	case <-b.destroyed:
	default:
		t.Fatal("bean not destroyed")
	}
}
