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


package appcontext_test

import (
	"context"
	"testing"
	"time"

	"github.com/xfali/neve-ioc/appcontext"
)

type orderedListener struct {
	id      int
	order   int
	records *[]int
}

func (l *orderedListener) OnApplicationEvent(e appcontext.ApplicationEvent) {
	*l.records = append(*l.records, l.id)
}

func (l *orderedListener) GetOrder() int {
	return l.order
}

type panicListener struct{}

func (l *panicListener) OnApplicationEvent(e appcontext.ApplicationEvent) {
	panic("listener failed")
}

type userEvent struct {
	appcontext.BaseApplicationEvent
	name string
}

func TestEventProcessor(t *testing.T) {
	t.Run("order", func(t *testing.T) {
		proc := appcontext.NewEventProcessor()
		var records []int
		proc.AddListeners(
			&orderedListener{id: 1, order: 10, records: &records},
			&panicListener{},
			&orderedListener{id: 2, order: 1, records: &records},
			"not a listener",
			&orderedListener{id: 3, order: 10, records: &records},
		)
		if err := proc.SendEvent(appcontext.NewPayloadApplicationEvent("x")); err != nil {
			t.Fatal(err)
		}
		if len(records) != 3 || records[0] != 2 || records[1] != 1 || records[2] != 3 {
			t.Fatal("expect [2 1 3] but get: ", records)
		}
	})

	t.Run("event consumer", func(t *testing.T) {
		proc := appcontext.NewEventProcessor()
		got := make(chan string, 1)
		proc.AddListeners(func(e *userEvent) {
			got <- e.name
		})
		if err := proc.Start(); err != nil {
			t.Fatal(err)
		}
		if err := proc.Start(); err == nil {
			t.Fatal("start twice must fail")
		}
		e := &userEvent{BaseApplicationEvent: *appcontext.NewBaseApplicationEvent(), name: "user"}
		if err := proc.PostEvent(context.Background(), e); err != nil {
			t.Fatal(err)
		}
		select {
		case v := <-got:
			if v != "user" {
				t.Fatal("expect user but get: ", v)
			}
		case <-time.After(3 * time.Second):
			t.Fatal("event not received")
		}
		_ = proc.Close()
		_ = proc.Close()
		if err := proc.PublishEvent(e); err == nil {
			t.Fatal("publish after close must fail")
		}
		if err := proc.PublishEvent(nil); err == nil {
			t.Fatal("nil event must fail")
		}
	})

	t.Run("queue full", func(t *testing.T) {
		block := make(chan struct{})
		entered := make(chan struct{}, 1)
		proc := appcontext.NewEventProcessor(appcontext.OptSetEventBufferSize(1))
		proc.AddListeners(func(e *userEvent) {
			select {
			case entered <- struct{}{}:
			default:
			}
			<-block
		})
		_ = proc.Start()
		defer proc.Close()
		defer close(block)

		e := &userEvent{BaseApplicationEvent: *appcontext.NewBaseApplicationEvent()}
		if err := proc.PublishEvent(e); err != nil {
			t.Fatal(err)
		}
		<-entered
		if err := proc.PublishEvent(e); err != nil {
			t.Fatal(err)
		}
		if err := proc.PublishEvent(e); err == nil {
			t.Fatal("expect queue full")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		if err := proc.PostEvent(ctx, e); err != context.DeadlineExceeded {
			t.Fatal("expect deadline exceeded but get: ", err)
		}
	})

	t.Run("disabled", func(t *testing.T) {
		proc := appcontext.NewDisableEventProcessor()
		if err := proc.PublishEvent(appcontext.NewPayloadApplicationEvent(1)); err == nil {
			t.Fatal("expect disabled error")
		}
	})
}
