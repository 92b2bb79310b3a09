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

package errors

import (
	"errors"
	"sync"
	"testing"
)

func TestErrors(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		var errs Errors
		_ = errs.AddError(nil)
		if !errs.Empty() {
			t.Fatal("expect empty")
		}
		if errs.Err() != nil {
			t.Fatal("expect nil error")
		}
	})

	t.Run("join", func(t *testing.T) {
		var errs Errors
		_ = errs.AddError(errors.New("a"))
		_ = errs.AddError(errors.New("b"))
		if errs.Error() != "a,b" {
			t.Fatal("expect a,b but get: ", errs.Error())
		}
		if errs.Err() == nil {
			t.Fatal("expect error")
		}
	})
}

func TestLockedErrors(t *testing.T) {
	errs := &LockedErrors{}
	wait := sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wait.Add(1)
		go func() {
			defer wait.Done()
			_ = errs.AddError(errors.New("x"))
		}()
	}
	wait.Wait()
	if errs.Empty() {
		t.Fatal("expect not empty")
	}
	if len(errs.Error()) != len("x")*10+9 {
		t.Fatal("unexpected message: ", errs.Error())
	}
}
