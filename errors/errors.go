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
	"strings"
	"sync"
)

type ErrList interface {
	Empty() bool

	AddError(e error) error

	Error() string
}

// Errors 错误列表，用于合并多个bean的处理错误
type Errors []error

func (es Errors) Empty() bool {
	return len(es) == 0
}

// AddError 追加错误，nil会被忽略
func (es *Errors) AddError(e error) error {
	if e != nil {
		*es = append(*es, e)
	}
	return es
}

func (es Errors) Error() string {
	return join(es)
}

// 返回合并后的错误，列表为空时返回nil
func (es Errors) Err() error {
	if es.Empty() {
		return nil
	}
	return es
}

type LockedErrors struct {
	errs   []error
	locker sync.RWMutex
}

func (e *LockedErrors) Empty() bool {
	e.locker.RLock()
	defer e.locker.RUnlock()
	return len(e.errs) == 0
}

func (e *LockedErrors) AddError(err error) error {
	if err == nil {
		return e
	}
	e.locker.Lock()
	defer e.locker.Unlock()
	e.errs = append(e.errs, err)
	return e
}

func (e *LockedErrors) Error() string {
	e.locker.RLock()
	defer e.locker.RUnlock()
	return join(e.errs)
}

func (e *LockedErrors) Err() error {
	if e.Empty() {
		return nil
	}
	return e
}

func join(errs []error) string {
	buf := strings.Builder{}
	for i := range errs {
		buf.WriteString(errs[i].Error())
		if i < len(errs)-1 {
			buf.WriteString(",")
		}
	}
	return buf.String()
}
