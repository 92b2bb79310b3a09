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

package reflection

import (
	"io"
	"reflect"
	"strings"
	"testing"
)

type nameTest struct{}

func TestGetTypeName(t *testing.T) {
	t.Run("ptr", func(t *testing.T) {
		name := GetTypeName(reflect.TypeOf(&nameTest{}))
		if name != "*github.com.xfali.neve-ioc.reflection.nameTest" {
			t.Fatal("unexpected name: ", name)
		}
	})
	t.Run("interface", func(t *testing.T) {
		name := GetTypeName(reflect.TypeOf((*io.Writer)(nil)).Elem())
		if name != "io.Writer" {
			t.Fatal("unexpected name: ", name)
		}
	})
	t.Run("slice", func(t *testing.T) {
		name := GetTypeName(reflect.TypeOf([]io.Writer{}))
		if name != "[]io.Writer" {
			t.Fatal("unexpected name: ", name)
		}
		name = GetTypeName(reflect.TypeOf([]string{}))
		if name != "[]string" {
			t.Fatal("unexpected name: ", name)
		}
	})
	t.Run("map", func(t *testing.T) {
		name := GetTypeName(reflect.TypeOf(map[string]io.Writer{}))
		if name != "map[string]io.Writer" {
			t.Fatal("unexpected name: ", name)
		}
	})
	t.Run("func", func(t *testing.T) {
		if GetObjectName(func() {}) != "" {
			t.Fatal("function must not have object name")
		}
	})
}

func TestLowerFirst(t *testing.T) {
	if LowerFirst("DataSource") != "dataSource" {
		t.Fatal("expect dataSource")
	}
	if LowerFirst("") != "" {
		t.Fatal("expect empty")
	}
}

func TestSmartCopy(t *testing.T) {
	t.Run("slice", func(t *testing.T) {
		src := []interface{}{&strings.Builder{}, "x", &strings.Builder{}}
		var dest []io.Writer
		err := SmartCopySlice(reflect.ValueOf(&dest).Elem(), reflect.ValueOf(src))
		if err != nil {
			t.Fatal(err)
		}
		if len(dest) != 2 {
			t.Fatal("expect 2 but get: ", len(dest))
		}
	})
	t.Run("map", func(t *testing.T) {
		src := map[string]interface{}{"a": &strings.Builder{}, "b": 1}
		var dest map[string]io.Writer
		err := SmartCopyMap(reflect.ValueOf(&dest).Elem(), reflect.ValueOf(src))
		if err != nil {
			t.Fatal(err)
		}
		if len(dest) != 1 || dest["a"] == nil {
			t.Fatal("unexpected map: ", dest)
		}
	})
}
