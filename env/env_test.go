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


package env

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/xfali/fig"
)

const testYaml = `
neve:
  application:
    name: test
  profiles:
    active: dev, local

datasource:
  driverClassName: com.mysql.cj.jdbc.Driver
  username: root
`

func loadProperties(t *testing.T) fig.Properties {
	path := filepath.Join(t.TempDir(), "application.yaml")
	if err := os.WriteFile(path, []byte(testYaml), 0644); err != nil {
		t.Fatal(err)
	}
	prop, err := fig.LoadYamlFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return prop
}

func mapLookup(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestGetProperty(t *testing.T) {
	e := New(loadProperties(t), OptSetLookupEnv(mapLookup(map[string]string{
		"DATASOURCE_USERNAME": "admin",
		"DB_HOST":             "127.0.0.1",
		"DB_URL":              "jdbc:mysql://${db.host}:${db.port:3306}/test",
	})))

	t.Run("file", func(t *testing.T) {
		if v := e.GetProperty("neve.application.name", ""); v != "test" {
			t.Fatal("expect test but get: ", v)
		}
		if v := e.GetProperty("not.exists", "def"); v != "def" {
			t.Fatal("expect def but get: ", v)
		}
		if e.ContainsProperty("not.exists") {
			t.Fatal("must not contains")
		}
		if _, err := e.GetRequiredProperty("not.exists"); err == nil {
			t.Fatal("expect error")
		}
	})

	t.Run("env overlay", func(t *testing.T) {
		if v := e.GetProperty("datasource.username", ""); v != "admin" {
			t.Fatal("expect admin but get: ", v)
		}
	})

	t.Run("nested value", func(t *testing.T) {
		v, err := e.GetRequiredProperty("db.url")
		if err != nil {
			t.Fatal(err)
		}
		if v != "jdbc:mysql://127.0.0.1:3306/test" {
			t.Fatal("unexpected url: ", v)
		}
	})
}

func TestPlaceholders(t *testing.T) {
	e := New(nil, OptSetLookupEnv(mapLookup(map[string]string{
		"NAME":   "neve",
		"KEY":    "name",
		"LOOP_A": "${loop.b}",
		"LOOP_B": "${loop.a}",
	})))

	cases := map[string]string{
		"hello ${name}":           "hello neve",
		"${missing:default}":      "default",
		"${missing:${name}}":      "neve",
		"${${key}}":               "neve",
		"keep ${missing} as is":   "keep ${missing} as is",
		"unclosed ${name":         "unclosed ${name",
		"${name}-${missing:}-end": "neve--end",
	}
	for text, expect := range cases {
		if v := e.ResolvePlaceholders(text); v != expect {
			t.Fatalf("%s expect %s but get %s", text, expect, v)
		}
	}

	if _, err := e.ResolveRequiredPlaceholders("${missing}"); err == nil {
		t.Fatal("expect unresolvable error")
	}
	if _, err := e.ResolveRequiredPlaceholders("${loop.a}"); err == nil {
		t.Fatal("expect circular error")
	} else {
		t.Log(err)
	}
	if v := e.ResolvePlaceholders("${loop.a}"); v != "${loop.a}" {
		t.Fatal("circular reference must keep text but get: ", v)
	}
}

func TestProfiles(t *testing.T) {
	t.Run("configured", func(t *testing.T) {
		e := New(loadProperties(t), OptSetLookupEnv(nil))
		if !reflect.DeepEqual(e.GetActiveProfiles(), []string{"dev", "local"}) {
			t.Fatal("unexpected active profiles: ", e.GetActiveProfiles())
		}
		if !e.AcceptsProfiles("prod", "dev") {
			t.Fatal("dev is active")
		}
		if e.AcceptsProfiles("prod") {
			t.Fatal("prod is not active")
		}
		if !e.AcceptsProfiles("!prod") {
			t.Fatal("!prod must be accepted")
		}
		if e.AcceptsProfiles("!dev") {
			t.Fatal("!dev must not be accepted")
		}
	})

	t.Run("default", func(t *testing.T) {
		e := New(nil, OptSetLookupEnv(nil))
		if len(e.GetActiveProfiles()) != 0 {
			t.Fatal("expect no active profile")
		}
		if !e.AcceptsProfiles(DefaultProfile) {
			t.Fatal("default profile must be accepted")
		}
		e.AddActiveProfile("test")
		e.AddActiveProfile("test")
		if e.AcceptsProfiles(DefaultProfile) || !e.AcceptsProfiles("test") {
			t.Fatal("default profile must be ignored when active profile exists")
		}
		if len(e.GetActiveProfiles()) != 1 {
			t.Fatal("duplicate profile")
		}
		e.SetActiveProfiles()
		e.SetDefaultProfiles("fallback")
		if !e.AcceptsProfiles("fallback") {
			t.Fatal("fallback must be accepted")
		}
	})

	t.Run("merge", func(t *testing.T) {
		parent := New(nil, OptSetLookupEnv(mapLookup(map[string]string{
			"PARENT_KEY": "p",
		})))
		parent.SetActiveProfiles("parent")
		e := New(nil, OptSetLookupEnv(nil))
		e.Merge(parent)
		if e.GetProperty("parent.key", "") != "p" {
			t.Fatal("parent property must be visible")
		}
		if !e.AcceptsProfiles("parent") {
			t.Fatal("parent profile must be merged")
		}
	})
}

func TestEnvKey(t *testing.T) {
	if v := EnvKey("neve.application-name"); v != "NEVE_APPLICATION_NAME" {
		t.Fatal("unexpected env key: ", v)
	}
}
