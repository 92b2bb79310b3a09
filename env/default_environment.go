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
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/xfali/fig"
	"github.com/xfali/xlog"
)

const (
	placeholderPrefix    = "${"
	placeholderSuffix    = "}"
	placeholderSeparator = ":"

	// fig.Properties没有判断key是否存在的方法，使用不可能出现的默认值判断
	missingValue = "\x00neve.env.missing\x00"
)

type LookupFunc func(key string) (string, bool)

type defaultEnvironment struct {
	logger    xlog.Logger
	props     fig.Properties
	lookupEnv LookupFunc

	active   []string
	defaults []string
	parents  []ConfigurableEnvironment
	lock     sync.RWMutex
}

type Opt func(*defaultEnvironment)

// New 创建Environment，props可以为nil
// 激活的profile由neve.profiles.active配置，默认profile由neve.profiles.default配置
func New(props fig.Properties, opts ...Opt) *defaultEnvironment {
	ret := &defaultEnvironment{
		logger:    xlog.GetLogger(),
		props:     props,
		lookupEnv: os.LookupEnv,
	}
	for _, opt := range opts {
		opt(ret)
	}
	ret.active = splitProfiles(ret.GetProperty(KeyActiveProfiles, ""))
	ret.defaults = splitProfiles(ret.GetProperty(KeyDefaultProfiles, DefaultProfile))
	return ret
}

func OptSetLogger(v xlog.Logger) Opt {
	return func(e *defaultEnvironment) {
		e.logger = v
	}
}

// 配置环境变量来源，nil表示不读取系统环境变量
func OptSetLookupEnv(f LookupFunc) Opt {
	return func(e *defaultEnvironment) {
		e.lookupEnv = f
	}
}

func (e *defaultEnvironment) Properties() fig.Properties {
	return e.props
}

func (e *defaultEnvironment) GetProperty(key string, defaultValue string) string {
	v, ok := e.lookupRaw(key)
	if !ok {
		return defaultValue
	}
	ret, err := e.resolve(v, false, map[string]bool{key: true})
	if err != nil {
		e.logger.Warnf("Resolve property %s failed: %v\n", key, err)
		return v
	}
	return ret
}

func (e *defaultEnvironment) ContainsProperty(key string) bool {
	_, ok := e.lookupRaw(key)
	return ok
}

func (e *defaultEnvironment) GetRequiredProperty(key string) (string, error) {
	v, ok := e.lookupRaw(key)
	if !ok {
		return "", fmt.Errorf("Required key %s not found. ", key)
	}
	return e.resolve(v, true, map[string]bool{key: true})
}

func (e *defaultEnvironment) ResolvePlaceholders(text string) string {
	ret, err := e.resolve(text, false, map[string]bool{})
	if err != nil {
		e.logger.Warnf("Resolve placeholders failed: %v\n", err)
		return text
	}
	return ret
}

func (e *defaultEnvironment) ResolveRequiredPlaceholders(text string) (string, error) {
	return e.resolve(text, true, map[string]bool{})
}

func (e *defaultEnvironment) GetActiveProfiles() []string {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return append([]string(nil), e.active...)
}

func (e *defaultEnvironment) GetDefaultProfiles() []string {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return append([]string(nil), e.defaults...)
}

func (e *defaultEnvironment) SetActiveProfiles(profiles ...string) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.active = e.active[:0]
	for _, p := range profiles {
		e.active = appendProfile(e.active, p)
	}
}

func (e *defaultEnvironment) AddActiveProfile(profile string) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.active = appendProfile(e.active, profile)
}

func (e *defaultEnvironment) SetDefaultProfiles(profiles ...string) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.defaults = e.defaults[:0]
	for _, p := range profiles {
		e.defaults = appendProfile(e.defaults, p)
	}
}

func (e *defaultEnvironment) AcceptsProfiles(profiles ...string) bool {
	for _, p := range profiles {
		p = strings.TrimSpace(p)
		if strings.HasPrefix(p, "!") {
			if !e.isProfileActive(p[1:]) {
				return true
			}
		} else if e.isProfileActive(p) {
			return true
		}
	}
	return false
}

func (e *defaultEnvironment) isProfileActive(profile string) bool {
	e.lock.RLock()
	defer e.lock.RUnlock()
	if len(e.active) > 0 {
		return contains(e.active, profile)
	}
	return contains(e.defaults, profile)
}

func (e *defaultEnvironment) Merge(parent ConfigurableEnvironment) {
	if parent == nil {
		return
	}
	e.lock.Lock()
	defer e.lock.Unlock()
	e.parents = append(e.parents, parent)
	for _, p := range parent.GetActiveProfiles() {
		e.active = appendProfile(e.active, p)
	}
	for _, p := range parent.GetDefaultProfiles() {
		e.defaults = appendProfile(e.defaults, p)
	}
}

func (e *defaultEnvironment) lookupRaw(key string) (string, bool) {
	if key == "" {
		return "", false
	}
	if e.lookupEnv != nil {
		if v, ok := e.lookupEnv(EnvKey(key)); ok {
			return v, true
		}
	}
	if e.props != nil {
		if v := e.props.Get(key, missingValue); v != missingValue {
			return v, true
		}
	}
	e.lock.RLock()
	parents := e.parents
	e.lock.RUnlock()
	for _, p := range parents {
		if l, ok := p.(*defaultEnvironment); ok {
			if v, ok := l.lookupRaw(key); ok {
				return v, true
			}
		} else if p.ContainsProperty(key) {
			return p.GetProperty(key, ""), true
		}
	}
	return "", false
}

// visiting记录正在解析的key，用于检测循环引用
func (e *defaultEnvironment) resolve(text string, required bool, visiting map[string]bool) (string, error) {
	buf := strings.Builder{}
	for {
		start := strings.Index(text, placeholderPrefix)
		if start < 0 {
			buf.WriteString(text)
			break
		}
		end := findPlaceholderEnd(text, start+len(placeholderPrefix))
		if end < 0 {
			buf.WriteString(text)
			break
		}
		buf.WriteString(text[:start])
		inner, err := e.resolve(text[start+len(placeholderPrefix):end], required, visiting)
		if err != nil {
			return "", err
		}
		key, def, hasDef := strings.Cut(inner, placeholderSeparator)
		if visiting[key] {
			return "", fmt.Errorf("Circular placeholder reference %s. ", key)
		}
		if v, ok := e.lookupRaw(key); ok {
			visiting[key] = true
			v, err = e.resolve(v, required, visiting)
			delete(visiting, key)
			if err != nil {
				return "", err
			}
			buf.WriteString(v)
		} else if hasDef {
			buf.WriteString(def)
		} else if required {
			return "", errors.New("Could not resolve placeholder " + key + ". ")
		} else {
			buf.WriteString(text[start : end+len(placeholderSuffix)])
		}
		text = text[end+len(placeholderSuffix):]
	}
	return buf.String(), nil
}

// 返回与start前的"${"匹配的"}"位置，支持嵌套
func findPlaceholderEnd(text string, start int) int {
	depth := 0
	for i := start; i < len(text); i++ {
		if strings.HasPrefix(text[i:], placeholderPrefix) {
			depth++
			i += len(placeholderPrefix) - 1
		} else if strings.HasPrefix(text[i:], placeholderSuffix) {
			if depth == 0 {
				return i
			}
			depth--
		}
	}
	return -1
}

// EnvKey 属性名对应的环境变量名：neve.application-name -> NEVE_APPLICATION_NAME
func EnvKey(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func splitProfiles(s string) []string {
	var ret []string
	for _, p := range strings.Split(s, ",") {
		ret = appendProfile(ret, p)
	}
	return ret
}

func appendProfile(profiles []string, p string) []string {
	p = strings.TrimSpace(p)
	if p == "" || contains(profiles, p) {
		return profiles
	}
	return append(profiles, p)
}

func contains(s []string, v string) bool {
	for _, i := range s {
		if i == v {
			return true
		}
	}
	return false
}
