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
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"
)

func GetTypeName(t reflect.Type) string {
	buf := strings.Builder{}
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
		buf.WriteString("*")
	}

	switch t.Kind() {
	case reflect.Slice:
		buf.WriteString(GetSliceName(t))
	case reflect.Map:
		buf.WriteString(GetMapName(t))
	default:
		buf.WriteString(qualifiedName(t))
	}
	return buf.String()
}

// GetObjectName 获得对象的注册名称，函数返回空字符串
func GetObjectName(o interface{}) string {
	if o == nil {
		return ""
	}
	t := reflect.TypeOf(o)
	if t.Kind() == reflect.Func {
		return ""
	}
	return GetTypeName(t)
}

func GetSliceName(t reflect.Type) string {
	elemType := t.Elem()
	prefix := "[]"
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
		prefix = "[]*"
	}
	if elemType.PkgPath() != "" {
		return prefix + qualifiedName(elemType)
	}
	return t.String()
}

func GetMapName(t reflect.Type) string {
	keyType := t.Key()
	elemType := t.Elem()

	key := keyType.String()
	if keyType.PkgPath() != "" {
		key = qualifiedName(keyType)
	}

	prefix := ""
	if elemType.Kind() == reflect.Ptr {
		elemType = elemType.Elem()
		prefix = "*"
	}
	if elemType.PkgPath() != "" {
		return fmt.Sprintf("map[%s]%s%s", key, prefix, qualifiedName(elemType))
	}
	return t.String()
}

func qualifiedName(t reflect.Type) string {
	name := t.PkgPath()
	if name != "" {
		return strings.Replace(name, "/", ".", -1) + "." + t.Name()
	}
	return t.Name()
}

// LowerFirst 首字母小写，用于由方法名推导bean名称
func LowerFirst(name string) string {
	if name == "" {
		return name
	}
	r, size := utf8.DecodeRuneInString(name)
	return string(unicode.ToLower(r)) + name[size:]
}

func SmartCopySlice(dest, src reflect.Value) error {
	destType := dest.Type()
	destElemType := destType.Elem()
	srcType := src.Type()
	if srcType.Kind() != reflect.Slice {
		return errors.New("Src Type is not a slice. " + srcType.String())
	}
	srcElemType := srcType.Elem()

	if srcElemType.AssignableTo(destElemType) && srcType.AssignableTo(destType) {
		dest.Set(src)
		return nil
	}
	destTmp := reflect.MakeSlice(destType, 0, src.Len())
	for i := 0; i < src.Len(); i++ {
		value := src.Index(i)
		if value.Kind() == reflect.Interface {
			if value.IsNil() {
				continue
			}
			value = value.Elem()
		}
		if value.Type().AssignableTo(destElemType) {
			destTmp = reflect.Append(destTmp, value)
		}
	}
	dest.Set(destTmp)
	return nil
}

func SmartCopyMap(dest, src reflect.Value) error {
	destType := dest.Type()
	destElemType := destType.Elem()
	destKeyType := destType.Key()
	srcType := src.Type()
	if srcType.Kind() != reflect.Map {
		return errors.New("Src Type is not a Map. " + srcType.String())
	}
	srcKeyType := srcType.Key()

	if destKeyType != srcKeyType {
		return fmt.Errorf("expect key type: %s, but get %s. ", destKeyType.String(), srcKeyType.String())
	}
	if srcType.AssignableTo(destType) {
		dest.Set(src)
		return nil
	}
	destTmp := reflect.MakeMapWithSize(destType, src.Len())
	iter := src.MapRange()
	for iter.Next() {
		value := iter.Value()
		if value.Kind() == reflect.Interface {
			if value.IsNil() {
				continue
			}
			value = value.Elem()
		}
		if value.Type().AssignableTo(destElemType) {
			destTmp.SetMapIndex(iter.Key(), value)
		}
	}
	dest.Set(destTmp)
	return nil
}
