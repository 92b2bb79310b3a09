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
	"reflect"

	"github.com/xfali/neve-ioc/reflection"
)

// 注册的slice与map作为整体注入，不参与生命周期
type collectionDefinition struct {
	name string
	o    interface{}
	t    reflect.Type
	meta Metadata
}

func newSliceDefinition(o interface{}) (Definition, error) {
	t := reflect.TypeOf(o)
	return &collectionDefinition{
		name: reflection.GetSliceName(t),
		o:    o,
		t:    t,
		meta: newMetadata(),
	}, nil
}

func newMapDefinition(o interface{}) (Definition, error) {
	t := reflect.TypeOf(o)
	return &collectionDefinition{
		name: reflection.GetMapName(t),
		o:    o,
		t:    t,
		meta: newMetadata(),
	}, nil
}

func (d *collectionDefinition) Type() reflect.Type {
	return d.t
}

func (d *collectionDefinition) Name() string {
	return d.name
}

func (d *collectionDefinition) Value() reflect.Value {
	return reflect.ValueOf(d.o)
}

func (d *collectionDefinition) Interface() interface{} {
	return d.o
}

func (d *collectionDefinition) IsObject() bool {
	return false
}

func (d *collectionDefinition) AfterSet() error {
	return nil
}

func (d *collectionDefinition) Destroy() error {
	return nil
}

func (d *collectionDefinition) Classify(classifier Classifier) (bool, error) {
	return false, nil
}

func (d *collectionDefinition) Meta() *Metadata {
	return &d.meta
}
