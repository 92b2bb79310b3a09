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


package processor

import (
	"errors"

	"github.com/xfali/fig"
	"github.com/xfali/neve-ioc/bean"
	"github.com/xfali/neve-ioc/order"
)

// ValueProcessor 使用配置填充bean中带有fig tag的字段
type ValueProcessor struct {
	conf      fig.Properties
	tagPxName string
	tagName   string
}

type Opt func(processor *ValueProcessor)

func OptSetValueTag(tagPxName, tagName string) Opt {
	return func(processor *ValueProcessor) {
		if tagName != "" {
			if tagPxName == "" {
				tagPxName = fig.TagPrefixName
			}
			processor.tagName = tagName
			processor.tagPxName = tagPxName
		}
	}
}

func NewValueProcessor(opts ...Opt) *ValueProcessor {
	ret := &ValueProcessor{}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (p *ValueProcessor) Init(conf fig.Properties, container bean.Container) error {
	if conf == nil {
		return errors.New("ValueProcessor config is nil. ")
	}
	p.conf = conf
	return nil
}

func (p *ValueProcessor) Classify(o interface{}) (bool, error) {
	if p.tagName == "" {
		return true, fig.Fill(p.conf, o)
	}
	return true, fig.FillExWithTagName(p.conf, o, false, p.tagPxName, p.tagName)
}

func (p *ValueProcessor) Process() error {
	return nil
}

func (p *ValueProcessor) BeanDestroy() error {
	return nil
}

// 配置值需要在其他处理器之前填充
func (p *ValueProcessor) GetOrder() int {
	return order.HighestPrecedence
}

func (p *ValueProcessor) BeanRole() bean.Role {
	return bean.RoleInfrastructure
}
