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


package appcontext

import (
	"github.com/xfali/fig"
	"github.com/xfali/neve-ioc/processor"
)

// NewConfigurationApplicationContext 使用配置对象创建并启动ApplicationContext
// configurations为配置对象，其bean方法返回的对象会注册为bean，详情查看RegisterConfiguration
// 配置不为空时自动添加ValueProcessor，配置对象中带fig tag的字段在bean方法调用前完成填充
// 启动失败时context会被关闭
func NewConfigurationApplicationContext(config fig.Properties, configurations ...interface{}) (ApplicationContext, error) {
	return NewConfigurationApplicationContextWithOpts(config, nil, configurations...)
}

func NewConfigurationApplicationContextWithOpts(config fig.Properties, opts []Opt, configurations ...interface{}) (ApplicationContext, error) {
	ctx := NewDefaultApplicationContext(opts...)
	if err := ctx.Init(config); err != nil {
		_ = ctx.Close()
		return nil, err
	}
	if config != nil {
		if err := ctx.AddProcessor(processor.NewValueProcessor()); err != nil {
			_ = ctx.Close()
			return nil, err
		}
	}
	for _, cfg := range configurations {
		if _, err := ctx.RegisterConfiguration(cfg); err != nil {
			_ = ctx.Close()
			return nil, err
		}
	}
	if err := ctx.Start(); err != nil {
		_ = ctx.Close()
		return nil, err
	}
	return ctx, nil
}
