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
	"strconv"
	"strings"

	"github.com/xfali/neve-ioc/env"
	"github.com/xfali/neve-ioc/metrics"
	"github.com/xfali/xlog"
)

const (
	StartupModeNone       = "none"
	StartupModeBuffering  = "buffering"
	StartupModePrometheus = "prometheus"

	defaultStartupCapacity = 1024
)

const (
	stepRefresh        = "neve.context.refresh"
	stepAware          = "neve.context.aware"
	stepInject         = "neve.context.beans.inject"
	stepInstantiate    = "neve.context.beans.instantiate"
	stepClassify       = "neve.context.beans.classify"
	stepFunctionInject = "neve.context.beans.function-inject"
	stepAfterSet       = "neve.context.beans.after-set"
	stepProcess        = "neve.context.processors.process"
	stepClose          = "neve.context.close"
)

// NewApplicationStartup 根据配置创建启动步骤记录器：
// neve.startup.mode: none（默认）、buffering、prometheus
// neve.startup.capacity: 记录步骤的最大数量
// neve.startup.filter: 只记录名称以该前缀开头的步骤
func NewApplicationStartup(e env.Environment, logger xlog.Logger) metrics.ApplicationStartup {
	mode := strings.ToLower(strings.TrimSpace(e.GetProperty("neve.startup.mode", StartupModeNone)))
	switch mode {
	case StartupModeBuffering:
		return newBufferingStartup(e, logger)
	case StartupModePrometheus:
		return metrics.NewPrometheusApplicationStartup(newBufferingStartup(e, logger))
	case StartupModeNone, "":
	default:
		logger.Warnf("Unknown startup mode: %s, use %s\n", mode, StartupModeNone)
	}
	return metrics.NewDefaultApplicationStartup()
}

func newBufferingStartup(e env.Environment, logger xlog.Logger) *metrics.BufferingApplicationStartup {
	capacity := defaultStartupCapacity
	if v := e.GetProperty("neve.startup.capacity", ""); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil || c <= 0 {
			logger.Warnf("Invalid startup capacity: %s, use %d\n", v, defaultStartupCapacity)
		} else {
			capacity = c
		}
	}
	ret := metrics.NewBufferingApplicationStartup(capacity, metrics.OptBufferingSetLogger(logger))
	if prefix := e.GetProperty("neve.startup.filter", ""); prefix != "" {
		ret.AddFilter(metrics.NamePrefixFilter(prefix))
	}
	return ret
}
