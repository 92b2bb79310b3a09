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


package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultNamespace = "neve"
	stepLabel        = "step"
)

// PrometheusApplicationStartup 将步骤耗时记录到prometheus，步骤本身交由delegate处理
type PrometheusApplicationStartup struct {
	delegate ApplicationStartup
	registry *prometheus.Registry

	stepDuration *prometheus.HistogramVec
	stepTotal    *prometheus.CounterVec
}

type PrometheusOpt func(*prometheusOpts)

type prometheusOpts struct {
	namespace string
	registry  *prometheus.Registry
}

// 配置指标命名空间，默认为neve
func OptPrometheusSetNamespace(namespace string) PrometheusOpt {
	return func(o *prometheusOpts) {
		o.namespace = namespace
	}
}

// 配置注册指标的registry，默认创建新的registry
func OptPrometheusSetRegistry(registry *prometheus.Registry) PrometheusOpt {
	return func(o *prometheusOpts) {
		o.registry = registry
	}
}

func NewPrometheusApplicationStartup(delegate ApplicationStartup, opts ...PrometheusOpt) *PrometheusApplicationStartup {
	o := prometheusOpts{
		namespace: defaultNamespace,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = prometheus.NewRegistry()
	}
	if delegate == nil {
		delegate = NewDefaultApplicationStartup()
	}

	ret := &PrometheusApplicationStartup{
		delegate: delegate,
		registry: o.registry,
	}
	ret.stepDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: o.namespace,
			Subsystem: "startup",
			Name:      "step_duration_seconds",
			Help:      "Time taken by an application startup step",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100us to ~26s
		},
		[]string{stepLabel},
	)
	ret.stepTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: o.namespace,
			Subsystem: "startup",
			Name:      "steps_total",
			Help:      "Total number of ended application startup steps",
		},
		[]string{stepLabel},
	)
	ret.registry.MustRegister(ret.stepDuration, ret.stepTotal)
	return ret
}

// Registry 返回注册了启动指标的registry
func (s *PrometheusApplicationStartup) Registry() *prometheus.Registry {
	return s.registry
}

// Delegate 返回实际记录步骤的ApplicationStartup
func (s *PrometheusApplicationStartup) Delegate() ApplicationStartup {
	return s.delegate
}

func (s *PrometheusApplicationStartup) Start(name string) StartupStep {
	return &observedStep{
		StartupStep: s.delegate.Start(name),
		start:       time.Now(),
		owner:       s,
	}
}

func (s *PrometheusApplicationStartup) observe(name string, d time.Duration) {
	s.stepDuration.WithLabelValues(name).Observe(d.Seconds())
	s.stepTotal.WithLabelValues(name).Inc()
}

type observedStep struct {
	StartupStep
	start time.Time
	owner *PrometheusApplicationStartup
	once  sync.Once
}

func (s *observedStep) Tag(key, value string) StartupStep {
	s.StartupStep.Tag(key, value)
	return s
}

func (s *observedStep) TagFunc(key string, f func() string) StartupStep {
	s.StartupStep.TagFunc(key, f)
	return s
}

func (s *observedStep) End() {
	s.once.Do(func() {
		s.StartupStep.End()
		s.owner.observe(s.GetName(), time.Since(s.start))
	})
}
