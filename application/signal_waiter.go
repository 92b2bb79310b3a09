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


package application

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/xfali/xlog"
)

var errSignalBusy = errors.New("Signal channel is full. ")

type SignalWaiter interface {
	// Wait 等待信号，直到获得退出信号或者ctx结束
	// 被Stop结束时返回nil
	Wait(ctx context.Context) error

	// Notify 主动发送信号
	Notify(signal os.Signal) error

	// Stop 强制结束等待
	Stop()
}

// Closer 退出时的资源回收方法
type Closer func() error

type SignalWaiterOpt func(*defaultWaiter)

type defaultWaiter struct {
	logger        xlog.Logger
	signals       []os.Signal
	exitSignals   []os.Signal
	ignoreSignals []os.Signal
	ch            chan os.Signal
	stopped       chan struct{}

	notifyOnce sync.Once
	stopOnce   sync.Once
}

func NewSignalWaiter(opts ...SignalWaiterOpt) *defaultWaiter {
	ret := &defaultWaiter{
		logger:        xlog.GetLogger(),
		ch:            make(chan os.Signal, 1),
		stopped:       make(chan struct{}),
		signals:       []os.Signal{syscall.SIGHUP, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT},
		exitSignals:   []os.Signal{syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGINT},
		ignoreSignals: []os.Signal{syscall.SIGHUP},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func (h *defaultWaiter) Wait(ctx context.Context) error {
	h.notifyOnce.Do(func() {
		if len(h.signals) > 0 {
			signal.Notify(h.ch, h.signals...)
		}
	})
	for {
		select {
		case <-ctx.Done():
			h.logger.Infof("Context done, error: %v, closing...\n", ctx.Err())
			return ctx.Err()
		case <-h.stopped:
			return nil
		case si := <-h.ch:
			if contains(h.ignoreSignals, si) {
				h.logger.Infof("Ignore signal %s\n", si.String())
				continue
			}
			if contains(h.exitSignals, si) {
				h.logger.Infof("Got a signal %s, closing...\n", si.String())
			} else {
				h.logger.Warnf("Got an unexpected signal %s, closing...\n", si.String())
			}
			return nil
		}
	}
}

func (h *defaultWaiter) Notify(signal os.Signal) error {
	select {
	case h.ch <- signal:
		return nil
	default:
		return errSignalBusy
	}
}

func (h *defaultWaiter) Stop() {
	h.stopOnce.Do(func() {
		close(h.stopped)
	})
}

// WaitAndClose 等待退出，然后按逆序调用closers
func WaitAndClose(ctx context.Context, waiter SignalWaiter, closers ...Closer) error {
	err := waiter.Wait(ctx)
	for i := len(closers) - 1; i >= 0; i-- {
		if cerr := closers[i](); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

func contains(signals []os.Signal, si os.Signal) bool {
	for _, v := range signals {
		if v == si {
			return true
		}
	}
	return false
}

type signalWaiterOpts struct {
}

var SignalWaiterOpts signalWaiterOpts

func (o signalWaiterOpts) SetLogger(logger xlog.Logger) SignalWaiterOpt {
	return func(wait *defaultWaiter) {
		wait.logger = logger
	}
}

// SetNotifySignals 替换监听的系统信号，为空时不监听系统信号，只能通过Notify触发
func (o signalWaiterOpts) SetNotifySignals(signals ...os.Signal) SignalWaiterOpt {
	return func(wait *defaultWaiter) {
		wait.signals = signals
	}
}

func (o signalWaiterOpts) AddExitSignals(signals ...os.Signal) SignalWaiterOpt {
	return func(wait *defaultWaiter) {
		wait.exitSignals = append(wait.exitSignals, signals...)
	}
}

func (o signalWaiterOpts) AddIgnoreSignals(signals ...os.Signal) SignalWaiterOpt {
	return func(wait *defaultWaiter) {
		wait.ignoreSignals = append(wait.ignoreSignals, signals...)
	}
}
