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


package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/alecthomas/errors"
	"github.com/jmoiron/sqlx"
	"github.com/xfali/xlog"
)

var ErrClosed = errors.New("DataSource closed. ")

// DataSource 数据库连接的工厂
type DataSource interface {
	// 获得数据库连接，第一次调用时打开
	DB() (*sqlx.DB, error)

	// 检查数据库连接是否可用
	Ping(ctx context.Context) error

	// database/sql注册的驱动名称
	DriverName() string

	// 配置的连接地址
	URL() string

	String() string

	// 关闭连接
	BeanDestroy() error
}

// Opener 打开数据库，默认为sql.Open
type Opener func(driverName, dsn string) (*sql.DB, error)

type Opt func(*DriverManagerDataSource)

// DriverManagerDataSource 使用驱动名称和连接地址创建连接
// 支持jdbc形式的地址，详情查看TranslateURL
type DriverManagerDataSource struct {
	DriverClassName string `fig:"datasource.driverClassName"`
	Url             string `fig:"datasource.url"`
	Username        string `fig:"datasource.username"`
	Password        string `fig:"datasource.password"`

	logger xlog.Logger
	opener Opener

	lock   sync.Mutex
	db     *sqlx.DB
	closed bool
}

var _ DataSource = (*DriverManagerDataSource)(nil)

func NewDriverManagerDataSource(opts ...Opt) *DriverManagerDataSource {
	ret := &DriverManagerDataSource{}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

func OptSetLogger(v xlog.Logger) Opt {
	return func(ds *DriverManagerDataSource) {
		ds.logger = v
	}
}

func OptSetOpener(v Opener) Opt {
	return func(ds *DriverManagerDataSource) {
		ds.opener = v
	}
}

func (ds *DriverManagerDataSource) SetDriverClassName(v string) {
	ds.DriverClassName = v
}

func (ds *DriverManagerDataSource) SetUrl(v string) {
	ds.Url = v
}

func (ds *DriverManagerDataSource) SetUsername(v string) {
	ds.Username = v
}

func (ds *DriverManagerDataSource) SetPassword(v string) {
	ds.Password = v
}

func (ds *DriverManagerDataSource) DriverName() string {
	name, err := ResolveDriver(ds.DriverClassName, ds.Url)
	if err != nil {
		return ""
	}
	return name
}

func (ds *DriverManagerDataSource) URL() string {
	return ds.Url
}

func (ds *DriverManagerDataSource) DB() (*sqlx.DB, error) {
	ds.lock.Lock()
	defer ds.lock.Unlock()

	if ds.closed {
		return nil, ErrClosed
	}
	if ds.db != nil {
		return ds.db, nil
	}

	driver, err := ResolveDriver(ds.DriverClassName, ds.Url)
	if err != nil {
		return nil, err
	}
	dsn, err := TranslateURL(driver, ds.Url, ds.Username, ds.Password)
	if err != nil {
		return nil, err
	}
	opener := ds.opener
	if opener == nil {
		opener = sql.Open
	}
	db, err := opener(driver, dsn)
	if err != nil {
		return nil, errors.Errorf("failed to open %s connection: %w", driver, err)
	}
	ds.db = sqlx.NewDb(db, driver)
	ds.getLogger().Infof("DataSource opened, driver: %s, url: %s\n", driver, ds.Url)
	return ds.db, nil
}

func (ds *DriverManagerDataSource) Ping(ctx context.Context) error {
	db, err := ds.DB()
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return errors.Wrap(err, "ping datasource failed")
	}
	return nil
}

func (ds *DriverManagerDataSource) BeanDestroy() error {
	ds.lock.Lock()
	defer ds.lock.Unlock()

	if ds.closed {
		return nil
	}
	ds.closed = true
	if ds.db == nil {
		return nil
	}
	err := ds.db.Close()
	ds.db = nil
	if err != nil {
		return errors.WithStack(err)
	}
	ds.getLogger().Infoln("DataSource closed.")
	return nil
}

func (ds *DriverManagerDataSource) String() string {
	return fmt.Sprintf("DriverManagerDataSource{driverClassName=%s, url=%s, username=%s, password=%s}",
		ds.DriverClassName, ds.Url, ds.Username, mask(ds.Password))
}

func (ds *DriverManagerDataSource) getLogger() xlog.Logger {
	if ds.logger == nil {
		ds.logger = xlog.GetLogger()
	}
	return ds.logger
}

func mask(password string) string {
	if password == "" {
		return ""
	}
	return "******"
}
