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
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alecthomas/assert/v2"
	"github.com/go-sql-driver/mysql"
)

const jdbcMySQL = "jdbc:mysql://10.1.1.101/sc_whmc_prod?useUnicode=true&characterEncoding=utf-8&zeroDateTimeBehavior=convertToNull&allowMultiQueries=true"

func TestResolveDriver(t *testing.T) {
	cases := []struct {
		class  string
		url    string
		driver string
	}{
		{"com.mysql.jdbc.Driver", "", DriverMySQL},
		{"com.mysql.cj.jdbc.Driver", "", DriverMySQL},
		{"org.postgresql.Driver", "", DriverPostgres},
		{"org.sqlite.JDBC", "", DriverSQLite},
		{"", jdbcMySQL, DriverMySQL},
		{"", "jdbc:postgresql://localhost/db", DriverPostgres},
		{"", "postgres://localhost/db", DriverPostgres},
		{"", "jdbc:sqlite::memory:", DriverSQLite},
	}
	for _, c := range cases {
		v, err := ResolveDriver(c.class, c.url)
		assert.NoError(t, err)
		assert.Equal(t, c.driver, v)
	}

	_, err := ResolveDriver("oracle.jdbc.OracleDriver", "")
	assert.Error(t, err)
	_, err = ResolveDriver("", "unknown://x")
	assert.Error(t, err)
}

func TestTranslateURL(t *testing.T) {
	t.Run("jdbc mysql", func(t *testing.T) {
		dsn, err := TranslateURL(DriverMySQL, jdbcMySQL, "cxdev", "123456")
		assert.NoError(t, err)
		cfg, err := mysql.ParseDSN(dsn)
		assert.NoError(t, err)
		assert.Equal(t, "cxdev", cfg.User)
		assert.Equal(t, "123456", cfg.Passwd)
		assert.Equal(t, "tcp", cfg.Net)
		assert.Equal(t, "10.1.1.101:3306", cfg.Addr)
		assert.Equal(t, "sc_whmc_prod", cfg.DBName)
		assert.True(t, cfg.MultiStatements)
		assert.True(t, strings.Contains(dsn, "charset=utf8mb4"))
		assert.False(t, strings.Contains(dsn, "zeroDateTimeBehavior"))
		assert.False(t, strings.Contains(dsn, "useUnicode"))
	})

	t.Run("jdbc mysql with port", func(t *testing.T) {
		dsn, err := TranslateURL(DriverMySQL, "jdbc:mysql://db.local:3307/app", "", "")
		assert.NoError(t, err)
		cfg, err := mysql.ParseDSN(dsn)
		assert.NoError(t, err)
		assert.Equal(t, "db.local:3307", cfg.Addr)
		assert.Equal(t, "", cfg.User)
	})

	t.Run("native mysql", func(t *testing.T) {
		dsn, err := TranslateURL(DriverMySQL, "mysql://root:pw@tcp(127.0.0.1:3306)/app", "admin", "")
		assert.NoError(t, err)
		cfg, err := mysql.ParseDSN(dsn)
		assert.NoError(t, err)
		assert.Equal(t, "admin", cfg.User)
		assert.Equal(t, "pw", cfg.Passwd)
		assert.Equal(t, "app", cfg.DBName)
	})

	t.Run("postgres", func(t *testing.T) {
		dsn, err := TranslateURL(DriverPostgres, "jdbc:postgresql://localhost:5432/app?sslmode=disable", "u", "p")
		assert.NoError(t, err)
		assert.Equal(t, "postgres://u:p@localhost:5432/app?sslmode=disable", dsn)

		dsn, err = TranslateURL(DriverPostgres, "postgres://a:b@localhost/app", "c", "")
		assert.NoError(t, err)
		assert.Equal(t, "postgres://c:b@localhost/app", dsn)
	})

	t.Run("sqlite", func(t *testing.T) {
		dsn, err := TranslateURL(DriverSQLite, "jdbc:sqlite:/tmp/app.db", "", "")
		assert.NoError(t, err)
		assert.Equal(t, "/tmp/app.db", dsn)

		dsn, err = TranslateURL(DriverSQLite, "sqlite://file:app?mode=memory", "", "")
		assert.NoError(t, err)
		assert.Equal(t, "file:app?mode=memory", dsn)
	})

	t.Run("invalid", func(t *testing.T) {
		_, err := TranslateURL("oracle", "x", "", "")
		assert.Error(t, err)
		_, err = TranslateURL(DriverMySQL, "jdbc:mysql://h/db?connectTimeout=abc", "", "")
		assert.Error(t, err)
	})
}

func TestDriverManagerDataSource(t *testing.T) {
	t.Run("ping and close", func(t *testing.T) {
		db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
		assert.NoError(t, err)
		mock.ExpectPing()
		mock.ExpectClose()

		var openedDriver, openedDSN string
		ds := NewDriverManagerDataSource(OptSetOpener(func(driverName, dsn string) (*sql.DB, error) {
			openedDriver, openedDSN = driverName, dsn
			return db, nil
		}))
		ds.SetDriverClassName("com.mysql.jdbc.Driver")
		ds.SetUrl(jdbcMySQL)
		ds.SetUsername("cxdev")
		ds.SetPassword("123456")

		assert.Equal(t, DriverMySQL, ds.DriverName())
		assert.Equal(t, jdbcMySQL, ds.URL())
		assert.NoError(t, ds.Ping(context.Background()))
		assert.Equal(t, DriverMySQL, openedDriver)
		assert.True(t, strings.HasPrefix(openedDSN, "cxdev:123456@tcp(10.1.1.101:3306)/sc_whmc_prod"))

		first, err := ds.DB()
		assert.NoError(t, err)
		second, err := ds.DB()
		assert.NoError(t, err)
		assert.True(t, first == second)

		assert.NoError(t, ds.BeanDestroy())
		assert.NoError(t, ds.BeanDestroy())
		_, err = ds.DB()
		assert.Equal(t, ErrClosed, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("string masks password", func(t *testing.T) {
		ds := &DriverManagerDataSource{
			DriverClassName: "com.mysql.jdbc.Driver",
			Url:             "jdbc:mysql://10.1.1.101/db",
			Username:        "cxdev",
			Password:        "123456",
		}
		s := ds.String()
		assert.False(t, strings.Contains(s, "123456"))
		assert.True(t, strings.Contains(s, "username=cxdev"))
		assert.True(t, strings.Contains(s, "url=jdbc:mysql://10.1.1.101/db"))
	})

	t.Run("unknown driver", func(t *testing.T) {
		ds := &DriverManagerDataSource{DriverClassName: "oracle.jdbc.OracleDriver"}
		assert.Equal(t, "", ds.DriverName())
		_, err := ds.DB()
		assert.Error(t, err)
	})
}

func TestSQLiteDataSource(t *testing.T) {
	ds := &DriverManagerDataSource{
		DriverClassName: "org.sqlite.JDBC",
		Url:             "jdbc:sqlite:file:datasource_test?mode=memory&cache=shared",
	}
	defer ds.BeanDestroy()

	assert.NoError(t, ds.Ping(context.Background()))
	db, err := ds.DB()
	assert.NoError(t, err)
	db.MustExec("CREATE TABLE bean (id INTEGER PRIMARY KEY, name TEXT)")
	db.MustExec("INSERT INTO bean (id, name) VALUES (?, ?)", 1, "dataSource")

	var name string
	assert.NoError(t, db.Get(&name, "SELECT name FROM bean WHERE id = ?", 1))
	assert.Equal(t, "dataSource", name)
}
