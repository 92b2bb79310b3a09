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
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/errors"
	"github.com/go-sql-driver/mysql"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "pgx"
	DriverSQLite   = "sqlite"

	jdbcPrefix       = "jdbc:"
	defaultMySQLPort = "3306"
)

var driverClasses = map[string]string{
	"com.mysql.jdbc.Driver":    DriverMySQL,
	"com.mysql.cj.jdbc.Driver": DriverMySQL,
	"mysql":                    DriverMySQL,
	"org.postgresql.Driver":    DriverPostgres,
	"postgres":                 DriverPostgres,
	"postgresql":               DriverPostgres,
	"pgx":                      DriverPostgres,
	"org.sqlite.JDBC":          DriverSQLite,
	"sqlite":                   DriverSQLite,
	"sqlite3":                  DriverSQLite,
}

// ResolveDriver 将驱动类名转换为database/sql的驱动名称，类名为空时根据地址推断
func ResolveDriver(driverClassName, rawURL string) (string, error) {
	if driverClassName != "" {
		if v, ok := driverClasses[driverClassName]; ok {
			return v, nil
		}
		return "", errors.Errorf("unsupported driver class: %s", driverClassName)
	}
	u := strings.TrimPrefix(rawURL, jdbcPrefix)
	switch {
	case strings.HasPrefix(u, "mysql:"):
		return DriverMySQL, nil
	case strings.HasPrefix(u, "postgresql:"), strings.HasPrefix(u, "postgres:"):
		return DriverPostgres, nil
	case strings.HasPrefix(u, "sqlite:"):
		return DriverSQLite, nil
	}
	return "", errors.Errorf("cannot infer driver from url: %s", rawURL)
}

// TranslateURL 将jdbc地址转换为驱动可用的dsn，非jdbc地址原样使用
// username和password不为空时覆盖地址中的用户信息
func TranslateURL(driver, rawURL, username, password string) (string, error) {
	switch driver {
	case DriverMySQL:
		return mysqlDSN(rawURL, username, password)
	case DriverPostgres:
		return postgresDSN(rawURL, username, password)
	case DriverSQLite:
		return sqliteDSN(rawURL), nil
	}
	return "", errors.Errorf("unsupported driver: %s", driver)
}

func mysqlDSN(rawURL, username, password string) (string, error) {
	var cfg *mysql.Config
	if s, ok := strings.CutPrefix(rawURL, jdbcPrefix); ok {
		u, err := url.Parse(s)
		if err != nil {
			return "", errors.Errorf("failed to parse mysql url: %w", err)
		}
		cfg = mysql.NewConfig()
		cfg.Net = "tcp"
		cfg.Addr = u.Host
		if u.Port() == "" {
			cfg.Addr = net.JoinHostPort(u.Hostname(), defaultMySQLPort)
		}
		cfg.DBName = strings.Trim(u.Path, "/")
		if u.User != nil {
			cfg.User = u.User.Username()
			cfg.Passwd, _ = u.User.Password()
		}
		if err := applyJdbcParams(cfg, u.Query()); err != nil {
			return "", err
		}
	} else {
		var err error
		cfg, err = mysql.ParseDSN(strings.TrimPrefix(rawURL, "mysql://"))
		if err != nil {
			return "", errors.Errorf("failed to parse DSN: %w", err)
		}
	}
	if username != "" {
		cfg.User = username
	}
	if password != "" {
		cfg.Passwd = password
	}
	return cfg.FormatDSN(), nil
}

// jdbc参数中只转换驱动能够识别的部分
func applyJdbcParams(cfg *mysql.Config, query url.Values) error {
	for k, vs := range query {
		if len(vs) == 0 {
			continue
		}
		v := vs[0]
		switch k {
		case "characterEncoding":
			if cfg.Params == nil {
				cfg.Params = map[string]string{}
			}
			cfg.Params["charset"] = mysqlCharset(v)
		case "allowMultiQueries":
			cfg.MultiStatements = strings.EqualFold(v, "true")
		case "connectTimeout":
			ms, err := strconv.Atoi(v)
			if err != nil {
				return errors.Errorf("invalid connectTimeout %q: %w", v, err)
			}
			cfg.Timeout = time.Duration(ms) * time.Millisecond
		case "serverTimezone":
			loc, err := time.LoadLocation(v)
			if err != nil {
				return errors.Errorf("invalid serverTimezone %q: %w", v, err)
			}
			cfg.Loc = loc
		}
	}
	return nil
}

func mysqlCharset(encoding string) string {
	switch strings.ToLower(encoding) {
	case "utf-8", "utf8":
		return "utf8mb4"
	}
	return strings.ToLower(encoding)
}

func postgresDSN(rawURL, username, password string) (string, error) {
	s := strings.TrimPrefix(rawURL, jdbcPrefix)
	u, err := url.Parse(s)
	if err != nil {
		return "", errors.Errorf("failed to parse postgres url: %w", err)
	}
	if u.Scheme == "postgresql" && strings.HasPrefix(rawURL, jdbcPrefix) {
		u.Scheme = "postgres"
	}
	var name, pass string
	var hasPass bool
	if u.User != nil {
		name = u.User.Username()
		pass, hasPass = u.User.Password()
	}
	if username != "" {
		name = username
	}
	if password != "" {
		pass, hasPass = password, true
	}
	if hasPass {
		u.User = url.UserPassword(name, pass)
	} else if name != "" {
		u.User = url.User(name)
	}
	return u.String(), nil
}

func sqliteDSN(rawURL string) string {
	s := strings.TrimPrefix(rawURL, jdbcPrefix)
	s = strings.TrimPrefix(s, "sqlite://")
	return strings.TrimPrefix(s, "sqlite:")
}
