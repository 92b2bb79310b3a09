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


package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alecthomas/errors"
	"github.com/alecthomas/kong"
	"github.com/xfali/fig"
	"github.com/xfali/neve-ioc"
	"github.com/xfali/neve-ioc/appcontext"
	"github.com/xfali/neve-ioc/datasource"
	"github.com/xfali/neve-ioc/metrics"
	"gopkg.in/yaml.v2"
)

var cli struct {
	Version  kong.VersionFlag `help:"Print the version and exit."`
	Config   string           `help:"Application configuration file." short:"f" default:"application.yaml" placeholder:"FILE"`
	Ping     bool             `help:"Ping the data source after the context is started."`
	Timeline bool             `help:"Print the startup timeline as YAML after the context is closed."`
}

// DataSourceConfiguration 数据源配置，dataSource方法的返回值注册为bean
type DataSourceConfiguration struct {
	DriverClassName string `fig:"datasource.driverClassName"`
	Url             string `fig:"datasource.url"`
	Username        string `fig:"datasource.username"`
	Password        string `fig:"datasource.password"`
}

func (c *DataSourceConfiguration) DataSource() datasource.DataSource {
	ds := datasource.NewDriverManagerDataSource()
	ds.SetDriverClassName(c.DriverClassName)
	ds.SetUrl(c.Url)
	ds.SetUsername(c.Username)
	ds.SetPassword(c.Password)
	return ds
}

type options struct {
	configPath string
	ping       bool
	timeline   bool
}

func main() {
	kctx := kong.Parse(&cli, kong.Vars{"version": appcontext.Version})
	err := run(os.Stdout, options{
		configPath: neve.GetResource(cli.Config),
		ping:       cli.Ping,
		timeline:   cli.Timeline,
	})
	kctx.FatalIfErrorf(err)
}

func run(w io.Writer, opts options) error {
	prop, err := fig.LoadYamlFile(opts.configPath)
	if err != nil {
		return errors.Errorf("load config file %s failed: %w", opts.configPath, err)
	}

	var ctxOpts []appcontext.Opt
	var startup *metrics.BufferingApplicationStartup
	if opts.timeline {
		startup = metrics.NewBufferingApplicationStartup(1024)
		ctxOpts = append(ctxOpts, appcontext.OptSetApplicationStartup(startup))
	}
	ctx, err := appcontext.NewConfigurationApplicationContextWithOpts(prop, ctxOpts, &DataSourceConfiguration{})
	if err != nil {
		return errors.Wrap(err, "start application context failed")
	}

	err = printDataSource(w, ctx, opts.ping)
	_ = ctx.Close()
	if err != nil {
		return err
	}

	if startup != nil {
		return writeTimeline(w, startup.GetBufferedTimeline())
	}
	return nil
}

func printDataSource(w io.Writer, ctx appcontext.ApplicationContext, ping bool) error {
	var ds datasource.DataSource
	if !ctx.GetBeanByType(&ds) {
		return errors.New("DataSource bean not found")
	}
	fmt.Fprintln(w, ds)

	if ping {
		pctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := ds.Ping(pctx); err != nil {
			return err
		}
		fmt.Fprintf(w, "ping %s: ok\n", ds.DriverName())
	}
	return nil
}

type timelineStep struct {
	ID       int64             `yaml:"id"`
	ParentID int64             `yaml:"parentId,omitempty"`
	Name     string            `yaml:"name"`
	Tags     map[string]string `yaml:"tags,omitempty"`
	Duration string            `yaml:"duration"`
}

type timelineDoc struct {
	StartTime time.Time      `yaml:"startTime"`
	Steps     []timelineStep `yaml:"steps"`
}

func writeTimeline(w io.Writer, timeline metrics.StartupTimeline) error {
	doc := timelineDoc{StartTime: timeline.StartTime}
	for _, e := range timeline.Events {
		step := timelineStep{
			ID:       e.Step.GetID(),
			Name:     e.Step.GetName(),
			Duration: e.Duration().String(),
		}
		if parent, ok := e.Step.GetParentID(); ok {
			step.ParentID = parent
		}
		e.Step.GetTags().ForEach(func(tag metrics.Tag) bool {
			if step.Tags == nil {
				step.Tags = map[string]string{}
			}
			step.Tags[tag.Key] = tag.Value
			return true
		})
		doc.Steps = append(doc.Steps, step)
	}
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.WithStack(err)
	}
	if _, err := w.Write(data); err != nil {
		return errors.WithStack(err)
	}
	return nil
}
