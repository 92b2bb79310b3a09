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
	"fmt"
	"io"
	"os"

	"github.com/xfali/xlog"
)

const (
	Version = "v0.1.0"

	neveBanner = `
  .\'/.   .-----.-----.--.--.-----.
->- x -<- |     |  -__|  |  |  -__|
  '/.\'   |__|__|_____|\___/|_____|
=================  (%s)
`
)

// bannerPath为空或读取失败时使用默认banner
func printBanner(w io.Writer, bannerPath string) {
	output := []byte(fmt.Sprintf(neveBanner, Version))
	if bannerPath != "" {
		if data, err := os.ReadFile(bannerPath); err == nil {
			output = data
		}
	}
	_, _ = w.Write(output)
}

func selectWriter() io.Writer {
	for i := xlog.INFO; i <= xlog.DEBUG; i++ {
		w := xlog.GetOutputBySeverity(i)
		if w != nil {
			return w
		}
	}
	return os.Stdout
}
