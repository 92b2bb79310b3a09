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


package neve

import (
	"os"
	"path/filepath"
)

const (
	envResourceDir = "ENV_RESOURCE_DIR"
)

var ResourceRoot string

// GetResource 获得资源路径，绝对路径原样返回
// 相对路径的根目录优先使用环境变量ENV_RESOURCE_DIR，其次为ResourceRoot
func GetResource(relFilePath string) string {
	if filepath.IsAbs(relFilePath) {
		return relFilePath
	}
	dir := os.Getenv(envResourceDir)
	if dir == "" {
		dir = ResourceRoot
	}
	return filepath.Join(dir, relFilePath)
}

func SetResourceRoot(dir string) {
	ResourceRoot = dir
}
