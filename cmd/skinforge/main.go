/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Command skinforge edits emulator controller skins: project management,
// scripted edits, proof sheets, remote sync and the desktop editor.
package main

import (
	"os"

	"skinforge/internal/crash"
)

func main() {
	defer crash.Recover(&crash.Context{})
	if err := execute(os.Args[1:], os.Stdout); err != nil {
		os.Exit(1)
	}
}
