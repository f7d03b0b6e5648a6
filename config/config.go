/*******************************************************************************
 * Copyright (c) 2025 Talavera-Lopez Lab
 *
 * Permission is hereby granted, free of charge, to any person obtaining
 * a copy of this software and associated documentation files (the
 * "Software"), to deal in the Software without restriction, including
 * without limitation the rights to use, copy, modify, merge, publish,
 * distribute, sublicense, and/or sell copies of the Software, and to
 * permit persons to whom the Software is furnished to do so, subject to
 * the following conditions:
 *
 * The above copyright notice and this permission notice shall be included
 * in all copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND,
 * EXPRESS OR IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF
 * MERCHANTABILITY, FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT.
 * IN NO EVENT SHALL THE AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY
 * CLAIM, DAMAGES OR OTHER LIABILITY, WHETHER IN AN ACTION OF CONTRACT,
 * TORT OR OTHERWISE, ARISING FROM, OUT OF OR IN CONNECTION WITH THE
 * SOFTWARE OR THE USE OR OTHER DEALINGS IN THE SOFTWARE.
 ******************************************************************************/

package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	EnvVarStarExe = "MAPPING_SCRIPTS_STAR_EXE"
	EnvVarThreads = "MAPPING_SCRIPTS_THREADS"

	DefaultStarExe = "STAR"
	DefaultThreads = 32
)

type Error string

func (e Error) Error() string { return string(e) }

const ErrInvalidThreads = Error("thread count must be a positive integer")

type Config struct {
	StarExe string
	Threads int
}

// FromEnv returns a new Config with properties populated from environment
// variables MAPPING_SCRIPTS_*, where * is amongst: STAR_EXE and THREADS.
// Unset variables fall back to defaults, so no variable is required.
//
// If these environment variables are defined in a file called .env (and not
// previously set in an environment variable), they will be automatically
// loaded.
//
// Optionally supply a directory to look for the .env file in.
func FromEnv(dir ...string) (*Config, error) {
	var parentDir string
	if len(dir) == 1 {
		parentDir = dir[0] + string(os.PathSeparator)
	}

	godotenv.Load(parentDir + ".env")

	exe := os.Getenv(EnvVarStarExe)
	if exe == "" {
		exe = DefaultStarExe
	}

	threads := DefaultThreads

	if threadsStr := os.Getenv(EnvVarThreads); threadsStr != "" {
		var err error

		threads, err = strconv.Atoi(threadsStr)
		if err != nil || threads < 1 {
			return nil, ErrInvalidThreads
		}
	}

	return &Config{
		StarExe: exe,
		Threads: threads,
	}, nil
}
