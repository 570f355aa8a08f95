/*
 *
 * Copyright 2020 gRPC authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

// Package grpclog is the core's internal logging surface. It follows the
// teacher's grpclog.Component idiom: every package that logs asks for a
// named component logger rather than calling a global logger directly, so
// log lines can be attributed to the layer that produced them (call engine,
// server dispatch, an interceptor).
package grpclog

import (
	"fmt"

	"github.com/golang/glog"
)

// Logger is a named component logger.
type Logger struct {
	component string
}

// Component builds a component-scoped logger, e.g. grpclog.Component("server").
func Component(component string) *Logger {
	return &Logger{component: component}
}

func (l *Logger) prefix(format string) string {
	return "[" + l.component + "] " + format
}

// Infof logs at info level.
func (l *Logger) Infof(format string, args ...any) {
	glog.InfoDepth(1, fmt.Sprintf(l.prefix(format), args...))
}

// Warningf logs at warning level.
func (l *Logger) Warningf(format string, args ...any) {
	glog.WarningDepth(1, fmt.Sprintf(l.prefix(format), args...))
}

// Errorf logs at error level.
func (l *Logger) Errorf(format string, args ...any) {
	glog.ErrorDepth(1, fmt.Sprintf(l.prefix(format), args...))
}

// Fatalf logs at fatal level and terminates the process, matching the
// teacher's grpclog.Fatalf contract for unrecoverable startup errors.
func (l *Logger) Fatalf(format string, args ...any) {
	glog.FatalDepth(1, fmt.Sprintf(l.prefix(format), args...))
}
