/*
 * Copyright 2025 SREDiag Authors
 * Copyright 2023 CloudWeGo Authors
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
 */

package link

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/valyala/bytebufferpool"

	"github.com/srediag/mumble-link/pkg/layout"
	"github.com/srediag/mumble-link/pkg/shm"
)

type logger struct {
	name      string
	out       io.Writer
	callDepth int
}

var (
	internalLogger = &logger{"", os.Stdout, 3}
	level          int

	magenta = string([]byte{27, 91, 57, 53, 109}) // Trace
	green   = string([]byte{27, 91, 57, 50, 109}) // Debug
	blue    = string([]byte{27, 91, 57, 52, 109}) // Info
	yellow  = string([]byte{27, 91, 57, 51, 109}) // Warn
	red     = string([]byte{27, 91, 57, 49, 109}) // Error
	reset   = string([]byte{27, 91, 48, 109})

	colors = []string{
		magenta,
		green,
		blue,
		yellow,
		red,
	}

	levelName = []string{
		"Trace",
		"Debug",
		"Info",
		"Warn",
		"Error",
	}
)

// Log levels accepted by SetLogLevel and MUMBLELINK_LOG_LEVEL.
const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelNoPrint
)

func init() {
	level = LevelWarn
	if v := os.Getenv("MUMBLELINK_LOG_LEVEL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= LevelTrace && n <= LevelNoPrint {
			level = n
		}
	}
}

// SetLogLevel changes the level of every link logger. The default level is
// Warn; the process env `MUMBLELINK_LOG_LEVEL` also sets it.
func SetLogLevel(l int) {
	if l >= LevelTrace && l <= LevelNoPrint {
		level = l
	}
}

func newLogger(name string, out io.Writer) *logger {
	if out == nil {
		out = os.Stdout
	}
	return &logger{
		name:      name,
		out:       out,
		callDepth: 3,
	}
}

func (l *logger) logf(lv int, format string, a ...interface{}) {
	if level > lv {
		return
	}
	if _, err := fmt.Fprintf(l.out, l.prefix(lv)+format+reset+"\n", a...); err != nil {
		fmt.Fprintf(os.Stderr, "link logger failed: %v\n", err)
	}
}

func (l *logger) errorf(format string, a ...interface{}) {
	l.logf(LevelError, format, a...)
}

func (l *logger) warnf(format string, a ...interface{}) {
	l.logf(LevelWarn, format, a...)
}

func (l *logger) infof(format string, a ...interface{}) {
	l.logf(LevelInfo, format, a...)
}

func (l *logger) debugf(format string, a ...interface{}) {
	l.logf(LevelDebug, format, a...)
}

func (l *logger) tracef(format string, a ...interface{}) {
	l.logf(LevelTrace, format, a...)
}

func (l *logger) prefix(lv int) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	_, _ = buf.WriteString(colors[lv])
	_, _ = buf.WriteString(levelName[lv])
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(time.Now().Format("2006-01-02 15:04:05.999999"))
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.location())
	_ = buf.WriteByte(' ')
	if l.name != "" {
		_, _ = buf.WriteString(l.name)
		_ = buf.WriteByte(' ')
	}
	return buf.String()
}

func (l *logger) location() string {
	// logf adds one frame on top of the level helpers
	_, file, line, ok := runtime.Caller(l.callDepth + 1)
	if !ok {
		file = "???"
		line = 0
	}
	file = filepath.Base(file)
	return file + ":" + strconv.Itoa(line)
}

// DebugSegmentDetail prints the contents of the system segment called name
// without taking part in the protocol. An empty name means the default.
func DebugSegmentDetail(name string) {
	seg, err := shm.System().Open(context.Background(), shm.OpenOptions{Name: name})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer seg.Close()
	var m layout.LinkedMemory
	seg.Read(&m)
	writeSegmentDetail(os.Stdout, seg.Name(), &m)
}

func writeSegmentDetail(w io.Writer, name string, m *layout.LinkedMemory) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)
	fmt.Fprintf(buf, "segment:%s version:%d tick:%d\n", name, m.Version, m.Tick)
	fmt.Fprintf(buf, "name:%q description:%q identity:%q\n",
		m.NameString(), m.DescriptionString(), m.IdentityString())
	fmt.Fprintf(buf, "avatar:%v camera:%v\n", m.Avatar, m.Camera)
	fmt.Fprintf(buf, "context_len:%d context:%x\n", m.ContextLen, m.ContextBytes())
	_, _ = buf.WriteTo(w)
}
