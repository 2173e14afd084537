// This file is part of Bellum.
//
// Bellum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Bellum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Bellum.  If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Entry represents a single line/entry in the log
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	repeated  int
}

func (e *Entry) String() string {
	s := strings.Builder{}
	s.WriteString(fmt.Sprintf("%s: %s", e.Tag, e.Detail))
	if e.repeated > 0 {
		s.WriteString(fmt.Sprintf(" (repeat x%d)", e.repeated+1))
	}
	s.WriteString("\n")
	return s.String()
}

// Logger is a capped list of log entries. Consecutive entries with the same
// tag and detail are combined into one entry with a repeat count.
//
// There is no central logger. Each memory context is given its own Logger by
// the embedder so that independent contexts do not share log state. A nil
// *Logger is valid and silently discards every entry.
//
// Like the rest of the memory subsystem, a Logger assumes a single logical
// caller and does no locking.
type Logger struct {
	maxEntries int
	entries    []Entry

	echo        io.Writer
	echoRecent  bool
	recentStart int
}

// NewLogger is the preferred method of initialisation for the Logger type.
// The maxEntries value is the number of entries retained before the oldest
// are dropped.
func NewLogger(maxEntries int) *Logger {
	if maxEntries <= 0 {
		maxEntries = 1
	}
	return &Logger{
		maxEntries: maxEntries,
		entries:    make([]Entry, 0, maxEntries),
	}
}

// Log adds an entry to the log. The detail argument is formatted according
// to its type: an error uses its Error() string, a fmt.Stringer uses String()
// and everything else uses the %v verb.
func (l *Logger) Log(perm Permission, tag string, detail any) {
	if l == nil || !allowed(perm) {
		return
	}

	switch d := detail.(type) {
	case string:
		l.log(tag, d)
	case error:
		l.log(tag, d.Error())
	case fmt.Stringer:
		l.log(tag, d.String())
	default:
		l.log(tag, fmt.Sprintf("%v", d))
	}
}

// Logf adds a formatted entry to the log.
func (l *Logger) Logf(perm Permission, tag string, detail string, args ...any) {
	if l == nil || !allowed(perm) {
		return
	}
	l.log(tag, fmt.Sprintf(detail, args...))
}

func (l *Logger) log(tag, detail string) {
	// remove all newline characters from tag and detail string
	tag = strings.ReplaceAll(tag, "\n", "")
	detail = strings.ReplaceAll(detail, "\n", "")

	var e *Entry
	if len(l.entries) > 0 {
		e = &l.entries[len(l.entries)-1]
	}

	if e == nil || detail != e.Detail || tag != e.Tag {
		l.entries = append(l.entries, Entry{Timestamp: time.Now(), Tag: tag, Detail: detail})
		e = &l.entries[len(l.entries)-1]
	} else {
		e.repeated++
		e.Timestamp = time.Now()
	}

	// maintain maximum length
	if len(l.entries) > l.maxEntries {
		drop := len(l.entries) - l.maxEntries
		l.entries = append(l.entries[:0], l.entries[drop:]...)
		l.recentStart -= drop
		if l.recentStart < 0 {
			l.recentStart = 0
		}
		e = &l.entries[len(l.entries)-1]
	}

	if l.echo != nil {
		if l.echoRecent {
			l.writeRecent(l.echo)
		} else {
			io.WriteString(l.echo, e.String())
		}
	}
}

// Clear all entries from the log.
func (l *Logger) Clear() {
	if l == nil {
		return
	}
	l.entries = l.entries[:0]
	l.recentStart = 0
}

// Len returns the number of entries in the log. Repeated entries count once.
func (l *Logger) Len() int {
	if l == nil {
		return 0
	}
	return len(l.entries)
}

// Write contents of the log to io.Writer.
func (l *Logger) Write(output io.Writer) bool {
	if l == nil || len(l.entries) == 0 {
		return false
	}
	for i := range l.entries {
		io.WriteString(output, l.entries[i].String())
	}
	return true
}

// WriteRecent writes only the entries added since the last call to
// WriteRecent.
func (l *Logger) WriteRecent(output io.Writer) {
	if l == nil {
		return
	}
	l.writeRecent(output)
}

func (l *Logger) writeRecent(output io.Writer) {
	for i := l.recentStart; i < len(l.entries); i++ {
		io.WriteString(output, l.entries[i].String())
	}
	l.recentStart = len(l.entries)
}

// Tail writes the last N entries to io.Writer.
func (l *Logger) Tail(output io.Writer, number int) {
	if l == nil {
		return
	}

	// cap number to the number of entries
	if number > len(l.entries) {
		number = len(l.entries)
	}
	if number < 0 {
		number = 0
	}

	for i := len(l.entries) - number; i < len(l.entries); i++ {
		io.WriteString(output, l.entries[i].String())
	}
}

// SetEcho prints new log entries to io.Writer as they are added. A nil writer
// turns echoing off. If writeRecent is true then any entries not yet seen by
// WriteRecent() are also written on every new entry.
func (l *Logger) SetEcho(output io.Writer, writeRecent bool) {
	if l == nil {
		return
	}
	l.echo = output
	l.echoRecent = writeRecent
}

// BorrowLog gives the provided function access to the list of log entries.
// The slice must not be retained after the function returns.
func (l *Logger) BorrowLog(f func([]Entry)) {
	if l == nil {
		f(nil)
		return
	}
	f(l.entries)
}
