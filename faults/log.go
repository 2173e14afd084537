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

package faults

import (
	"fmt"
	"io"
)

// Entry is a single entry in the fault log
type Entry struct {
	*Fault

	// number of times this specific fault has been seen
	Count int
}

func (e Entry) String() string {
	if e.Count > 1 {
		return fmt.Sprintf("%s (x%d)", e.Fault.Error(), e.Count)
	}
	return e.Fault.Error()
}

// Log records faults in the order they were first seen. A fault with the same
// category, event and address as an existing entry increases the count of
// that entry rather than adding a new one.
type Log struct {
	entries map[string]*Entry

	// all the faults in order of the first time they appear. the Count field
	// of the Entry can be used to see if that entry was seen more than once
	// *after* the first appearance
	Entries []*Entry

	// maximum number of distinct entries. once reached the oldest entry is
	// forgotten when a new one is added
	max int
}

// NewLog is the preferred method of initialisation for the Log type. A max
// value of zero or less means the log is unbounded.
func NewLog(max int) Log {
	return Log{
		entries: make(map[string]*Entry),
		max:     max,
	}
}

func key(f *Fault) string {
	return fmt.Sprintf("%s%s%08x", f.Category, f.Event, f.Address)
}

// Clear all entries from the fault log.
func (flt *Log) Clear() {
	clear(flt.entries)
	flt.Entries = flt.Entries[:0]
}

// Record adds the fault to the log and returns it. Returning the fault means
// that a fault can be recorded and returned to the caller in one step.
func (flt *Log) Record(f *Fault) *Fault {
	if flt.entries == nil {
		flt.entries = make(map[string]*Entry)
	}

	k := key(f)

	e, found := flt.entries[k]
	if !found {
		e = &Entry{Fault: f}
		flt.entries[k] = e
		flt.Entries = append(flt.Entries, e)

		if flt.max > 0 && len(flt.Entries) > flt.max {
			delete(flt.entries, key(flt.Entries[0].Fault))
			flt.Entries = flt.Entries[1:]
		}
	}

	// increase the count for this entry
	e.Count++

	return f
}

// Count returns the total number of faults of the category seen, including
// repeats.
func (flt Log) Count(category Category) int {
	var n int
	for _, e := range flt.Entries {
		if e.Category == category {
			n += e.Count
		}
	}
	return n
}

// WriteLog writes the list of faults in the order they were added
func (flt Log) WriteLog(w io.Writer) {
	for _, e := range flt.Entries {
		w.Write([]byte(e.String()))
		w.Write([]byte("\n"))
	}
}
