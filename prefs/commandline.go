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

package prefs

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xazalea/bellum-sub003/curated"
)

// ApplyError is the sentinel pattern for errors returned by Config.Apply().
const ApplyError = "prefs: apply: %v"

// commandLine is a parsed prefs string.
type commandLine map[string]Value

// parseCommandLine divides a prefs string into key/value pairs. Entries that
// are not a key/value pair are ignored.
func parseCommandLine(prefs string) commandLine {
	cl := make(commandLine)

	for _, p := range strings.Split(prefs, ";") {
		kv := strings.Split(p, "::")
		if len(kv) == 2 {
			cl[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return cl
}

// get returns the value for the key. The value is deleted when it is
// returned.
func (cl commandLine) get(key string) (bool, Value) {
	if v, ok := cl[key]; ok {
		delete(cl, key)
		return true, v
	}
	return false, nil
}

// String rebuilds a prefs string from the entries remaining. Keys are sorted.
func (cl commandLine) String() string {
	keys := make([]string, 0, len(cl))
	for key := range cl {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	s := strings.Builder{}
	for _, key := range keys {
		s.WriteString(fmt.Sprintf("%s::%v; ", key, cl[key]))
	}

	return strings.TrimSuffix(s.String(), "; ")
}

// bind returns the preference for every key that can be set by a prefs
// string. The preferences refer to the fields of the Config.
func (cfg *Config) bind() map[string]pref {
	return map[string]pref{
		"page_size":         newNumber(&cfg.PageSize),
		"physical_capacity": newNumber(&cfg.PhysicalCapacity),
		"allocation_cursor": newNumber(&cfg.AllocationCursor),
		"max_faults":        newNumber(&cfg.MaxFaults),
		"heap_base":         newNumber(&cfg.HeapBase),
		"heap_size":         newNumber(&cfg.HeapSize),
		"trace":             newBool(&cfg.Trace),
		"log_echo":          newBool(&cfg.LogEcho),
		"log_max_entries":   newNumber(&cfg.LogMaxEntries),
	}
}

// Apply overrides values in the configuration with the values in a prefs
// string. See the package documentation for the format of the string.
//
// Unknown keys and values that can not be parsed are errors. The
// configuration is only changed if every value can be applied and the
// resulting configuration is valid.
func (cfg *Config) Apply(prefs string) error {
	cl := parseCommandLine(prefs)

	n := *cfg
	bound := n.bind()

	keys := make([]string, 0, len(bound))
	for key := range bound {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		if ok, v := cl.get(key); ok {
			if err := bound[key].Set(v); err != nil {
				return curated.Errorf(ApplyError, fmt.Errorf("%s: %w", key, err))
			}
		}
	}

	if len(cl) > 0 {
		return curated.Errorf(ApplyError, fmt.Sprintf("unknown prefs: %s", cl))
	}

	if err := n.Validate(); err != nil {
		return curated.Errorf(ApplyError, err)
	}

	*cfg = n

	return nil
}

// Get returns the current value of a key as a string. Returns false if the
// key is not known.
func (cfg *Config) Get(key string) (string, bool) {
	p, ok := cfg.bind()[key]
	if !ok {
		return "", false
	}
	return p.String(), true
}
