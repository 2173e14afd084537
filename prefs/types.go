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
	"math"
	"strconv"
	"strings"
)

// Value represents the actual Go preference value.
type Value interface{}

// types supported by the prefs system must implement the pref interface.
type pref interface {
	fmt.Stringer
	Set(value Value) error
	Get() Value
}

// integer types that can be the target of a Number preference.
type integer interface {
	~int | ~uint32 | ~uint64
}

// Number implements an integer type in the prefs system. The value is stored
// in a field of the Config type.
type Number[T integer] struct {
	value *T
}

func newNumber[T integer](v *T) *Number[T] {
	return &Number[T]{value: v}
}

func (p *Number[T]) String() string {
	return fmt.Sprintf("%d", *p.value)
}

// Set new value to Number type. New value can be a string or an integer type.
// A string value may have a size suffix or a base prefix.
func (p *Number[T]) Set(v Value) error {
	var n uint64
	var neg bool

	switch v := v.(type) {
	case int:
		neg = v < 0
		n = uint64(v)
		if neg {
			n = uint64(-v)
		}
	case uint32:
		n = uint64(v)
	case uint64:
		n = v
	case string:
		var err error
		s := strings.TrimSpace(v)
		if strings.HasPrefix(s, "-") {
			neg = true
			s = s[1:]
		}
		n, err = parseSize(s)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("set: cannot convert %T to prefs.Number", v)
	}

	var t T
	switch any(t).(type) {
	case int:
		if n > math.MaxInt {
			return fmt.Errorf("set: %d is out of range", n)
		}
		if neg {
			*p.value = T(-int(n))
		} else {
			*p.value = T(n)
		}
		return nil
	case uint32:
		if n > math.MaxUint32 {
			return fmt.Errorf("set: %d is out of range", n)
		}
	}

	if neg {
		return fmt.Errorf("set: negative value for unsigned preference")
	}

	*p.value = T(n)

	return nil
}

// Get returns the raw pref value.
func (p *Number[T]) Get() Value {
	return *p.value
}

// Bool implements a boolean type in the prefs system. The value is stored in a
// field of the Config type.
type Bool struct {
	value *bool
}

func newBool(v *bool) *Bool {
	return &Bool{value: v}
}

func (p *Bool) String() string {
	return fmt.Sprintf("%v", *p.value)
}

// Set new value to Bool type. New value must be of type bool or string. A
// string value of anything other than "true" (case insensitive) will set the
// value to false.
func (p *Bool) Set(v Value) error {
	switch v := v.(type) {
	case bool:
		*p.value = v
	case string:
		*p.value = strings.ToLower(strings.TrimSpace(v)) == "true"
	default:
		return fmt.Errorf("set: cannot convert %T to prefs.Bool", v)
	}
	return nil
}

// Get returns the raw pref value.
func (p *Bool) Get() Value {
	return *p.value
}

// size suffixes in the order they should be tried. longer suffixes first
var suffixes = []struct {
	suffix string
	shift  uint
}{
	{"KiB", 10}, {"MiB", 20}, {"GiB", 30},
	{"K", 10}, {"M", 20}, {"G", 30},
}

// parseSize parses an unsigned integer with an optional size suffix. The
// integer may be in any base recognised by strconv.ParseUint with a base of
// zero.
func parseSize(s string) (uint64, error) {
	var shift uint
	for _, sf := range suffixes {
		if strings.HasSuffix(s, sf.suffix) {
			s = strings.TrimSpace(strings.TrimSuffix(s, sf.suffix))
			shift = sf.shift
			break
		}
	}

	n, err := strconv.ParseUint(s, 0, 64)
	if err != nil {
		return 0, fmt.Errorf("set: %w", err)
	}

	if n > math.MaxUint64>>shift {
		return 0, fmt.Errorf("set: %s is out of range", s)
	}

	return n << shift, nil
}
