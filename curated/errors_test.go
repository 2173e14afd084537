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

package curated_test

import (
	"errors"
	"testing"

	"github.com/xazalea/bellum-sub003/curated"
	"github.com/xazalea/bellum-sub003/test"
)

const testPattern = "heap: %v"
const testSubPattern = "out of memory (%d bytes)"

func TestDuplicateParts(t *testing.T) {
	e := curated.Errorf(testSubPattern, 100)
	test.ExpectEquality(t, e.Error(), "out of memory (100 bytes)")

	f := curated.Errorf(testPattern, e)
	test.ExpectEquality(t, f.Error(), "heap: out of memory (100 bytes)")

	// wrapping with the same pattern does not repeat the leading part
	g := curated.Errorf(testPattern, f)
	test.ExpectEquality(t, g.Error(), "heap: out of memory (100 bytes)")
}

func TestIsAndHas(t *testing.T) {
	e := curated.Errorf(testSubPattern, 100)
	f := curated.Errorf(testPattern, e)

	test.ExpectSuccess(t, curated.IsAny(f))
	test.ExpectSuccess(t, curated.Is(f, testPattern))
	test.ExpectFailure(t, curated.Is(f, testSubPattern))
	test.ExpectSuccess(t, curated.Has(f, testSubPattern))

	test.ExpectFailure(t, curated.IsAny(errors.New("plain")))
	test.ExpectFailure(t, curated.Is(nil, testPattern))
	test.ExpectFailure(t, curated.Has(nil, testPattern))
}

type wrappedError struct {
	address uint32
}

func (e *wrappedError) Error() string {
	return "wrapped"
}

func TestUnwrap(t *testing.T) {
	inner := &wrappedError{address: 0x1000}
	e := curated.Errorf(testPattern, curated.Errorf("vmm: %v", inner))

	var w *wrappedError
	test.DemandSuccess(t, errors.As(e, &w))
	test.ExpectEquality(t, w.address, uint32(0x1000))
	test.ExpectSuccess(t, errors.Is(e, inner))
}
