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

package physical_test

import (
	"testing"

	"github.com/xazalea/bellum-sub003/faults"
	"github.com/xazalea/bellum-sub003/memory/physical"
	"github.com/xazalea/bellum-sub003/test"
)

func TestCarveAndRelease(t *testing.T) {
	st := physical.NewStore(16384)
	test.ExpectEquality(t, st.Capacity(), 16384)
	test.ExpectEquality(t, st.Available(), 16384)

	a, mem, err := st.Carve(4096)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, a, 0)
	test.ExpectEquality(t, len(mem), 4096)

	b, _, err := st.Carve(8192)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, b, 4096)
	test.ExpectEquality(t, st.Used(), 12288)

	// not enough capacity left
	_, _, err = st.Carve(8192)
	test.ExpectSuccess(t, faults.Is(err, faults.OutOfPhysicalMemory))

	// releasing the first extent means it can be carved again
	test.ExpectSuccess(t, st.Release(a))
	test.ExpectFailure(t, st.Release(a))
	c, _, err := st.Carve(4096)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, c, a)

	test.ExpectSuccess(t, st.Release(b))
	test.ExpectSuccess(t, st.Release(c))
	test.ExpectEquality(t, st.Used(), 0)
	test.ExpectEquality(t, st.FreeExtents(), 1)
	test.ExpectEquality(t, st.Extents(), 0)
}

func TestFragmentation(t *testing.T) {
	st := physical.NewStore(3 * 4096)

	a, _, err := st.Carve(4096)
	test.DemandSuccess(t, err)
	_, _, err = st.Carve(4096)
	test.DemandSuccess(t, err)
	c, _, err := st.Carve(4096)
	test.DemandSuccess(t, err)

	test.DemandSuccess(t, st.Release(a))
	test.DemandSuccess(t, st.Release(c))

	// two pages are available but not contiguously
	test.ExpectEquality(t, st.Available(), 8192)
	_, _, err = st.Carve(8192)
	test.ExpectSuccess(t, faults.Is(err, faults.OutOfPhysicalMemory))
}

func TestCarveAt(t *testing.T) {
	st := physical.NewStore(4 * 4096)

	mem, err := st.CarveAt(8192, 4096)
	test.DemandSuccess(t, err)
	test.ExpectEquality(t, len(mem), 4096)
	test.ExpectEquality(t, st.FreeExtents(), 2)

	// overlaps the extent just carved
	_, err = st.CarveAt(4096, 8192)
	test.ExpectFailure(t, err)

	b, ok := st.Bytes(8192)
	test.ExpectSuccess(t, ok)
	test.ExpectEquality(t, len(b), 4096)

	test.DemandSuccess(t, st.Release(8192))
	test.ExpectEquality(t, st.FreeExtents(), 1)
}
