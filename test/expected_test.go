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

package test_test

import (
	"errors"
	"testing"

	"github.com/xazalea/bellum-sub003/curated"
	"github.com/xazalea/bellum-sub003/faults"
	"github.com/xazalea/bellum-sub003/memory/memorymap"
	"github.com/xazalea/bellum-sub003/test"
)

func TestExpectFailure(t *testing.T) {
	test.ExpectFailure(t, false)
	test.ExpectFailure(t, errors.New("test"))
}

func TestExpectSuccess(t *testing.T) {
	test.ExpectSuccess(t, true)
	var err error
	test.ExpectSuccess(t, err)
	test.ExpectSuccess(t, nil)
}

func TestExpectEquality(t *testing.T) {
	test.ExpectEquality(t, 10, 5+5)
	test.ExpectEquality(t, true, !false)
	test.ExpectEquality(t, uint32(0x1000), 0x800<<1)
}

func TestExpectInequality(t *testing.T) {
	test.ExpectInequality(t, 11, 5+5)
	test.ExpectInequality(t, true, false)
}

func TestDemand(t *testing.T) {
	test.DemandEquality(t, 4096, 1<<12)
	test.DemandSuccess(t, true)
	test.DemandFailure(t, errors.New("test"))
}

func TestProtectionValues(t *testing.T) {
	test.ExpectEquality(t, memorymap.ReadWrite, memorymap.Read|memorymap.Write)
	test.ExpectInequality(t, memorymap.ReadWrite, memorymap.ReadExecute)
	test.ExpectSuccess(t, memorymap.ReadWrite.Has(memorymap.Write))
	test.ExpectFailure(t, memorymap.Read.Has(memorymap.Write))
	test.ExpectEquality(t, memorymap.ReadWrite.String(), "rw-")
}

func TestFaultValues(t *testing.T) {
	f := faults.New(faults.PageFault, "read", 0x1000, 4)

	// a fault is an error value and so is a failure
	test.ExpectFailure(t, error(f))
	test.ExpectEquality(t, *f, faults.Fault{Category: faults.PageFault, Event: "read", Address: 0x1000, Size: 4})
	test.ExpectInequality(t, *f, *faults.New(faults.AccessViolation, "read", 0x1000, 4))

	// the fault survives wrapping
	err := curated.Errorf("memory: %v", f)
	test.DemandFailure(t, err)
	test.ExpectSuccess(t, faults.Is(err, faults.PageFault))
	test.ExpectEquality(t, faults.As(err), f)
}
