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

package vmm

import (
	"fmt"

	"github.com/xazalea/bellum-sub003/memory/memorymap"
)

// Region is a single reservation in the virtual address space. Regions never
// overlap.
type Region struct {
	Base uint32

	// size in bytes. always a multiple of the page size. a uint64 because a
	// region may in principle cover the entire 4GiB address space
	Size uint64

	// protection given at allocation, or by the last call to Protect() that
	// left every page of the region with the same protection
	Protection memorymap.Protection

	// a region in the region list is always allocated. the field is
	// included so that a Region value is self-describing
	Allocated bool

	// the region has physical backing and page table entries
	Committed bool

	// physical address of the backing store. only meaningful if the region
	// is committed
	Physical uint64
}

func (r Region) String() string {
	c := "reserved"
	if r.Committed {
		c = "committed"
	}
	return fmt.Sprintf("%08x-%08x %s %s", r.Base, r.End()-1, r.Protection, c)
}

// End returns the first address after the region. The value is a uint64
// because it may be the top of the address space.
func (r Region) End() uint64 {
	return uint64(r.Base) + r.Size
}

// Contains returns true if address falls inside the region.
func (r Region) Contains(address uint32) bool {
	return address >= r.Base && uint64(address) < r.End()
}

// region is the internal form of a Region. it includes the slice of the
// physical store backing the region.
type region struct {
	Region
	mem []byte
}

// regionAt returns the region with the exact base address.
func (m *Manager) regionAt(base uint32) (*region, bool) {
	v, ok := m.regions.Get(base)
	if !ok {
		return nil, false
	}
	return v.(*region), true
}

// regionContaining returns the region that contains the address.
func (m *Manager) regionContaining(address uint32) (*region, bool) {
	_, v := m.regions.Floor(address)
	if v == nil {
		return nil, false
	}
	r := v.(*region)
	if !r.Contains(address) {
		return nil, false
	}
	return r, true
}

// overlaps returns the first region that overlaps the range [base, end).
func (m *Manager) overlaps(base uint32, end uint64) (*region, bool) {
	if r, ok := m.regionContaining(base); ok {
		return r, true
	}
	_, v := m.regions.Ceiling(base)
	if v == nil {
		return nil, false
	}
	r := v.(*region)
	if uint64(r.Base) < end {
		return r, true
	}
	return nil, false
}

// findSpan searches for free address space of size bytes, starting at the
// allocation cursor. if nothing is found above the cursor the search starts
// again from the bottom of the address space. the size must be a multiple of
// the page size.
func (m *Manager) findSpan(size uint64) (uint32, bool) {
	if base, ok := m.findSpanFrom(uint64(m.cursor), size); ok {
		return base, true
	}
	return m.findSpanFrom(uint64(m.geometry.PageSize), size)
}

func (m *Manager) findSpanFrom(candidate uint64, size uint64) (uint32, bool) {
	for candidate+size <= memorymap.AddressSpace {
		r, ok := m.overlaps(uint32(candidate), candidate+size)
		if !ok {
			return uint32(candidate), true
		}
		candidate = m.geometry.Align(r.End())
	}
	return 0, false
}

// Query returns the region containing the address. Unlike Free(), the address
// does not need to be the base address of the region.
func (m *Manager) Query(address uint32) (Region, bool) {
	r, ok := m.regionContaining(address)
	if !ok {
		return Region{}, false
	}
	return r.Region, true
}

// Regions returns a copy of every region in ascending address order.
func (m *Manager) Regions() []Region {
	l := make([]Region, 0, m.regions.Size())
	it := m.regions.Iterator()
	for it.Next() {
		l = append(l, it.Value().(*region).Region)
	}
	return l
}

// Memory returns the bytes backing the committed region with the exact base
// address. The slice is the region's own storage and not a copy. It is
// intended for components, like the heap allocator, that manage sub-ranges of
// a region they have allocated themselves. Writes through the slice bypass
// protection and do not update the page table flags.
func (m *Manager) Memory(base uint32) ([]byte, bool) {
	r, ok := m.regionAt(base)
	if !ok || !r.Committed {
		return nil, false
	}
	return r.mem, true
}
