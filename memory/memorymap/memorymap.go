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

package memorymap

import (
	"fmt"
	"math/bits"
)

// Default geometry of the emulated memory. The page size and the physical
// capacity can be changed by configuration. The size of the virtual address
// space can not.
const (
	PageSize  = uint32(4096)
	PageShift = 12

	// the virtual address space is the full 32 bit range. the value does not
	// fit in a uint32, which is why AddressSpace is untyped
	AddressSpace = 1 << 32

	// Memtop is the highest addressable byte
	Memtop = uint32(0xffffffff)

	// the physical capacity is an upper limit on committed memory and not an
	// up-front allocation
	DefaultPhysicalCapacity = uint64(512 << 20)

	// heap allocations are always rounded to this alignment
	HeapAlignment = uint32(8)
)

// Geometry describes the page size in use by a virtual memory manager. The
// zero value is not usable. Use NewGeometry() or DefaultGeometry.
type Geometry struct {
	PageSize  uint32
	PageShift uint
}

// DefaultGeometry uses the default page size of 4096 bytes.
var DefaultGeometry = Geometry{PageSize: PageSize, PageShift: PageShift}

// NewGeometry creates a Geometry for a page size. The page size must be a
// power of two and no smaller than the heap alignment.
func NewGeometry(pageSize uint32) (Geometry, error) {
	if pageSize < HeapAlignment || pageSize&(pageSize-1) != 0 {
		return Geometry{}, fmt.Errorf("memorymap: page size must be a power of two of at least %d: %d", HeapAlignment, pageSize)
	}
	return Geometry{
		PageSize:  pageSize,
		PageShift: uint(bits.TrailingZeros32(pageSize)),
	}, nil
}

// Align rounds x up to the next page boundary. Values are handled as uint64
// because aligning an address near the top of the address space overflows a
// uint32.
func (g Geometry) Align(x uint64) uint64 {
	m := uint64(g.PageSize) - 1
	return (x + m) &^ m
}

// Truncate rounds the address down to the start of its page.
func (g Geometry) Truncate(address uint32) uint32 {
	return address &^ (g.PageSize - 1)
}

// Number returns the virtual page number of the address.
func (g Geometry) Number(address uint32) uint32 {
	return address >> g.PageShift
}

// Address returns the first address of the page number.
func (g Geometry) Address(number uint32) uint32 {
	return number << g.PageShift
}

// Offset returns the offset of the address within its page.
func (g Geometry) Offset(address uint32) uint32 {
	return address & (g.PageSize - 1)
}

// Pages returns the number of pages covered by size bytes, after alignment.
func (g Geometry) Pages(size uint64) uint32 {
	return uint32(g.Align(size) >> g.PageShift)
}

// AlignHeap rounds size up to the heap alignment. Returns false if the result
// does not fit in a uint32.
func AlignHeap(size uint32) (uint32, bool) {
	a := (uint64(size) + uint64(HeapAlignment) - 1) &^ (uint64(HeapAlignment) - 1)
	if a > uint64(Memtop) {
		return 0, false
	}
	return uint32(a), true
}
