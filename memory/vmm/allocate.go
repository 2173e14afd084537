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
	"github.com/xazalea/bellum-sub003/faults"
	"github.com/xazalea/bellum-sub003/logger"
	"github.com/xazalea/bellum-sub003/memory/memorymap"
)

// Allocate a new region of the virtual address space. The size is rounded up
// to a multiple of the page size.
//
// If address is zero the manager searches for free address space, starting at
// the allocation cursor. Otherwise the address is rounded up to a page
// boundary and the region is placed there, if the range is free.
//
// If the allocation type includes memorymap.Commit then the region is backed
// by physical memory and a page table entry is created for every page in the
// region. The new pages have the requested protection.
//
// Returns the base address of the new region. On failure, the returned
// address is zero and the error is a *faults.Fault with one of the following
// categories: InvalidArgument, OutOfVirtualAddressSpace, RegionConflict,
// OutOfPhysicalMemory. Nothing is changed by a failed allocation.
func (m *Manager) Allocate(address uint32, size uint32, typ memorymap.AllocationType, prot memorymap.Protection) (uint32, error) {
	if size == 0 || typ&memorymap.ReserveCommit == 0 {
		return 0, m.fault(faults.InvalidArgument, "allocate", address, size)
	}

	asize := m.geometry.Align(uint64(size))

	var base uint32

	if address == 0 {
		var ok bool
		base, ok = m.findSpan(asize)
		if !ok {
			m.log.Logf(logger.Allow, "vmm", "no free address space for %d bytes", asize)
			return 0, m.fault(faults.OutOfVirtualAddressSpace, "allocate", 0, size)
		}
	} else {
		b := m.geometry.Align(uint64(address))
		if b+asize > memorymap.AddressSpace {
			return 0, m.fault(faults.OutOfVirtualAddressSpace, "allocate", address, size)
		}
		base = uint32(b)
		if r, ok := m.overlaps(base, b+asize); ok {
			m.log.Logf(logger.Allow, "vmm", "%08x conflicts with region %s", base, r.Region)
			return 0, m.fault(faults.RegionConflict, "allocate", address, size)
		}
	}

	r := &region{
		Region: Region{
			Base:       base,
			Size:       asize,
			Protection: prot,
			Allocated:  true,
		},
	}

	if typ.Commits() {
		phys, mem, err := m.store.Carve(asize)
		if err != nil {
			m.log.Logf(logger.Allow, "vmm", "cannot commit %d bytes: %d of %d physical bytes available",
				asize, m.store.Available(), m.store.Capacity())
			return 0, m.fault(faults.OutOfPhysicalMemory, "allocate", base, size)
		}

		r.Committed = true
		r.Physical = phys
		r.mem = mem
		m.installPages(r)
	}

	m.regions.Put(base, r)

	// the next search begins after the new region
	m.cursor = m.clampCursor(r.End())

	m.log.Logf(logger.Allow, "vmm", "allocate: %s", r.Region)

	return base, nil
}

// installPages creates a page table entry for every page of a committed region.
func (m *Manager) installPages(r *region) {
	ps := uint64(m.geometry.PageSize)
	n := m.geometry.Number(r.Base)
	for o := uint64(0); o < r.Size; o += ps {
		m.pages[n] = &page{
			PageTableEntry: PageTableEntry{
				Physical:   r.Physical + o,
				Protection: r.Protection,
				Present:    true,
			},
			mem: r.mem[o : o+ps : o+ps],
		}
		n++
	}
}

// Free the region with the base address. The address must be exactly the base
// address of the region. An address inside a region does not free the region.
//
// All page table entries of the region are removed and the physical memory is
// returned to the store. Fails with InvalidFree if there is no region at the
// address.
func (m *Manager) Free(address uint32) error {
	r, ok := m.regionAt(address)
	if !ok {
		return m.fault(faults.InvalidFree, "free", address, 0)
	}

	if r.Committed {
		n := m.geometry.Number(r.Base)
		for i := m.geometry.Pages(r.Size); i > 0; i-- {
			delete(m.pages, n)
			n++
		}

		// a failure to release would mean that the store and the region list
		// disagree. the region is removed regardless so that the address space
		// remains usable
		if err := m.store.Release(r.Physical); err != nil {
			m.log.Logf(logger.Allow, "vmm", "free: %v", err)
		}
		r.mem = nil
	}

	m.regions.Remove(address)

	m.log.Logf(logger.Allow, "vmm", "free: %s", r.Region)

	return nil
}
