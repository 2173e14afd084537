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
	"github.com/xazalea/bellum-sub003/memory/memorymap"
)

// access checks that the page containing the address is present and has the
// required protection. returns the page and the offset of the address in the
// page.
func (m *Manager) access(event string, address uint32, size uint32, required memorymap.Protection) (*page, uint32, error) {
	p, ok := m.lookup(address)
	if !ok {
		return nil, 0, m.fault(faults.PageFault, event, address, size)
	}
	if !p.Protection.Has(required) {
		return nil, 0, m.fault(faults.AccessViolation, event, address, size)
	}
	return p, m.geometry.Offset(address), nil
}

// Read returns a copy of up to size bytes starting at the address. Reads do
// not cross a page boundary. If the read would run past the end of the page
// containing the address then fewer than size bytes are returned and the
// caller must issue another read for the remainder.
//
// Fails with PageFault if the page is not present and with AccessViolation if
// the page is not readable. The page is marked as accessed on success.
func (m *Manager) Read(address uint32, size uint32) ([]byte, error) {
	p, offset, err := m.access("read", address, size, memorymap.Read)
	if err != nil {
		return nil, err
	}

	p.Accessed = true

	n := min(size, m.geometry.PageSize-offset)
	b := make([]byte, n)
	copy(b, p.mem[offset:offset+n])

	return b, nil
}

// Write copies data to memory starting at the address. Like Read(), writes do
// not cross a page boundary. Returns the number of bytes written, which is
// less than len(data) if the write reached the end of the page.
//
// Fails with PageFault if the page is not present and with AccessViolation if
// the page is not writable. The page is marked as accessed and dirty on
// success.
func (m *Manager) Write(address uint32, data []byte) (int, error) {
	p, offset, err := m.access("write", address, uint32(len(data)), memorymap.Write)
	if err != nil {
		return 0, err
	}

	p.Accessed = true
	p.Dirty = true

	return copy(p.mem[offset:], data), nil
}

// Protect changes the protection of every page in the range [address,
// address+size). The range is widened to page boundaries.
//
// Every page in the range must be present. If any page is not present the
// call fails with PageFault and no page is changed.
//
// A region takes on the new protection only when every one of its pages has
// that protection afterwards. A region with mixed page protection keeps the
// protection it had and the page table entries are authoritative.
func (m *Manager) Protect(address uint32, size uint32, prot memorymap.Protection) error {
	if size == 0 {
		return m.fault(faults.InvalidArgument, "protect", address, size)
	}

	start := m.geometry.Truncate(address)
	end := m.geometry.Align(uint64(address) + uint64(size))
	if end > memorymap.AddressSpace {
		return m.fault(faults.InvalidArgument, "protect", address, size)
	}

	first := m.geometry.Number(start)
	count := uint32((end - uint64(start)) >> m.geometry.PageShift)

	// check every page before changing any of them
	for i := uint32(0); i < count; i++ {
		if _, ok := m.pages[first+i]; !ok {
			return m.fault(faults.PageFault, "protect", m.geometry.Address(first+i), size)
		}
	}

	for i := uint32(0); i < count; i++ {
		m.pages[first+i].Protection = prot
	}

	var last *region
	for i := uint32(0); i < count; i++ {
		a := m.geometry.Address(first + i)
		if last != nil && last.Contains(a) {
			continue
		}
		if r, ok := m.regionContaining(a); ok {
			if m.uniformProtection(r, prot) {
				r.Protection = prot
			}
			last = r
		}
	}

	return nil
}

// uniformProtection returns true if every page of the committed region has
// the protection.
func (m *Manager) uniformProtection(r *region, prot memorymap.Protection) bool {
	n := m.geometry.Number(r.Base)
	for i := uint32(0); i < m.geometry.Pages(r.Size); i++ {
		p, ok := m.pages[n+i]
		if !ok || p.Protection != prot {
			return false
		}
	}
	return true
}
