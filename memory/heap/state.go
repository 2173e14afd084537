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

package heap

import (
	"fmt"
	"slices"

	"github.com/xazalea/bellum-sub003/curated"
	"github.com/xazalea/bellum-sub003/logger"
)

// State is a copy of the heap's bookkeeping. The contents of heap memory are
// not part of the State; they belong to the virtual memory manager and are in
// its snapshot.
type State struct {
	Base      uint32  `cbor:"base"`
	Size      uint32  `cbor:"size"`
	Free      []Block `cbor:"free"`
	Allocated []Block `cbor:"allocated"`
}

// Snapshot creates a copy of the heap's bookkeeping in its current state.
func (h *Allocator) Snapshot() *State {
	return &State{
		Base:      h.base,
		Size:      h.size,
		Free:      slices.Clone(h.free),
		Allocated: h.AllocatedBlocks(),
	}
}

// Restore the heap's bookkeeping from a snapshot. The virtual memory manager
// must already have been restored to the snapshot taken at the same time,
// because the heap fetches its memory from the manager again.
//
// The heap is not changed if the snapshot is not for this heap or if the
// restored heap would be inconsistent.
func (h *Allocator) Restore(s *State) error {
	if s.Base != h.base || s.Size != h.size {
		return curated.Errorf(RestoreError, fmt.Errorf("snapshot is for heap at %08x (%d bytes)", s.Base, s.Size))
	}

	mem, ok := h.mgr.Memory(h.base)
	if !ok || uint32(len(mem)) != h.size {
		return curated.Errorf(RestoreError, fmt.Errorf("no committed region at %08x", h.base))
	}

	n := &Allocator{
		base:      h.base,
		size:      h.size,
		free:      slices.Clone(s.Free),
		allocated: make(map[uint32]uint32, len(s.Allocated)),
	}
	for _, b := range s.Allocated {
		n.allocated[b.Address] = b.Size
	}
	if len(n.allocated) != len(s.Allocated) {
		return curated.Errorf(RestoreError, fmt.Errorf("duplicate allocated block"))
	}
	if err := n.Validate(); err != nil {
		return curated.Errorf(RestoreError, err)
	}

	h.mem = mem
	h.free = n.free
	h.allocated = n.allocated

	h.log.Logf(logger.Allow, "heap", "restored %d allocated blocks", len(h.allocated))

	return nil
}
