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

package digest

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"github.com/xazalea/bellum-sub003/memory/vmm"
)

// Digest implementations compute a fingerprint of the memory subsystem.
type Digest interface {
	Hash() string
	ResetDigest()
}

// Memory is a Digest of the virtual memory manager.
type Memory struct {
	digest [sha1.Size]byte
}

// NewMemory is the preferred method of initialisation for the Memory type.
func NewMemory() *Memory {
	return &Memory{}
}

// Hash implements digest.Digest interface
func (dig *Memory) Hash() string {
	return fmt.Sprintf("%x", dig.digest)
}

// ResetDigest implements digest.Digest interface
func (dig *Memory) ResetDigest() {
	dig.digest = [sha1.Size]byte{}
}

// Update the digest with the current state of the virtual memory manager. The
// page table flags that record access (dirty and accessed) are not part of
// the digest.
func (dig *Memory) Update(mgr *vmm.Manager) {
	h := sha1.New()

	// chain fingerprints by hashing the previous fingerprint first
	h.Write(dig.digest[:])

	g := mgr.Geometry()
	var b []byte

	for _, r := range mgr.Regions() {
		b = b[:0]
		b = binary.LittleEndian.AppendUint32(b, r.Base)
		b = binary.LittleEndian.AppendUint64(b, r.Size)
		b = append(b, byte(r.Protection))
		if r.Committed {
			b = append(b, 1)
		} else {
			b = append(b, 0)
		}
		h.Write(b)

		if !r.Committed {
			continue
		}

		// the protection of each page can differ from the protection of the
		// region
		b = b[:0]
		n := g.Number(r.Base)
		for i := uint32(0); i < g.Pages(r.Size); i++ {
			if e, ok := mgr.PTE(g.Address(n + i)); ok {
				b = append(b, byte(e.Protection))
			}
		}
		h.Write(b)

		if mem, ok := mgr.Memory(r.Base); ok {
			h.Write(mem)
		}
	}

	copy(dig.digest[:], h.Sum(nil))
}
