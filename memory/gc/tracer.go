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

package gc

import "encoding/binary"

// ScanWords is a conservative Tracer. Every aligned 32-bit little-endian word
// in the object is treated as a possible reference to another object.
func ScanWords(_ uint32, data []byte) []uint32 {
	refs := make([]uint32, 0, len(data)/4)
	for i := 0; i+4 <= len(data); i += 4 {
		if v := binary.LittleEndian.Uint32(data[i:]); v != 0 {
			refs = append(refs, v)
		}
	}
	return refs
}
