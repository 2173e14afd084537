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

// Package bus defines the memory bus concept for an interpreter issuing loads
// and stores against the virtual memory manager.
//
// The Memory interface is the access surface of the virtual memory manager.
// Accesses through the Memory interface stop at the end of a page. The
// functions in this package loop over page boundaries so that the caller does
// not need to care where a page ends.
//
// Multi-byte values are little-endian.
package bus
