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

// Package memorymap defines the geometry of the emulated address space: the
// page size, the size of the virtual address space and the default capacity
// of physical memory. It also defines the protection bits that are attached
// to every page and the allocation types understood by the virtual memory
// manager.
//
// All addresses and sizes are rounded up to a page boundary before they are
// used by the virtual memory manager. With the default page size:
//
//	align(x) = (x + 4095) &^ 4095
//
// The Geometry type performs the rounding and the translation between an
// address and its page number.
package memorymap
