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

// Package memory is the emulated memory subsystem of a sandboxed execution
// host. It ties together the three layers of the subsystem:
//
//	vmm: paged 32bit virtual address space with protection
//	heap: general purpose allocator in a region of virtual memory
//	gc: mark and sweep collector of objects allocated from the heap
//
// The Memory type created by New() owns one instance of each layer. There is
// no global instance: embedders create a Memory and pass it to whatever needs
// it. Separate instances are independent of one another.
//
// Control flows downwards only. The collector calls the heap and the heap
// calls the virtual memory manager once, when the heap is created. The virtual
// memory manager's Read(), Write() and Protect() functions can always be
// called directly, for example by an interpreter executing guest code. The bus
// package has helpers for accesses that cross page boundaries.
//
// None of the types in the subsystem are safe for concurrent use. An embedder
// that shares a Memory between goroutines must serialise access to it.
//
// The state of a Memory can be saved and restored with the Snapshot() and
// Restore() functions, and serialised with the Save() and Load() functions.
package memory
