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

// Package heap implements a general purpose heap allocator on top of the
// virtual memory manager. The heap is a single committed region of virtual
// memory, allocated when the heap is created.
//
// The Allocator keeps a list of free blocks and a map of allocated blocks.
// Together they account for every byte of the heap. Allocation uses a best-fit
// search of the free list: the smallest free block that is large enough is
// split, with the low part becoming the allocation. When a block is freed it
// is added to the free list and adjacent free blocks are merged.
//
// Malloc(), Free() and Realloc() never panic. Failures, including running out
// of memory and freeing an address twice, are returned as a *faults.Fault and
// leave the heap unchanged and usable.
package heap
