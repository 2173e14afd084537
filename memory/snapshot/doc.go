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

// Package snapshot serialises the state of the memory subsystem. A snapshot
// contains the state of the virtual memory manager, including the contents of
// committed memory, the bookkeeping of the heap and the registry and root set
// of the garbage collector.
//
// Snapshots are encoded as CBOR using the canonical encoding options, so the
// same state always produces the same bytes.
package snapshot
