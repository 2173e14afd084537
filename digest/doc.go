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

// Package digest is used to create fingerprints of the state of the memory
// subsystem. Two memory subsystems with the same digest have the same regions,
// the same protection and the same contents of committed memory.
//
// Digests are chained. The digest after an Update() depends on the state of
// the memory and on the previous digest, so a sequence of updates fingerprints
// a sequence of states. Call ResetDigest() to start a new chain.
package digest
