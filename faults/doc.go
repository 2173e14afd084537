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

// Package faults defines the ways in which an operation on emulated memory can
// fail. Failures are returned as a *Fault, an implementation of the error
// interface that records the Category of the failure, the operation and the
// address involved.
//
// The Is() and As() functions find a Fault anywhere in an error chain,
// including inside curated errors.
//
// The Log type records faults as they happen. The virtual memory manager keeps
// a Log so that an embedder can inspect the history of page faults and access
// violations after the fact.
package faults
