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

// Package test bundles functions useful for testing purposes, particularly in
// conjunction with the standard go test harness. They remove the boilerplate
// of comparing values and of checking for success or failure.
//
// The Expect functions report a failure with t.Errorf() and the test carries
// on. The Demand functions report with t.Fatalf() and the test stops. Use a
// Demand function when later parts of the test depend on the value being
// correct. For example, demand that an allocation succeeded before writing to
// the allocated memory.
//
// The ExpectSuccess and ExpectFailure functions test for success and failure
// under generic conditions. A bool is a success if it is true and an error is
// a success if it is nil.
//
// It is worth describing how these functions handle the nil type because it
// is not obvious. The nil type is considered a success and consequently will
// cause ExpectFailure to fail and ExpectSuccess to succeed. This may not be
// how we want to interpret nil in all situations but because of how errors
// usually work (nil to indicate no error) we *need* to interpret nil in this
// way.
package test
