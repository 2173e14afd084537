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

package random

import (
	"math/rand/v2"
	"time"
)

// the base seed for all random numbers
var baseSeed uint64

// initialise base seed
func init() {
	baseSeed = uint64(time.Now().UnixNano())
}

// Position is the point in a workload at which random numbers are required.
type Position interface {
	Position() uint64
}

// Random is a random number generator that is sensitive to the position in a
// workload.
type Random struct {
	pos Position

	// the base seed in use. initialised to the program wide base seed
	BaseSeed uint64

	// use zero seed rather than the base seed
	ZeroSeed bool
}

// NewRandom is the preferred method of initialisation for the Random type.
func NewRandom(pos Position) *Random {
	return &Random{
		pos:      pos,
		BaseSeed: baseSeed,
	}
}

// Rand returns a generator for the current position. Every generator returned
// for the same position produces the same sequence of numbers.
func (rnd *Random) Rand() *rand.Rand {
	var seed uint64
	if !rnd.ZeroSeed {
		seed = rnd.BaseSeed
	}
	return rand.New(rand.NewPCG(seed, rnd.pos.Position()))
}

// IntN returns a number in the range [0, n) for the current position.
func (rnd *Random) IntN(n int) int {
	return rnd.Rand().IntN(n)
}
