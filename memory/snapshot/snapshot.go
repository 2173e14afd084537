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

package snapshot

import (
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
	"github.com/xazalea/bellum-sub003/curated"
	"github.com/xazalea/bellum-sub003/memory/gc"
	"github.com/xazalea/bellum-sub003/memory/heap"
	"github.com/xazalea/bellum-sub003/memory/vmm"
)

// Sentinel patterns for errors returned by the snapshot package.
const (
	EncodeError = "snapshot: encode: %v"
	DecodeError = "snapshot: decode: %v"
)

// Version of the snapshot format. Snapshots of a different version are
// refused by Unmarshal().
const Version = 1

// State of the memory subsystem. The Heap and GC fields are nil if the memory
// subsystem has no heap.
type State struct {
	Version int         `cbor:"version"`
	VMM     *vmm.State  `cbor:"vmm"`
	Heap    *heap.State `cbor:"heap,omitempty"`
	GC      *gc.State   `cbor:"gc,omitempty"`
}

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("snapshot: failed to create CBOR enc mode: %v", err))
	}
	encMode = em
}

// Marshal encodes the State as CBOR.
func Marshal(s *State) ([]byte, error) {
	if s.VMM == nil {
		return nil, curated.Errorf(EncodeError, "no VMM state")
	}
	if (s.Heap == nil) != (s.GC == nil) {
		return nil, curated.Errorf(EncodeError, "heap and collector state must both be present")
	}
	s.Version = Version
	b, err := encMode.Marshal(s)
	if err != nil {
		return nil, curated.Errorf(EncodeError, err)
	}
	return b, nil
}

// Unmarshal decodes a State from CBOR.
func Unmarshal(data []byte) (*State, error) {
	var s State
	if err := cbor.Unmarshal(data, &s); err != nil {
		return nil, curated.Errorf(DecodeError, err)
	}
	if s.Version != Version {
		return nil, curated.Errorf(DecodeError, fmt.Sprintf("unsupported version %d", s.Version))
	}
	if s.VMM == nil {
		return nil, curated.Errorf(DecodeError, "no VMM state")
	}
	if (s.Heap == nil) != (s.GC == nil) {
		return nil, curated.Errorf(DecodeError, "heap and collector state must both be present")
	}
	return &s, nil
}

// Write encodes the State to the io.Writer.
func Write(w io.Writer, s *State) error {
	b, err := Marshal(s)
	if err != nil {
		return err
	}
	if _, err := w.Write(b); err != nil {
		return curated.Errorf(EncodeError, err)
	}
	return nil
}

// Read decodes a State from the io.Reader. The reader is read until EOF.
func Read(r io.Reader) (*State, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, curated.Errorf(DecodeError, err)
	}
	return Unmarshal(b)
}
