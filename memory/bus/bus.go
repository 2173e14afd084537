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

package bus

import (
	"encoding/binary"
)

// Memory defines the operations for the memory system when accessed by an
// interpreter. Read and Write are page bounded: a Read returns at most the
// bytes up to the end of the page containing the address and a Write writes
// at most that many bytes.
//
// The vmm.Manager type implements this interface.
type Memory interface {
	Read(address uint32, size uint32) ([]byte, error)
	Write(address uint32, data []byte) (int, error)
}

// ExecutableMemory is implemented by memory that can say whether an address
// may be executed.
type ExecutableMemory interface {
	Memory
	IsExecutable(address uint32) bool
}

// ReadBlock reads size bytes beginning at address. The read continues over
// page boundaries. If a fault occurs the bytes read before the fault are
// returned with the error.
func ReadBlock(mem Memory, address uint32, size uint32) ([]byte, error) {
	data := make([]byte, 0, size)
	for uint32(len(data)) < size {
		b, err := mem.Read(address+uint32(len(data)), size-uint32(len(data)))
		if err != nil {
			return data, err
		}
		if len(b) == 0 {
			break
		}
		data = append(data, b...)
	}
	return data, nil
}

// WriteBlock writes the data beginning at address. The write continues over
// page boundaries. Returns the number of bytes written. If a fault occurs the
// bytes before the faulting page will have been written.
func WriteBlock(mem Memory, address uint32, data []byte) (int, error) {
	var n int
	for n < len(data) {
		w, err := mem.Write(address+uint32(n), data[n:])
		n += w
		if err != nil {
			return n, err
		}
		if w == 0 {
			break
		}
	}
	return n, nil
}

// Read8 reads a single byte.
func Read8(mem Memory, address uint32) (uint8, error) {
	b, err := mem.Read(address, 1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Write8 writes a single byte.
func Write8(mem Memory, address uint32, data uint8) error {
	_, err := mem.Write(address, []byte{data})
	return err
}

// Read16 reads a 16-bit value. The value may cross a page boundary.
func Read16(mem Memory, address uint32) (uint16, error) {
	b, err := ReadBlock(mem, address, 2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// Write16 writes a 16-bit value. The value may cross a page boundary.
func Write16(mem Memory, address uint32, data uint16) error {
	_, err := WriteBlock(mem, address, binary.LittleEndian.AppendUint16(nil, data))
	return err
}

// Read32 reads a 32-bit value. The value may cross a page boundary.
func Read32(mem Memory, address uint32) (uint32, error) {
	b, err := ReadBlock(mem, address, 4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// Write32 writes a 32-bit value. The value may cross a page boundary.
func Write32(mem Memory, address uint32, data uint32) error {
	_, err := WriteBlock(mem, address, binary.LittleEndian.AppendUint32(nil, data))
	return err
}

// Fetch reads size bytes of instruction data beginning at address. Every page
// touched by the fetch must be executable.
func Fetch(mem ExecutableMemory, address uint32, size uint32) ([]byte, bool, error) {
	data, err := ReadBlock(mem, address, size)
	if err != nil {
		return nil, false, err
	}
	for i := uint32(0); i < size; i++ {
		if !mem.IsExecutable(address + i) {
			return nil, false, nil
		}
	}
	return data, true, nil
}
