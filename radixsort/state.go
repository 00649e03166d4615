package gpuradixsort

import "encoding/binary"

// SorterState mirrors the 16-byte little-endian record at the head of a
// SortBuffers' state buffer (binding 0). Only NumKeys is ever written by the
// host; PaddedSize, EvenPass and OddPass are device-managed scratch.
type SorterState struct {
	NumKeys    uint32
	PaddedSize uint32
	EvenPass   uint32
	OddPass    uint32
}

// bytes encodes s into the fixed 16-byte wire format used to initialize a
// state buffer at creation time.
func (s SorterState) bytes() [sorterStateSize]byte {
	var out [sorterStateSize]byte
	binary.LittleEndian.PutUint32(out[0:4], s.NumKeys)
	binary.LittleEndian.PutUint32(out[4:8], s.PaddedSize)
	binary.LittleEndian.PutUint32(out[8:12], s.EvenPass)
	binary.LittleEndian.PutUint32(out[12:16], s.OddPass)
	return out
}

// decodeSorterState parses a 16-byte little-endian SorterState record, as
// read back from a state buffer during testing.
func decodeSorterState(b []byte) SorterState {
	return SorterState{
		NumKeys:    binary.LittleEndian.Uint32(b[0:4]),
		PaddedSize: binary.LittleEndian.Uint32(b[4:8]),
		EvenPass:   binary.LittleEndian.Uint32(b[8:12]),
		OddPass:    binary.LittleEndian.Uint32(b[12:16]),
	}
}

// numKeysBytes encodes n as the 4-byte little-endian patch the host writes to
// offset 0 of the state buffer before every sort (queue.WriteBuffer(state, 0,
// numKeysBytes(n))). Only this field is ever overwritten post-creation.
func numKeysBytes(n uint32) [4]byte {
	var out [4]byte
	binary.LittleEndian.PutUint32(out[:], n)
	return out
}
