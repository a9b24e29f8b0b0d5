package vector

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Serialized layout, all little-endian:
//
//	magic   uint32  "FLIP" (flat inner product)
//	version uint32
//	dim     uint32
//	count   uint32
//	data    count*dim float32
const (
	codecMagic   uint32 = 0x50494c46 // "FLIP"
	codecVersion uint32 = 1
)

// Encode writes the index to w in the binary flat format.
func (f *Flat) Encode(w io.Writer) error {
	header := [4]uint32{codecMagic, codecVersion, uint32(f.dim), uint32(f.Len())}
	for _, h := range header {
		if err := binary.Write(w, binary.LittleEndian, h); err != nil {
			return fmt.Errorf("encode flat index header: %w", err)
		}
	}

	buf := make([]byte, 4*len(f.data))
	for i, v := range f.data {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("encode flat index data: %w", err)
	}
	return nil
}

// Decode reads an index previously written by Encode.
func Decode(r io.Reader) (*Flat, error) {
	var header [4]uint32
	for i := range header {
		if err := binary.Read(r, binary.LittleEndian, &header[i]); err != nil {
			return nil, fmt.Errorf("decode flat index header: %w", err)
		}
	}
	if header[0] != codecMagic {
		return nil, fmt.Errorf("decode flat index: bad magic 0x%08x", header[0])
	}
	if header[1] != codecVersion {
		return nil, fmt.Errorf("decode flat index: unsupported version %d", header[1])
	}

	dim, count := int(header[2]), int(header[3])
	f, err := NewFlat(dim)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 4*dim*count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("decode flat index data: %w", err)
	}
	f.data = make([]float32, dim*count)
	for i := range f.data {
		f.data[i] = math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
	}
	return f, nil
}
