package player

import (
	"encoding/binary"
	"unicode/utf16"
)

// Parcel is a flat binary record handed to the driver's listener
// channel. All integers are big-endian; strings are written as a
// 32-bit UTF-16 code-unit count followed by the code units, mirroring the
// platform binding.
type Parcel struct {
	data []byte
	pos  int
}

func (p *Parcel) WriteInt32(v int32) {
	p.data = binary.BigEndian.AppendUint32(p.data, uint32(v))
}

func (p *Parcel) WriteInt64(v int64) {
	p.data = binary.BigEndian.AppendUint64(p.data, uint64(v))
}

func (p *Parcel) WriteString16(s string) {
	units := utf16.Encode([]rune(s))
	p.WriteInt32(int32(len(units)))
	for _, u := range units {
		p.data = binary.BigEndian.AppendUint16(p.data, u)
	}
}

func (p *Parcel) Write(b []byte) {
	p.data = append(p.data, b...)
}

func (p *Parcel) Bytes() []byte {
	return p.data
}

func (p *Parcel) Size() int {
	return len(p.data)
}

// Read helpers consume from the front of the parcel.

func (p *Parcel) ReadInt32() int32 {
	if p.pos+4 > len(p.data) {
		return 0
	}
	v := int32(binary.BigEndian.Uint32(p.data[p.pos:]))
	p.pos += 4
	return v
}

func (p *Parcel) ReadInt64() int64 {
	if p.pos+8 > len(p.data) {
		return 0
	}
	v := int64(binary.BigEndian.Uint64(p.data[p.pos:]))
	p.pos += 8
	return v
}

func (p *Parcel) ReadString16() string {
	n := int(p.ReadInt32())
	if n < 0 || p.pos+2*n > len(p.data) {
		return ""
	}
	units := make([]uint16, n)
	for i := 0; i < n; i++ {
		units[i] = binary.BigEndian.Uint16(p.data[p.pos:])
		p.pos += 2
	}
	return string(utf16.Decode(units))
}

func (p *Parcel) ReadBytes(n int) []byte {
	if n < 0 || p.pos+n > len(p.data) {
		return nil
	}
	b := p.data[p.pos : p.pos+n]
	p.pos += n
	return b
}
