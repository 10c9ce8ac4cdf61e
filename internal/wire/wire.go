package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version   byte = 1
	kindValue byte = 1

	// magic(4) | ver(1) | kind(1) | vlen(u32 be)
	headerLen = 4 + 1 + 1 + 4
)

var (
	ErrCorrupt = errors.New("wtcache: corrupt entry")
	magic4     = [...]byte{'W', 'T', 'C', 'V'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames payload: magic(4) | ver(1) | kind(1=value) | vlen(u32 be) | payload(vlen)
func Encode(payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(headerLen + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kindValue)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode validates the frame and returns the payload. The returned slice
// aliases b.
func Decode(b []byte) ([]byte, error) {
	if len(b) < headerLen || !hasMagic(b) || b[4] != version || b[5] != kindValue {
		return nil, ErrCorrupt
	}
	vlen := int(binary.BigEndian.Uint32(b[6:headerLen]))
	if vlen < 0 || headerLen+vlen != len(b) {
		// short payload or trailing bytes
		return nil, ErrCorrupt
	}
	if vlen == 0 {
		return nil, nil
	}
	return b[headerLen:], nil
}
