// Package wire implements the bit-exact on-wire frame codec of spec §4.2
// and §6: a fixed little header (src, dst) followed by a length-prefixed
// name, a trailing NUL, a length-prefixed payload, and a big-endian epoch.
//
//	offset 0  : u32 BE  src_rank
//	offset 4  : u32 BE  dst_rank
//	offset 8  : u8      name_len         (1..=255)
//	offset 9  : bytes   name (name_len bytes)
//	            u8      0x00 (trailing NUL)
//	            u8      payload_len      (0..=255)
//	            bytes   payload (payload_len bytes)
//	            u16 BE  epoch
package wire

import (
	"encoding/binary"
	"sync"

	"github.com/stpalmer21/deltafs-vpic-preload/cmn"
)

const (
	// MaxNameLen and MaxPayloadLen are hard limits, not advisory ones: the
	// original preload silently truncated the length byte on overflow (see
	// DESIGN.md's Open Question resolution #1); this implementation instead
	// rejects the encode outright.
	MaxNameLen    = 255
	MaxPayloadLen = 255

	// MaxFrameSize is the implementation limit named in spec §6; the
	// buffer pool below hands out exactly this many bytes per frame.
	MaxFrameSize = 512

	headerFixedSize = 4 + 4 + 1 + 1 + 1 + 2 // src, dst, namelen, NUL, payloadlen, epoch
)

// Frame is a Record plus its routing envelope, ready for transport.
type Frame struct {
	Src     uint32
	Dst     uint32
	Name    string
	Payload []byte
	Epoch   uint16
}

var bufPool = sync.Pool{
	New: func() interface{} {
		b := make([]byte, MaxFrameSize)
		return &b
	},
}

// GetBuffer returns a pooled MaxFrameSize buffer. Callers must call
// PutBuffer when done; this is the module's equivalent of the original's
// stack-allocated 200-byte send buffer — a pool instead of the stack
// because encode/decode cross goroutine boundaries.
func GetBuffer() *[]byte { return bufPool.Get().(*[]byte) }

// PutBuffer returns buf to the pool.
func PutBuffer(buf *[]byte) { bufPool.Put(buf) }

// Size returns the exact encoded size of f.
func (f *Frame) Size() int {
	return headerFixedSize + len(f.Name) + len(f.Payload)
}

// Encode writes f into buf (which must be at least f.Size() bytes) and
// returns the number of bytes written. It fails with an ErrFrameTooLarge
// Fault if the name or payload exceeds 255 bytes — a programmer error in
// the caller, per the error-handling policy.
func Encode(f *Frame, buf []byte) (int, error) {
	if len(f.Name) > MaxNameLen {
		return 0, cmn.NewFault(cmn.ErrFrameTooLarge, errNameTooLarge(len(f.Name)))
	}
	if len(f.Payload) > MaxPayloadLen {
		return 0, cmn.NewFault(cmn.ErrFrameTooLarge, errPayloadTooLarge(len(f.Payload)))
	}
	n := f.Size()
	if len(buf) < n {
		return 0, cmn.NewFault(cmn.ErrFrameTooLarge, errBufferTooSmall(n, len(buf)))
	}

	off := 0
	binary.BigEndian.PutUint32(buf[off:], f.Src)
	off += 4
	binary.BigEndian.PutUint32(buf[off:], f.Dst)
	off += 4
	buf[off] = byte(len(f.Name))
	off++
	copy(buf[off:], f.Name)
	off += len(f.Name)
	buf[off] = 0x00
	off++
	buf[off] = byte(len(f.Payload))
	off++
	copy(buf[off:], f.Payload)
	off += len(f.Payload)
	binary.BigEndian.PutUint16(buf[off:], f.Epoch)
	off += 2

	return off, nil
}

// Decode reverses Encode, asserting at each step that the remaining buffer
// is large enough; any shortfall is reported as a wire-corruption Fault.
// Decode does not check src/dst against the transport carrier — that
// sanity check belongs to the receiver (dispatch package), which knows the
// carrier's src and the local rank.
func Decode(buf []byte) (*Frame, error) {
	if len(buf) < 8+1+1+1+2 {
		return nil, corruptErr("frame shorter than minimum header")
	}
	off := 0
	f := &Frame{}
	f.Src = binary.BigEndian.Uint32(buf[off:])
	off += 4
	f.Dst = binary.BigEndian.Uint32(buf[off:])
	off += 4

	nameLen := int(buf[off])
	off++
	if len(buf)-off < nameLen+1+1 {
		return nil, corruptErr("frame truncated before name+NUL+payload_len")
	}
	f.Name = string(buf[off : off+nameLen])
	off += nameLen
	if buf[off] != 0x00 {
		return nil, corruptErr("missing trailing NUL after name")
	}
	off++

	payloadLen := int(buf[off])
	off++
	if len(buf)-off < payloadLen+2 {
		return nil, corruptErr("frame truncated before payload+epoch")
	}
	f.Payload = append([]byte(nil), buf[off:off+payloadLen]...)
	off += payloadLen

	f.Epoch = binary.BigEndian.Uint16(buf[off:])
	off += 2

	return f, nil
}

func corruptErr(msg string) error {
	return cmn.NewFault(cmn.ErrWireCorruption, simpleErr(msg))
}
