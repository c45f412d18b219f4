// Package pdu implements the MAC PDU sub-header wire format used on the
// downlink and uplink shared channels. A transport block is a sequence of
// sub-PDUs, each carrying one logical-channel SDU behind a compact
// sub-header, optionally terminated by a padding sub-PDU.
//
// Sub-header layout (byte 0): R bit (0x80), F bit (0x40), 6-bit LCID (0x3F).
// LCIDs below 63 are followed by a length field: one byte when F=0 (SDU up
// to 255 bytes), two bytes big-endian when F=1. LCID 63 is padding: it has
// no length field, consumes the remainder of the transport block and
// terminates parsing. This layout is the binding wire contract with the
// peer terminal and must not change.
package pdu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	// LCIDPadding marks a padding sub-PDU. It has no length field.
	LCIDPadding = 63

	// MaxLCID is the highest encodable logical channel identifier.
	MaxLCID = 63

	subheaderFlagF   = 0x40
	subheaderLCIDMsk = 0x3F

	// maxShortSDU is the largest SDU length encodable with a 1-byte L field.
	maxShortSDU = 255
)

var (
	// ErrMalformedPDU is returned when a received transport block does not
	// parse as a valid sequence of sub-PDUs.
	ErrMalformedPDU = errors.New("malformed MAC PDU")

	// ErrCapacityExceeded is returned when adding an SDU would overflow the
	// transport-block byte budget.
	ErrCapacityExceeded = errors.New("insufficient space in transport block")
)

// SubPDU is one logical-channel payload inside a transport block. SDU
// aliases the buffer the sub-PDU was parsed from; it is only valid as long
// as that buffer is.
type SubPDU struct {
	LCID uint8
	SDU  []byte
}

// IsPadding reports whether the sub-PDU is wire padding rather than data.
func (s SubPDU) IsPadding() bool {
	return s.LCID == LCIDPadding
}

// headerLen returns the sub-header size for an SDU of n bytes.
func headerLen(n int) int {
	if n > maxShortSDU {
		return 3
	}
	return 2
}

// Builder packs sub-PDUs into a caller-supplied buffer under a byte budget.
// The buffer is not owned by the Builder; callers typically hand in a slot
// buffer from a transmission pool.
type Builder struct {
	buf    []byte
	budget int
	n      int
}

// NewBuilder prepares a Builder writing into buf with at most budget bytes.
// The effective budget is clamped to the buffer capacity.
func NewBuilder(buf []byte, budget int) *Builder {
	if budget > cap(buf) {
		budget = cap(buf)
	}
	return &Builder{buf: buf[:cap(buf)], budget: budget}
}

// AddSDU appends one sub-PDU carrying sdu on the given logical channel.
// It returns ErrCapacityExceeded if the sub-header plus payload would not
// fit in the remaining budget; the buffer is left unchanged in that case.
func (b *Builder) AddSDU(lcid uint8, sdu []byte) error {
	if lcid >= LCIDPadding {
		return fmt.Errorf("lcid %d is not a data channel", lcid)
	}
	hdr := headerLen(len(sdu))
	if b.n+hdr+len(sdu) > b.budget {
		return fmt.Errorf("%w: need %d bytes, %d left",
			ErrCapacityExceeded, hdr+len(sdu), b.budget-b.n)
	}

	if hdr == 3 {
		b.buf[b.n] = subheaderFlagF | (lcid & subheaderLCIDMsk)
		binary.BigEndian.PutUint16(b.buf[b.n+1:b.n+3], uint16(len(sdu)))
	} else {
		b.buf[b.n] = lcid & subheaderLCIDMsk
		b.buf[b.n+1] = byte(len(sdu))
	}
	copy(b.buf[b.n+hdr:], sdu)
	b.n += hdr + len(sdu)
	return nil
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int {
	return b.n
}

// Bytes returns the serialized transport block written so far. The slice
// aliases the buffer passed to NewBuilder.
func (b *Builder) Bytes() []byte {
	return b.buf[:b.n]
}

// Parse splits a received transport block into its sub-PDUs without copying
// payload bytes: each SubPDU's SDU aliases data. A zero-length input is a
// valid empty PDU. Parse returns ErrMalformedPDU when a sub-header declares
// a length extending past the end of data; it never reads past the input.
func Parse(data []byte) ([]SubPDU, error) {
	var subs []SubPDU
	off := 0
	for off < len(data) {
		lcid := data[off] & subheaderLCIDMsk

		// Padding has no length field and swallows the remainder.
		if lcid == LCIDPadding {
			subs = append(subs, SubPDU{LCID: lcid, SDU: data[off+1:]})
			return subs, nil
		}

		hdr := 2
		if data[off]&subheaderFlagF != 0 {
			hdr = 3
		}
		if off+hdr > len(data) {
			return nil, fmt.Errorf("%w: truncated sub-header at offset %d", ErrMalformedPDU, off)
		}

		var sduLen int
		if hdr == 3 {
			sduLen = int(binary.BigEndian.Uint16(data[off+1 : off+3]))
		} else {
			sduLen = int(data[off+1])
		}
		if off+hdr+sduLen > len(data) {
			return nil, fmt.Errorf("%w: lcid %d declares %d bytes, %d available",
				ErrMalformedPDU, lcid, sduLen, len(data)-off-hdr)
		}

		subs = append(subs, SubPDU{LCID: lcid, SDU: data[off+hdr : off+hdr+sduLen]})
		off += hdr + sduLen
	}
	return subs, nil
}
