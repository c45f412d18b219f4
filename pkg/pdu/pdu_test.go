package pdu

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuilder_SingleSDU(t *testing.T) {
	buf := make([]byte, 128)
	b := NewBuilder(buf, 128)

	payload := []byte("hello uplink")
	if err := b.AddSDU(4, payload); err != nil {
		t.Fatalf("AddSDU failed: %v", err)
	}

	// 2-byte sub-header plus payload
	if b.Len() != 2+len(payload) {
		t.Errorf("Expected length %d, got %d", 2+len(payload), b.Len())
	}

	out := b.Bytes()
	if out[0] != 4 {
		t.Errorf("Expected sub-header 0x04, got 0x%02X", out[0])
	}
	if int(out[1]) != len(payload) {
		t.Errorf("Expected L field %d, got %d", len(payload), out[1])
	}
	if !bytes.Equal(out[2:], payload) {
		t.Error("Payload mismatch in serialized form")
	}
}

func TestBuilder_LongSDU(t *testing.T) {
	payload := make([]byte, 300)
	for i := range payload {
		payload[i] = byte(i)
	}

	buf := make([]byte, 512)
	b := NewBuilder(buf, 512)
	if err := b.AddSDU(4, payload); err != nil {
		t.Fatalf("AddSDU failed: %v", err)
	}

	out := b.Bytes()
	// F bit set, 2-byte L field
	if out[0]&0x40 == 0 {
		t.Error("Expected F bit set for SDU > 255 bytes")
	}
	if out[0]&0x3F != 4 {
		t.Errorf("Expected LCID 4, got %d", out[0]&0x3F)
	}
	if got := int(out[1])<<8 | int(out[2]); got != 300 {
		t.Errorf("Expected L field 300, got %d", got)
	}
	if b.Len() != 3+300 {
		t.Errorf("Expected length %d, got %d", 3+300, b.Len())
	}
}

func TestBuilder_CapacityExceeded(t *testing.T) {
	buf := make([]byte, 16)
	b := NewBuilder(buf, 10)

	// 2-byte header + 9 bytes > 10 budget
	err := b.AddSDU(4, make([]byte, 9))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Expected ErrCapacityExceeded, got %v", err)
	}

	// Buffer must be left unchanged on rejection
	if b.Len() != 0 {
		t.Errorf("Expected no bytes written after rejection, got %d", b.Len())
	}

	// An SDU that fits exactly is accepted
	if err := b.AddSDU(4, make([]byte, 8)); err != nil {
		t.Fatalf("Exact-fit AddSDU failed: %v", err)
	}
	if b.Len() != 10 {
		t.Errorf("Expected 10 bytes written, got %d", b.Len())
	}
}

func TestBuilder_BudgetClampedToBuffer(t *testing.T) {
	buf := make([]byte, 8)
	b := NewBuilder(buf, 1024)

	err := b.AddSDU(4, make([]byte, 16))
	if !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("Expected ErrCapacityExceeded, got %v", err)
	}
}

func TestBuilder_RejectsReservedLCID(t *testing.T) {
	b := NewBuilder(make([]byte, 32), 32)
	if err := b.AddSDU(LCIDPadding, []byte{1}); err == nil {
		t.Error("Expected error for padding LCID")
	}
}

func TestParse_Empty(t *testing.T) {
	subs, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse of empty input failed: %v", err)
	}
	if len(subs) != 0 {
		t.Errorf("Expected no sub-PDUs, got %d", len(subs))
	}
}

func TestParse_RoundTrip(t *testing.T) {
	pairs := []struct {
		lcid uint8
		sdu  []byte
	}{
		{1, []byte("first")},
		{4, []byte("the second sdu, a little longer")},
		{32, bytes.Repeat([]byte{0xAB}, 300)},
		{5, []byte{}},
	}

	buf := make([]byte, 1024)
	b := NewBuilder(buf, 1024)
	for _, p := range pairs {
		if err := b.AddSDU(p.lcid, p.sdu); err != nil {
			t.Fatalf("AddSDU(lcid=%d) failed: %v", p.lcid, err)
		}
	}

	subs, err := Parse(b.Bytes())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(subs) != len(pairs) {
		t.Fatalf("Expected %d sub-PDUs, got %d", len(pairs), len(subs))
	}
	for i, p := range pairs {
		if subs[i].LCID != p.lcid {
			t.Errorf("sub-PDU %d: expected LCID %d, got %d", i, p.lcid, subs[i].LCID)
		}
		if !bytes.Equal(subs[i].SDU, p.sdu) {
			t.Errorf("sub-PDU %d: SDU mismatch", i)
		}
	}
}

func TestParse_SDUAliasesInput(t *testing.T) {
	b := NewBuilder(make([]byte, 64), 64)
	if err := b.AddSDU(4, []byte{1, 2, 3}); err != nil {
		t.Fatalf("AddSDU failed: %v", err)
	}
	data := b.Bytes()

	subs, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	// Mutating the backing buffer must be visible through the SDU view.
	data[2] = 0x77
	if subs[0].SDU[0] != 0x77 {
		t.Error("Expected SDU to alias the parsed buffer")
	}
}

func TestParse_Padding(t *testing.T) {
	// One data sub-PDU followed by a padding sub-header and filler bytes.
	data := []byte{4, 2, 0xAA, 0xBB, 0x3F, 0, 0, 0}

	subs, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("Expected 2 sub-PDUs, got %d", len(subs))
	}
	if subs[0].LCID != 4 || !bytes.Equal(subs[0].SDU, []byte{0xAA, 0xBB}) {
		t.Error("Data sub-PDU mismatch")
	}
	if !subs[1].IsPadding() {
		t.Error("Expected second sub-PDU to be padding")
	}
	if len(subs[1].SDU) != 3 {
		t.Errorf("Expected padding to consume 3 remaining bytes, got %d", len(subs[1].SDU))
	}
}

func TestParse_PaddingOnly(t *testing.T) {
	subs, err := Parse([]byte{0x3F})
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(subs) != 1 || !subs[0].IsPadding() || len(subs[0].SDU) != 0 {
		t.Errorf("Expected a single empty padding sub-PDU, got %+v", subs)
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"Truncated short sub-header", []byte{4}},
		{"Truncated long sub-header", []byte{0x40 | 4, 0x01}},
		{"Length overruns buffer", []byte{4, 10, 1, 2, 3}},
		{"Long length overruns buffer", []byte{0x40 | 4, 0x01, 0x00, 1, 2}},
		{"Second sub-PDU overruns", []byte{4, 1, 0xAA, 5, 200, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.data)
			if !errors.Is(err, ErrMalformedPDU) {
				t.Errorf("Expected ErrMalformedPDU, got %v", err)
			}
		})
	}
}
