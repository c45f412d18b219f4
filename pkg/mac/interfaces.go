package mac

// MaxTxPDUs bounds the number of transport blocks one slot may carry.
const MaxTxPDUs = 8

// TxPDU describes one transport block scheduled for a slot. Data borrows
// the bytes it points at; the reference is only valid until the radio
// driver returns from TxRequest.
type TxPDU struct {
	Index      int
	MIBPresent bool
	Data       []byte
	Length     int
}

// TxRequest carries the ordered transport blocks for one slot.
type TxRequest struct {
	Slot    uint32
	PDUs    [MaxTxPDUs]TxPDU
	NofPDUs int
}

// Append adds one transport block descriptor. It reports false when the
// per-slot capacity is already exhausted.
func (r *TxRequest) Append(data []byte, mibPresent bool) bool {
	if r.NofPDUs >= MaxTxPDUs {
		return false
	}
	r.PDUs[r.NofPDUs] = TxPDU{
		Index:      r.NofPDUs,
		MIBPresent: mibPresent,
		Data:       data,
		Length:     len(data),
	}
	r.NofPDUs++
	return true
}

// DLConfigRequest carries the downlink control parameters for one slot.
type DLConfigRequest struct {
	Slot uint32
}

// DLSched and ULSched are placeholder scheduling results. Resource-block
// allocation is an external collaborator contract; the MAC only assembles
// bytes once a decision is handed to it.
type DLSched struct {
	Slot uint32
}

// ULSched is the uplink counterpart of DLSched.
type ULSched struct {
	Slot uint32
}

// PUCCHInfo carries decoded uplink control channel feedback from the PHY.
type PUCCHInfo struct {
	Slot uint32
	RNTI uint16
}

// PUSCHInfo carries decoded uplink shared channel feedback from the PHY.
type PUSCHInfo struct {
	Slot uint32
	RNTI uint16
}

// PHY is the radio driver surface the MAC drives once per slot.
type PHY interface {
	DLConfigRequest(req *DLConfigRequest) error
	TxRequest(req *TxRequest) error
}

// RRC supplies broadcast payload bytes from the upper protocol layer.
type RRC interface {
	// ReadBCCHBCH returns the primary broadcast (MIB) payload for a slot.
	ReadBCCHBCH(slot uint32) ([]byte, error)
	// ReadBCCHDLSCH returns the system information payload for one SIB index.
	ReadBCCHDLSCH(index int) ([]byte, error)
}

// RLC produces downlink link-layer bytes and consumes decoded uplink SDUs.
type RLC interface {
	// ReadPDU fills buf with up to len(buf) bytes for the given identity and
	// logical channel, returning the byte count (0 or negative when nothing
	// is pending).
	ReadPDU(rnti uint16, lcid uint8, buf []byte) int
	// WritePDU delivers one decoded uplink SDU. Fire-and-forget.
	WritePDU(rnti uint16, lcid uint8, sdu []byte)
}

// Stack is notified, without blocking, that uplink data is queued.
type Stack interface {
	NotifyPDUs()
}

// Trace channel labels passed to the optional Recorder.
const (
	TraceBCH   = "bch"
	TraceSI    = "si"
	TraceDLSCH = "dlsch"
	TraceULSCH = "ulsch"
)

// Recorder observes raw transport blocks for diagnostics. Implementations
// must not block; recording never affects control flow.
type Recorder interface {
	RecordDownlink(channel string, rnti uint16, slot uint32, data []byte)
	RecordUplink(rnti uint16, slot uint32, data []byte)
}
