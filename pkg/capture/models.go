package capture

import (
	"time"
)

// Direction of a captured transport block.
const (
	DirectionDownlink = "dl"
	DirectionUplink   = "ul"
)

// PDURecord is one captured transport block. Records are pure diagnostics;
// nothing in the MAC reads them back.
type PDURecord struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Direction string    `gorm:"index;size:2;not null" json:"direction"`
	Channel   string    `gorm:"index;size:8;not null" json:"channel"`
	RNTI      uint16    `gorm:"index" json:"rnti"`
	Slot      uint32    `gorm:"index;not null" json:"slot"`
	Length    int       `gorm:"not null" json:"length"`
	Payload   []byte    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the table name for PDURecord
func (PDURecord) TableName() string {
	return "pdu_records"
}
