package model

import "time"

type ShippingStatus string

const (
	ShippingStatusInitial    ShippingStatus = "initial"
	ShippingStatusWaitPickup ShippingStatus = "wait_pickup"
	ShippingStatusShipping   ShippingStatus = "shipping"
	ShippingStatusDone       ShippingStatus = "done"
)

// Shipping is the courier reservation tied 1:1 to a TransactionEvidence.
// Beyond initial, the external shipment service is the source of truth
// for the in-flight status; the stored value is only authoritative at
// rest.
type Shipping struct {
	TransactionEvidenceID uint64         `gorm:"column:transaction_evidence_id;primaryKey"`
	Status                ShippingStatus `gorm:"column:status;size:16;not null"`
	ItemName              string         `gorm:"column:item_name;size:191;not null"`
	ItemID                uint64         `gorm:"column:item_id;not null"`
	ReserveID             string         `gorm:"column:reserve_id;size:191;not null"`
	ReserveTime           int64          `gorm:"column:reserve_time;not null"`
	ToAddress             string         `gorm:"column:to_address;size:191;not null"`
	ToName                string         `gorm:"column:to_name;size:191;not null"`
	FromAddress           string         `gorm:"column:from_address;size:191;not null"`
	FromName              string         `gorm:"column:from_name;size:191;not null"`
	ImgBinary             []byte         `gorm:"column:img_binary;type:mediumblob"`
	CreatedAt             time.Time      `gorm:"autoCreateTime"`
	UpdatedAt             time.Time      `gorm:"autoUpdateTime"`
}

func (Shipping) TableName() string {
	return "shippings"
}
