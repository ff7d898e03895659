package model

import "time"

type TransactionEvidenceStatus string

const (
	TransactionEvidenceStatusWaitShipping TransactionEvidenceStatus = "wait_shipping"
	TransactionEvidenceStatusWaitDone     TransactionEvidenceStatus = "wait_done"
	TransactionEvidenceStatusDone         TransactionEvidenceStatus = "done"
)

// TransactionEvidence is the durable record of one purchase. The item
// fields are snapshotted at buy time so later edits to the listing do
// not rewrite history.
type TransactionEvidence struct {
	ID                 uint64                    `gorm:"primaryKey;autoIncrement"`
	SellerID           uint64                    `gorm:"column:seller_id;not null"`
	BuyerID            uint64                    `gorm:"column:buyer_id;not null"`
	Status             TransactionEvidenceStatus `gorm:"column:status;size:16;not null"`
	ItemID             uint64                    `gorm:"column:item_id;not null;uniqueIndex:uk_transaction_evidences_item_id"`
	ItemName           string                    `gorm:"column:item_name;size:191;not null"`
	ItemPrice          int                       `gorm:"column:item_price;not null"`
	ItemDescription    string                    `gorm:"column:item_description;type:text;not null"`
	ItemCategoryID     int                       `gorm:"column:item_category_id;not null"`
	ItemRootCategoryID int                       `gorm:"column:item_root_category_id;not null"`
	CreatedAt          time.Time                 `gorm:"autoCreateTime"`
	UpdatedAt          time.Time                 `gorm:"autoUpdateTime"`
}

func (TransactionEvidence) TableName() string {
	return "transaction_evidences"
}
