package model

import "time"

type ItemStatus string

const (
	ItemStatusOnSale  ItemStatus = "on_sale"
	ItemStatusTrading ItemStatus = "trading"
	ItemStatusSoldOut ItemStatus = "sold_out"
	ItemStatusStop    ItemStatus = "stop"
	ItemStatusCancel  ItemStatus = "cancel"
)

const (
	ItemMinPrice = 100
	ItemMaxPrice = 1000000

	ItemPriceErrMsg = "商品価格は100ｲｽｺｲﾝ以上、1,000,000ｲｽｺｲﾝ以下にしてください"
)

type Item struct {
	ID          uint64     `gorm:"primaryKey;autoIncrement"`
	SellerID    uint64     `gorm:"column:seller_id;index;not null"`
	BuyerID     uint64     `gorm:"column:buyer_id;not null;default:0"`
	Status      ItemStatus `gorm:"column:status;size:16;not null"`
	Name        string     `gorm:"column:name;size:191;not null"`
	Price       int        `gorm:"column:price;not null"`
	Description string     `gorm:"column:description;type:text;not null"`
	ImageName   string     `gorm:"column:image_name;size:191;not null"`
	CategoryID  int        `gorm:"column:category_id;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;index"`
	UpdatedAt   time.Time  `gorm:"autoUpdateTime"`
}

func (Item) TableName() string {
	return "items"
}
