package model

// Config is a name/value pair in the configs table. The bootstrap
// operation upserts the external service base URLs here so they can be
// swapped at runtime without a restart.
type Config struct {
	Name string `gorm:"primaryKey;size:191"`
	Val  string `gorm:"column:val;size:255;not null"`
}

func (Config) TableName() string {
	return "configs"
}

const (
	ConfigPaymentServiceURL  = "payment_service_url"
	ConfigShipmentServiceURL = "shipment_service_url"
)
