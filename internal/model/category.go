package model

type Category struct {
	ID                 int    `gorm:"primaryKey" json:"id"`
	ParentID           int    `gorm:"column:parent_id;not null;default:0" json:"parent_id"`
	CategoryName       string `gorm:"column:category_name;size:191;not null" json:"category_name"`
	ParentCategoryName string `gorm:"-" json:"parent_category_name,omitempty"`
}

func (Category) TableName() string {
	return "categories"
}

// IsRoot reports whether the category is a top-level one. Listings may
// only be filed under leaf categories; category-scoped listing pages
// are keyed by root categories.
func (c *Category) IsRoot() bool {
	return c.ParentID == 0
}
