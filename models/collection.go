package models

// Collection is the top-level merchandising grouping shown in the storefront navigation.
type Collection struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	Name       string     `gorm:"not null" json:"name"`
	Slug       string     `gorm:"not null" json:"slug"`
	Categories []Category `gorm:"foreignKey:CollectionID;constraint:OnDelete:CASCADE" json:"categories"`
}

func (c *Collection) TableName() string {
	return "collections"
}
