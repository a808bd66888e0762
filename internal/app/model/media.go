package model

// Picture is a gallery image of an establishment (legacy "fepic").
type Picture struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	EstablishmentName string `gorm:"column:feName;index" json:"feName"`
	Image             string `gorm:"column:image1" json:"image1"`
	EstablishmentID   *uint  `gorm:"column:establishment_id;index" json:"establishment_id"`
}

func (Picture) TableName() string {
	return "fepic"
}

// Menu is a menu image of an establishment (legacy "femenu").
type Menu struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	EstablishmentName string `gorm:"column:feName;index" json:"feName"`
	Image             string `gorm:"column:menu" json:"menu"`
	EstablishmentID   *uint  `gorm:"column:establishment_id;index" json:"establishment_id"`
}

func (Menu) TableName() string {
	return "femenu"
}

// Cuisine tags an establishment with a food type (legacy "types").
type Cuisine struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	EstablishmentName string `gorm:"column:feName;index" json:"feName"`
	Type              string `gorm:"column:type" json:"type"`
	EstablishmentID   *uint  `gorm:"column:establishment_id;index" json:"establishment_id"`
}

func (Cuisine) TableName() string {
	return "types"
}
