package model

// Favorite is a bookmark. Type, barangay and logo are copied from the
// establishment when it is saved and are not refreshed afterwards.
type Favorite struct {
	ID                uint   `gorm:"primaryKey" json:"id"`
	Username          string `gorm:"column:username;index" json:"username"`
	EstablishmentName string `gorm:"column:feName;index" json:"feName"`
	Type              string `gorm:"column:feType" json:"feType"`
	Barangay          string `gorm:"column:barangay" json:"barangay"`
	Logo              string `gorm:"column:logo" json:"logo"`
	EstablishmentID   *uint  `gorm:"column:establishment_id;index" json:"establishment_id"`
}

func (Favorite) TableName() string {
	return "myfavorites"
}
