package model

import "time"

// Rating is one user's comment and score for an establishment.
//
// EstablishmentName is the legacy join key. EstablishmentID is resolved from
// it at write time and stays nil for orphans until the reconcile job links them.
type Rating struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"column:username;index:idx_ratings_user_establishment" json:"username"`
	Comment           string    `gorm:"column:Comment;type:text" json:"Comment"`
	Score             int       `gorm:"column:Ratings" json:"Ratings"`
	RateDate          time.Time `gorm:"column:Rate_date" json:"Rate_date"`
	EstablishmentName string    `gorm:"column:feName;index:idx_ratings_user_establishment" json:"feName"`
	EstablishmentID   *uint     `gorm:"column:establishment_id;index" json:"establishment_id"`
}

func (Rating) TableName() string {
	return "ratings"
}
