package model

type Account struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"column:Username;uniqueIndex;size:100" json:"Username"`
	PasswordHash string `gorm:"column:password" json:"-"`
	Email        string `gorm:"column:Email;index;size:255" json:"Email"`
}

func (Account) TableName() string {
	return "account"
}

// Admin credentials are separate from accounts and carry a static bearer token.
type Admin struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Username     string `gorm:"column:username;uniqueIndex;size:100" json:"username"`
	PasswordHash string `gorm:"column:password" json:"-"`
	Token        string `gorm:"column:token;index;size:255" json:"-"`
}

func (Admin) TableName() string {
	return "Admin"
}
