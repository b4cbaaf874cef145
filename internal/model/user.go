package model

// User is a console login account
type User struct {
	BaseModel
	Username     string `gorm:"type:varchar(64);uniqueIndex:uk_users_username;not null" json:"username"`
	PasswordHash string `gorm:"type:varchar(255);not null" json:"-"`
	Role         string `gorm:"type:enum('admin','viewer');default:'admin'" json:"role"`
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
