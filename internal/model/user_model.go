package model

type User struct {
	Id             int64  `gorm:"primaryKey;autoIncrement"`
	Name           string `gorm:"type:varchar(255);not null"`
	Email          string `gorm:"type:varchar(255);not null;uniqueIndex"`
	HashedPassword string `gorm:"type:varchar(255);not null"`
}

func (User) TableName() string {
	return "users"
}
