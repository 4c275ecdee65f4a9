package db

import "gorm.io/gorm"

// User 定义后台管理员模型
type User struct {
	gorm.Model
	Username string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"not null"`
}
