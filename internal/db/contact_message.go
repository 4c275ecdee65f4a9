package db

import "gorm.io/gorm"

// ContactMessage 定义联系表单留言模型
type ContactMessage struct {
	gorm.Model
	Name    string `gorm:"not null"`
	Email   string `gorm:"not null"`
	Subject string
	Message string `gorm:"type:text;not null"`
	Status  string `gorm:"default:new"` // new, read, replied, archived
}
