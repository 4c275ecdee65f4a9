package db

import "gorm.io/gorm"

// Testimonial 定义客户评价模型，可选关联到某个项目
type Testimonial struct {
	gorm.Model
	ClientName    string `gorm:"not null"`
	ClientTitle   string
	ClientCompany string
	ClientAvatar  string
	Content       string `gorm:"type:text;not null"`
	Rating        int    `gorm:"default:5"` // 1-5
	ProjectID     *uint
	Project       *Project
	IsFeatured    bool `gorm:"default:false"`
	IsPublished   bool `gorm:"default:false"`
	SortOrder     int  `gorm:"default:0"`
}
