package db

import "gorm.io/gorm"

// Technology 定义技术栈模型，与项目多对多关联
type Technology struct {
	gorm.Model
	Name        string `gorm:"not null"`
	Slug        string `gorm:"uniqueIndex;not null"`
	Type        string // language, framework, database, tool, other
	Color       string
	Proficiency int  `gorm:"default:0"` // 0-100
	IsFeatured  bool `gorm:"default:false"`
	SortOrder   int  `gorm:"default:0"`
	Projects    []Project `gorm:"many2many:project_technologies;"`
}
