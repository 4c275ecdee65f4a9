package db

import "gorm.io/gorm"

// Skill 定义技能模型，按 Category 分组展示
type Skill struct {
	gorm.Model
	Name            string `gorm:"not null"`
	Category        string `gorm:"index"`
	YearsExperience int    `gorm:"default:0"`
	Level           int    `gorm:"default:0"` // 0-100
	IsHighlighted   bool   `gorm:"default:false"`
	SortOrder       int    `gorm:"default:0"`
}
