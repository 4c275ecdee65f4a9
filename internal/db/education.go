package db

import (
	"time"

	"gorm.io/gorm"
)

// Education 定义教育经历模型，与 Experience 共享进行中/结束时间规则
type Education struct {
	gorm.Model
	Degree          string `gorm:"not null"`
	Institution     string `gorm:"not null"`
	InstitutionLogo string
	FieldOfStudy    string
	Description     string
	StartDate       time.Time
	EndDate         *time.Time
	IsCurrent       bool `gorm:"default:false"`
	SortOrder       int  `gorm:"default:0"`
}
