package db

import (
	"time"

	"gorm.io/gorm"
)

// Experience 定义工作经历模型
// IsCurrent 为 true 时 EndDate 必须为空
type Experience struct {
	gorm.Model
	Title            string `gorm:"not null"`
	Company          string `gorm:"not null"`
	CompanyLogo      string
	Location         string
	Responsibilities []string `gorm:"serializer:json"`
	Achievements     []string `gorm:"serializer:json"`
	StartDate        time.Time
	EndDate          *time.Time
	IsCurrent        bool `gorm:"default:false"`
	SortOrder        int  `gorm:"default:0"`
}
