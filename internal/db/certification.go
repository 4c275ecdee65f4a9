package db

import (
	"time"

	"gorm.io/gorm"
)

// Certification 定义证书模型
// DoesNotExpire 为 true 时 ExpiryDate 必须为空
type Certification struct {
	gorm.Model
	Name                string `gorm:"not null"`
	IssuingOrganization string `gorm:"not null"`
	BadgeImage          string
	CredentialID        string
	CredentialURL       string
	IssueDate           time.Time
	ExpiryDate          *time.Time
	DoesNotExpire       bool `gorm:"default:false"`
	SortOrder           int  `gorm:"default:0"`
}
