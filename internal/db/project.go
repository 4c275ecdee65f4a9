package db

import (
	"time"

	"gorm.io/gorm"
)

// Project 定义作品集项目模型
type Project struct {
	gorm.Model
	Title         string `gorm:"not null"`
	Slug          string `gorm:"uniqueIndex;not null"`
	Description   string
	Content       string   `gorm:"type:text"`
	FeaturedImage string
	Thumbnail     string
	Gallery       []string `gorm:"serializer:json"`
	Status        string   `gorm:"default:draft"` // draft, in_progress, completed, archived
	IsFeatured    bool     `gorm:"default:false"`
	IsPublished   bool     `gorm:"default:false"`
	PublishedAt   *time.Time
	ViewsCount    uint `gorm:"default:0"`
	LikesCount    uint `gorm:"default:0"`
	SortOrder     int  `gorm:"default:0"`
	UserID        uint
	User          User
	Technologies  []Technology     `gorm:"many2many:project_technologies;"`
	Features      []ProjectFeature `gorm:"constraint:OnDelete:CASCADE"`
}

// ProjectFeature 描述项目的单条亮点，按 SortOrder 展示
type ProjectFeature struct {
	gorm.Model
	ProjectID   uint   `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Description string
	SortOrder   int `gorm:"default:0"`
}
