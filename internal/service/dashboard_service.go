package service

import (
	"time"

	"github.com/devfolio/internal/db"
	"gorm.io/gorm"
)

// DashboardService 负责后台首页的聚合统计，每次请求即时计算。
type DashboardService struct {
	db *gorm.DB
}

// MonthlyCount 描述某个自然月内创建的项目数量。
type MonthlyCount struct {
	Month string // YYYY-MM
	Count int64
}

// DashboardStats 汇总后台首页展示的全部数据。
type DashboardStats struct {
	TotalProjects         int64
	PublishedProjects     int64
	FeaturedProjects      int64
	TotalViews            int64
	TotalMessages         int64
	NewMessages           int64
	TotalTestimonials     int64
	PublishedTestimonials int64
	RecentProjects        []db.Project
	RecentMessages        []db.ContactMessage
	TopProjects           []db.Project
	MonthlyProjects       []MonthlyCount
}

// NewDashboardService creates a DashboardService instance.
func NewDashboardService(gdb *gorm.DB) *DashboardService {
	return &DashboardService{db: gdb}
}

// Stats computes the dashboard aggregation for the given point in time.
func (s *DashboardService) Stats(now time.Time) (DashboardStats, error) {
	var stats DashboardStats

	projects := s.db.Model(&db.Project{})
	if err := projects.Count(&stats.TotalProjects).Error; err != nil {
		return stats, err
	}
	if err := s.db.Model(&db.Project{}).
		Where("is_published = ?", true).
		Count(&stats.PublishedProjects).Error; err != nil {
		return stats, err
	}
	if err := s.db.Model(&db.Project{}).
		Where("is_featured = ?", true).
		Count(&stats.FeaturedProjects).Error; err != nil {
		return stats, err
	}
	if err := s.db.Model(&db.Project{}).
		Select("COALESCE(SUM(views_count), 0)").
		Scan(&stats.TotalViews).Error; err != nil {
		return stats, err
	}

	if err := s.db.Model(&db.ContactMessage{}).Count(&stats.TotalMessages).Error; err != nil {
		return stats, err
	}
	if err := s.db.Model(&db.ContactMessage{}).
		Where("status = ?", ContactStatusNew).
		Count(&stats.NewMessages).Error; err != nil {
		return stats, err
	}

	if err := s.db.Model(&db.Testimonial{}).Count(&stats.TotalTestimonials).Error; err != nil {
		return stats, err
	}
	if err := s.db.Model(&db.Testimonial{}).
		Where("is_published = ?", true).
		Count(&stats.PublishedTestimonials).Error; err != nil {
		return stats, err
	}

	if err := s.db.Order("created_at desc").Order("id desc").
		Limit(5).
		Preload("Technologies").
		Find(&stats.RecentProjects).Error; err != nil {
		return stats, err
	}
	if err := s.db.Order("created_at desc").Order("id desc").
		Limit(5).
		Find(&stats.RecentMessages).Error; err != nil {
		return stats, err
	}
	if err := s.db.Order("views_count desc").Order("id asc").
		Limit(5).
		Find(&stats.TopProjects).Error; err != nil {
		return stats, err
	}

	monthly, err := s.monthlyProjectCounts(now)
	if err != nil {
		return stats, err
	}
	stats.MonthlyProjects = monthly

	return stats, nil
}

// monthlyProjectCounts 统计当前月及之前 5 个月的项目创建数，自旧到新排列。
func (s *DashboardService) monthlyProjectCounts(now time.Time) ([]MonthlyCount, error) {
	counts := make([]MonthlyCount, 0, 6)

	currentMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for offset := -5; offset <= 0; offset++ {
		start := currentMonth.AddDate(0, offset, 0)
		end := start.AddDate(0, 1, 0)

		var count int64
		if err := s.db.Model(&db.Project{}).
			Where("created_at >= ? AND created_at < ?", start, end).
			Count(&count).Error; err != nil {
			return nil, err
		}

		counts = append(counts, MonthlyCount{
			Month: start.Format("2006-01"),
			Count: count,
		})
	}

	return counts, nil
}
