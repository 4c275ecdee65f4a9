package service

import (
	"testing"
	"time"

	"github.com/devfolio/internal/db"
)

func TestDashboardStats(t *testing.T) {
	gdb := setupTestDB(t)
	files := newTestStore(t)
	svc := NewDashboardService(gdb)
	projects := NewProjectService(gdb, files)
	contacts := NewContactService(gdb)
	testimonials := NewTestimonialService(gdb, files)

	published, err := projects.Create(ProjectInput{Title: "Alpha", IsPublished: boolPtr(true), IsFeatured: boolPtr(true)})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}
	if _, err := projects.Create(ProjectInput{Title: "Beta"}); err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}

	for i := 0; i < 4; i++ {
		if err := projects.IncrementViews(published.ID); err != nil {
			t.Fatalf("累计浏览失败: %v", err)
		}
	}

	msg, err := contacts.Create(ContactInput{Name: "A", Email: "a@b.com", Message: "hi"})
	if err != nil {
		t.Fatalf("创建留言失败: %v", err)
	}
	if _, err := contacts.Create(ContactInput{Name: "B", Email: "b@b.com", Message: "yo"}); err != nil {
		t.Fatalf("创建留言失败: %v", err)
	}
	if _, err := contacts.MarkRead(msg.ID); err != nil {
		t.Fatalf("标记已读失败: %v", err)
	}

	if _, err := testimonials.Create(TestimonialInput{ClientName: "C", Content: "好", Rating: 5, IsPublished: boolPtr(true)}); err != nil {
		t.Fatalf("创建评价失败: %v", err)
	}
	if _, err := testimonials.Create(TestimonialInput{ClientName: "D", Content: "待审", Rating: 4}); err != nil {
		t.Fatalf("创建评价失败: %v", err)
	}

	stats, err := svc.Stats(time.Now())
	if err != nil {
		t.Fatalf("计算统计失败: %v", err)
	}

	if stats.TotalProjects != 2 || stats.PublishedProjects != 1 || stats.FeaturedProjects != 1 {
		t.Errorf("项目计数不符合预期: %+v", stats)
	}
	if stats.TotalViews != 4 {
		t.Errorf("总浏览数 = %d，期望 4", stats.TotalViews)
	}
	if stats.TotalMessages != 2 || stats.NewMessages != 1 {
		t.Errorf("留言计数不符合预期: total=%d new=%d", stats.TotalMessages, stats.NewMessages)
	}
	if stats.TotalTestimonials != 2 || stats.PublishedTestimonials != 1 {
		t.Errorf("评价计数不符合预期: total=%d published=%d", stats.TotalTestimonials, stats.PublishedTestimonials)
	}
	if len(stats.RecentProjects) != 2 || len(stats.RecentMessages) != 2 {
		t.Errorf("最近列表长度不符合预期: projects=%d messages=%d", len(stats.RecentProjects), len(stats.RecentMessages))
	}
	if len(stats.TopProjects) == 0 || stats.TopProjects[0].ID != published.ID {
		t.Errorf("浏览量排行第一应为 %d: %+v", published.ID, stats.TopProjects)
	}
}

func TestDashboardMonthlyHistogram(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewDashboardService(gdb)

	now := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)

	seed := []struct {
		title   string
		created time.Time
	}{
		{"this-month", time.Date(2026, time.August, 3, 0, 0, 0, 0, time.UTC)},
		{"also-this-month", time.Date(2026, time.August, 20, 0, 0, 0, 0, time.UTC)},
		{"two-back", time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)},
		{"window-edge", time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)},
		{"out-of-window", time.Date(2026, time.February, 27, 0, 0, 0, 0, time.UTC)},
	}
	for _, row := range seed {
		project := db.Project{Title: row.title, Slug: row.title}
		project.CreatedAt = row.created
		if err := gdb.Create(&project).Error; err != nil {
			t.Fatalf("写入项目失败: %v", err)
		}
	}

	stats, err := svc.Stats(now)
	if err != nil {
		t.Fatalf("计算统计失败: %v", err)
	}

	monthly := stats.MonthlyProjects
	if len(monthly) != 6 {
		t.Fatalf("月度直方图长度 = %d，期望 6", len(monthly))
	}
	if monthly[0].Month != "2026-03" || monthly[5].Month != "2026-08" {
		t.Errorf("月份范围不符合预期: 首=%q 尾=%q", monthly[0].Month, monthly[5].Month)
	}

	want := map[string]int64{
		"2026-03": 1,
		"2026-04": 0,
		"2026-05": 0,
		"2026-06": 1,
		"2026-07": 0,
		"2026-08": 2,
	}
	for _, entry := range monthly {
		if entry.Count != want[entry.Month] {
			t.Errorf("%s 的计数 = %d，期望 %d", entry.Month, entry.Count, want[entry.Month])
		}
	}
}
