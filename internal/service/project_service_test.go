package service

import (
	"errors"
	"mime/multipart"
	"testing"
)

func TestProjectCreateDefaults(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewProjectService(gdb, newTestStore(t))

	item, err := svc.Create(ProjectInput{Title: "Portfolio Site"})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}

	if item.Slug != "portfolio-site" {
		t.Errorf("slug = %q，期望 portfolio-site", item.Slug)
	}
	if item.Status != ProjectStatusDraft {
		t.Errorf("status = %q，期望默认 draft", item.Status)
	}
	if item.IsPublished || item.PublishedAt != nil {
		t.Error("新建项目默认不应发布")
	}
	if item.SortOrder != 1 {
		t.Errorf("sort order = %d，期望 1", item.SortOrder)
	}
}

func TestProjectCreateValidation(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewProjectService(gdb, newTestStore(t))

	if _, err := svc.Create(ProjectInput{Title: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("空标题期望 ErrInvalidInput，实际 %v", err)
	}
	if _, err := svc.Create(ProjectInput{Title: "X", Status: "bogus"}); !errors.Is(err, ErrProjectStatusInvalid) {
		t.Errorf("非法状态期望 ErrProjectStatusInvalid，实际 %v", err)
	}
	if _, err := svc.Create(ProjectInput{Title: "X", TechnologyIDs: []uint{999}}); !errors.Is(err, ErrTechnologyRefInvalid) {
		t.Errorf("未知技术引用期望 ErrTechnologyRefInvalid，实际 %v", err)
	}

	if _, err := svc.Create(ProjectInput{Title: "Same"}); err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}
	if _, err := svc.Create(ProjectInput{Title: "Same"}); !errors.Is(err, ErrProjectSlugTaken) {
		t.Errorf("重复 slug 期望 ErrProjectSlugTaken，实际 %v", err)
	}
}

func TestProjectCreatePublishedSetsTimestamp(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewProjectService(gdb, newTestStore(t))

	item, err := svc.Create(ProjectInput{Title: "Launch", IsPublished: boolPtr(true)})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}
	if !item.IsPublished || item.PublishedAt == nil {
		t.Error("显式发布的项目应带有发布时间")
	}
}

func TestProjectTogglePublished(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewProjectService(gdb, newTestStore(t))

	item, err := svc.Create(ProjectInput{Title: "Toggle Me"})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}

	published, err := svc.TogglePublished(item.ID)
	if err != nil {
		t.Fatalf("切换发布状态失败: %v", err)
	}
	if !published.IsPublished || published.PublishedAt == nil {
		t.Fatal("发布后应记录发布时间")
	}

	unpublished, err := svc.TogglePublished(item.ID)
	if err != nil {
		t.Fatalf("切换发布状态失败: %v", err)
	}
	if unpublished.IsPublished || unpublished.PublishedAt != nil {
		t.Error("取消发布后发布时间应清空")
	}
}

func TestProjectTechnologyAssociations(t *testing.T) {
	gdb := setupTestDB(t)
	files := newTestStore(t)
	techs := NewTechnologyService(gdb)
	svc := NewProjectService(gdb, files)

	golang, err := techs.Create(TechnologyInput{Name: "Go"})
	if err != nil {
		t.Fatalf("创建技术失败: %v", err)
	}
	vue, err := techs.Create(TechnologyInput{Name: "Vue"})
	if err != nil {
		t.Fatalf("创建技术失败: %v", err)
	}

	item, err := svc.Create(ProjectInput{
		Title:         "Fullstack App",
		TechnologyIDs: []uint{golang.ID, vue.ID},
	})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}
	if len(item.Technologies) != 2 {
		t.Fatalf("关联技术数 = %d，期望 2", len(item.Technologies))
	}

	// nil 表示保持既有关联
	item, err = svc.Update(item.ID, ProjectInput{Title: "Fullstack App", TechnologyIDs: nil})
	if err != nil {
		t.Fatalf("更新项目失败: %v", err)
	}
	if len(item.Technologies) != 2 {
		t.Errorf("nil 更新后关联技术数 = %d，期望保持 2", len(item.Technologies))
	}

	// 空切片清除全部关联
	item, err = svc.Update(item.ID, ProjectInput{Title: "Fullstack App", TechnologyIDs: []uint{}})
	if err != nil {
		t.Fatalf("更新项目失败: %v", err)
	}
	if len(item.Technologies) != 0 {
		t.Errorf("空切片更新后关联技术数 = %d，期望 0", len(item.Technologies))
	}
}

func TestProjectFeaturesReplace(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewProjectService(gdb, newTestStore(t))

	item, err := svc.Create(ProjectInput{
		Title: "Feature Rich",
		Features: []ProjectFeatureInput{
			{Title: "Realtime sync"},
			{Title: "Offline mode"},
		},
	})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}
	if len(item.Features) != 2 {
		t.Fatalf("亮点数 = %d，期望 2", len(item.Features))
	}

	item, err = svc.Update(item.ID, ProjectInput{
		Title: "Feature Rich",
		Features: []ProjectFeatureInput{
			{Title: "Dark theme", Description: "system aware"},
		},
	})
	if err != nil {
		t.Fatalf("更新项目失败: %v", err)
	}
	if len(item.Features) != 1 || item.Features[0].Title != "Dark theme" {
		t.Errorf("亮点整体替换结果不符合预期: %+v", item.Features)
	}

	// nil 表示保持不变
	item, err = svc.Update(item.ID, ProjectInput{Title: "Feature Rich"})
	if err != nil {
		t.Fatalf("更新项目失败: %v", err)
	}
	if len(item.Features) != 1 {
		t.Errorf("nil 更新后亮点数 = %d，期望保持 1", len(item.Features))
	}
}

func TestProjectImageLifecycle(t *testing.T) {
	gdb := setupTestDB(t)
	files := newTestStore(t)
	svc := NewProjectService(gdb, files)

	item, err := svc.Create(ProjectInput{
		Title:         "Gallery App",
		FeaturedImage: ImagePatch{File: pngFileHeader(t, "cover.png", 800, 600)},
	})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}
	if item.FeaturedImage == "" || !files.Exists(item.FeaturedImage) {
		t.Fatal("主图应已保存")
	}
	if item.Thumbnail == "" || !files.Exists(item.Thumbnail) {
		t.Fatal("应自动派生缩略图")
	}
	if item.Thumbnail == item.FeaturedImage {
		t.Error("缩略图应是独立文件")
	}

	oldFeatured := item.FeaturedImage

	// 替换主图：新文件就位后旧文件删除
	item, err = svc.Update(item.ID, ProjectInput{
		Title:         "Gallery App",
		FeaturedImage: ImagePatch{File: pngFileHeader(t, "cover2.png", 640, 480)},
	})
	if err != nil {
		t.Fatalf("更新项目失败: %v", err)
	}
	if item.FeaturedImage == oldFeatured {
		t.Error("主图 key 应已更新")
	}
	if files.Exists(oldFeatured) {
		t.Error("旧主图文件应已删除")
	}
	if !files.Exists(item.FeaturedImage) {
		t.Error("新主图文件应存在")
	}

	// 显式移除
	current := item.FeaturedImage
	item, err = svc.Update(item.ID, ProjectInput{
		Title:         "Gallery App",
		FeaturedImage: ImagePatch{Remove: true},
	})
	if err != nil {
		t.Fatalf("更新项目失败: %v", err)
	}
	if item.FeaturedImage != "" {
		t.Errorf("移除后主图字段应为空，实际 %q", item.FeaturedImage)
	}
	if files.Exists(current) {
		t.Error("移除后主图文件应已删除")
	}
}

func TestProjectGallery(t *testing.T) {
	gdb := setupTestDB(t)
	files := newTestStore(t)
	svc := NewProjectService(gdb, files)

	item, err := svc.Create(ProjectInput{Title: "Screens"})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}

	item, err = svc.Update(item.ID, ProjectInput{
		Title: "Screens",
		GalleryAdd: []*multipart.FileHeader{
			pngFileHeader(t, "one.png", 64, 64),
			pngFileHeader(t, "two.png", 64, 64),
		},
	})
	if err != nil {
		t.Fatalf("更新项目失败: %v", err)
	}
	if len(item.Gallery) != 2 {
		t.Fatalf("画廊数 = %d，期望 2", len(item.Gallery))
	}

	removed := item.Gallery[0]
	item, err = svc.Update(item.ID, ProjectInput{
		Title:         "Screens",
		GalleryRemove: []string{removed},
	})
	if err != nil {
		t.Fatalf("更新项目失败: %v", err)
	}
	if len(item.Gallery) != 1 {
		t.Errorf("移除后画廊数 = %d，期望 1", len(item.Gallery))
	}
	if files.Exists(removed) {
		t.Error("移除的画廊文件应已删除")
	}
}

func TestProjectDeleteRemovesFiles(t *testing.T) {
	gdb := setupTestDB(t)
	files := newTestStore(t)
	svc := NewProjectService(gdb, files)

	item, err := svc.Create(ProjectInput{
		Title:         "Ephemeral",
		FeaturedImage: ImagePatch{File: pngFileHeader(t, "cover.png", 320, 240)},
		GalleryAdd:    []*multipart.FileHeader{pngFileHeader(t, "shot.png", 64, 64)},
	})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}

	keys := append([]string{item.FeaturedImage, item.Thumbnail}, item.Gallery...)

	if err := svc.Delete(item.ID); err != nil {
		t.Fatalf("删除项目失败: %v", err)
	}
	if _, err := svc.Get(item.ID); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("删除后期望 ErrProjectNotFound，实际 %v", err)
	}
	for _, key := range keys {
		if key != "" && files.Exists(key) {
			t.Errorf("文件 %q 应随项目一并删除", key)
		}
	}
}

func TestProjectPublicQueries(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewProjectService(gdb, newTestStore(t))

	draft, err := svc.Create(ProjectInput{Title: "Hidden"})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}
	published, err := svc.Create(ProjectInput{Title: "Visible", IsPublished: boolPtr(true)})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}

	if _, err := svc.GetPublishedBySlug(draft.Slug); !errors.Is(err, ErrProjectNotFound) {
		t.Errorf("草稿不应出现在公开查询中，实际 %v", err)
	}
	got, err := svc.GetPublishedBySlug(published.Slug)
	if err != nil {
		t.Fatalf("公开查询失败: %v", err)
	}
	if got.ID != published.ID {
		t.Errorf("查询到的项目 ID = %d，期望 %d", got.ID, published.ID)
	}

	result, err := svc.ListPublished(ProjectFilter{})
	if err != nil {
		t.Fatalf("获取公开列表失败: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 {
		t.Errorf("公开列表应只含 1 条，实际 total=%d len=%d", result.Total, len(result.Items))
	}
}

func TestProjectIncrementCounters(t *testing.T) {
	gdb := setupTestDB(t)
	svc := NewProjectService(gdb, newTestStore(t))

	item, err := svc.Create(ProjectInput{Title: "Counted"})
	if err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := svc.IncrementViews(item.ID); err != nil {
			t.Fatalf("累计浏览失败: %v", err)
		}
	}
	if err := svc.IncrementLikes(item.ID); err != nil {
		t.Fatalf("累计点赞失败: %v", err)
	}

	got, err := svc.Get(item.ID)
	if err != nil {
		t.Fatalf("获取项目失败: %v", err)
	}
	if got.ViewsCount != 3 {
		t.Errorf("views = %d，期望 3", got.ViewsCount)
	}
	if got.LikesCount != 1 {
		t.Errorf("likes = %d，期望 1", got.LikesCount)
	}
}

func TestProjectListFilters(t *testing.T) {
	gdb := setupTestDB(t)
	files := newTestStore(t)
	techs := NewTechnologyService(gdb)
	svc := NewProjectService(gdb, files)

	golang, err := techs.Create(TechnologyInput{Name: "Go"})
	if err != nil {
		t.Fatalf("创建技术失败: %v", err)
	}

	if _, err := svc.Create(ProjectInput{Title: "Go Service", Status: ProjectStatusCompleted, TechnologyIDs: []uint{golang.ID}}); err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}
	if _, err := svc.Create(ProjectInput{Title: "Design Study", Status: ProjectStatusInProgress}); err != nil {
		t.Fatalf("创建项目失败: %v", err)
	}

	byStatus, err := svc.List(ProjectFilter{Status: ProjectStatusCompleted})
	if err != nil {
		t.Fatalf("按状态过滤失败: %v", err)
	}
	if byStatus.Total != 1 {
		t.Errorf("按状态过滤 total = %d，期望 1", byStatus.Total)
	}

	byTech, err := svc.List(ProjectFilter{TechnologyID: golang.ID})
	if err != nil {
		t.Fatalf("按技术过滤失败: %v", err)
	}
	if byTech.Total != 1 || byTech.Items[0].Title != "Go Service" {
		t.Errorf("按技术过滤结果不符合预期: %+v", byTech.Items)
	}

	bySearch, err := svc.List(ProjectFilter{Search: "design"})
	if err != nil {
		t.Fatalf("按关键字过滤失败: %v", err)
	}
	if bySearch.Total != 1 || bySearch.Items[0].Title != "Design Study" {
		t.Errorf("按关键字过滤结果不符合预期: %+v", bySearch.Items)
	}
}
