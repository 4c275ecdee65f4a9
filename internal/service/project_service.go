package service

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"github.com/devfolio/internal/db"
	"github.com/devfolio/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound      = errors.New("project not found")
	ErrProjectSlugTaken     = errors.New("project slug already exists")
	ErrProjectStatusInvalid = errors.New("project status is invalid")
	ErrTechnologyRefInvalid = errors.New("referenced technology does not exist")
)

// 项目状态集合
const (
	ProjectStatusDraft      = "draft"
	ProjectStatusInProgress = "in_progress"
	ProjectStatusCompleted  = "completed"
	ProjectStatusArchived   = "archived"
)

// ProjectService wraps project related database and file operations.
type ProjectService struct {
	db    *gorm.DB
	files *storage.Store
}

// ProjectFilter describes filters for listing projects.
type ProjectFilter struct {
	Search       string
	Status       string
	TechnologyID uint
	Featured     *bool
	Published    *bool
	OrderBy      string
	OrderDesc    bool
	Page         int
	PerPage      int
}

// ProjectListResult aggregates paginated project results.
type ProjectListResult struct {
	Items      []db.Project
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// ProjectFeatureInput 描述项目亮点条目。
type ProjectFeatureInput struct {
	Title       string
	Description string
}

// ProjectInput represents fields accepted when creating or updating a project.
// TechnologyIDs 与 Features 为 nil 时表示保持既有关联不变。
type ProjectInput struct {
	Title         string
	Slug          string
	Description   string
	Content       string
	Status        string
	UserID        uint
	TechnologyIDs []uint
	Features      []ProjectFeatureInput
	IsFeatured    *bool
	IsPublished   *bool
	SortOrder     *int
	FeaturedImage ImagePatch
	Thumbnail     ImagePatch
	GalleryAdd    []*multipart.FileHeader
	GalleryRemove []string
}

// NewProjectService creates a ProjectService instance.
func NewProjectService(gdb *gorm.DB, files *storage.Store) *ProjectService {
	return &ProjectService{db: gdb, files: files}
}

// List returns projects matching the filter.
func (s *ProjectService) List(filter ProjectFilter) (ProjectListResult, error) {
	result := ProjectListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 12),
	}

	query := s.applyFilters(s.db.Model(&db.Project{}), filter)

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)

	if err := s.applyOrder(query, filter).
		Preload("Technologies").
		Limit(result.PerPage).
		Offset((result.Page - 1) * result.PerPage).
		Find(&result.Items).Error; err != nil {
		return result, err
	}

	return result, nil
}

// ListPublished returns published projects in display order for the public site.
func (s *ProjectService) ListPublished(filter ProjectFilter) (ProjectListResult, error) {
	published := true
	filter.Published = &published
	if filter.OrderBy == "" {
		filter.OrderBy = "sort_order"
	}
	return s.List(filter)
}

// ListFeatured returns published featured projects for the home page.
func (s *ProjectService) ListFeatured(limit int) ([]db.Project, error) {
	if limit <= 0 {
		limit = 6
	}

	var items []db.Project
	if err := s.db.Where("is_published = ? AND is_featured = ?", true, true).
		Order("sort_order asc").Order("id asc").
		Limit(limit).
		Preload("Technologies").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a project by id with associations preloaded.
func (s *ProjectService) Get(id uint) (*db.Project, error) {
	var item db.Project
	if err := s.db.Preload("Technologies").
		Preload("Features", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order asc").Order("id asc")
		}).
		First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetPublishedBySlug fetches a published project by slug for public display.
func (s *ProjectService) GetPublishedBySlug(slug string) (*db.Project, error) {
	var item db.Project
	if err := s.db.Where("slug = ? AND is_published = ?", strings.TrimSpace(slug), true).
		Preload("Technologies").
		Preload("Features", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("sort_order asc").Order("id asc")
		}).
		First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create persists a project, stores uploaded images and associates technologies.
func (s *ProjectService) Create(input ProjectInput) (*db.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	status, err := normalizeProjectStatus(input.Status)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if err := s.ensureSlugFree(slug, 0); err != nil {
		return nil, err
	}

	technologies, err := s.resolveTechnologies(input.TechnologyIDs)
	if err != nil {
		return nil, err
	}

	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		order, orderErr := nextSortOrder(s.db, &db.Project{})
		if orderErr != nil {
			return nil, orderErr
		}
		sortOrder = order
	}

	item := db.Project{
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(input.Description),
		Content:     input.Content,
		Status:      status,
		UserID:      input.UserID,
		SortOrder:   sortOrder,
	}
	if input.IsFeatured != nil {
		item.IsFeatured = *input.IsFeatured
	}
	if input.IsPublished != nil && *input.IsPublished {
		item.IsPublished = true
		now := time.Now()
		item.PublishedAt = &now
	}

	if err := s.applyImages(&item, input); err != nil {
		return nil, err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		if technologies != nil {
			if err := tx.Model(&item).Association("Technologies").Replace(technologies); err != nil {
				return err
			}
		}
		return replaceFeatures(tx, item.ID, input.Features)
	}); err != nil {
		return nil, err
	}

	return s.Get(item.ID)
}

// Update applies a partial update to an existing project.
func (s *ProjectService) Update(id uint, input ProjectInput) (*db.Project, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}

	status, err := normalizeProjectStatus(input.Status)
	if err != nil {
		return nil, err
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if err := s.ensureSlugFree(slug, id); err != nil {
		return nil, err
	}

	var technologies []db.Technology
	if input.TechnologyIDs != nil {
		technologies, err = s.resolveTechnologies(input.TechnologyIDs)
		if err != nil {
			return nil, err
		}
		if technologies == nil {
			technologies = []db.Technology{}
		}
	}

	item.Title = title
	item.Slug = slug
	item.Description = strings.TrimSpace(input.Description)
	item.Content = input.Content
	item.Status = status

	if input.IsFeatured != nil {
		item.IsFeatured = *input.IsFeatured
	}
	if input.IsPublished != nil {
		s.applyPublishState(item, *input.IsPublished)
	}
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}

	if err := s.applyImages(item, input); err != nil {
		return nil, err
	}

	if err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(item).Error; err != nil {
			return err
		}
		if input.TechnologyIDs != nil {
			if err := tx.Model(item).Association("Technologies").Replace(technologies); err != nil {
				return err
			}
		}
		if input.Features != nil {
			return replaceFeatures(tx, item.ID, input.Features)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return s.Get(item.ID)
}

// Delete removes the project's stored files and soft-deletes the row.
func (s *ProjectService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	keys := append([]string{item.FeaturedImage, item.Thumbnail}, item.Gallery...)
	if err := deleteImages(s.files, keys...); err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", item.ID).Delete(&db.ProjectFeature{}).Error; err != nil {
			return err
		}
		return tx.Delete(item).Error
	})
}

// Reorder applies the submitted {id, order} pairs.
func (s *ProjectService) Reorder(updates []OrderUpdate) error {
	return applyReorder(s.db, &db.Project{}, updates, ErrProjectNotFound)
}

// ToggleFeatured flips the featured flag.
func (s *ProjectService) ToggleFeatured(id uint) (*db.Project, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.IsFeatured = !item.IsFeatured
	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// TogglePublished flips the published flag and maintains published_at.
func (s *ProjectService) TogglePublished(id uint) (*db.Project, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	s.applyPublishState(item, !item.IsPublished)
	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// IncrementViews 以 SQL 自增方式累计浏览数，避免读改写竞争。
func (s *ProjectService) IncrementViews(id uint) error {
	return s.db.Model(&db.Project{}).Where("id = ?", id).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

// IncrementLikes 累计点赞数。
func (s *ProjectService) IncrementLikes(id uint) error {
	return s.db.Model(&db.Project{}).Where("id = ?", id).
		UpdateColumn("likes_count", gorm.Expr("likes_count + 1")).Error
}

func (s *ProjectService) applyPublishState(item *db.Project, published bool) {
	item.IsPublished = published
	if published {
		if item.PublishedAt == nil {
			now := time.Now()
			item.PublishedAt = &now
		}
		return
	}
	item.PublishedAt = nil
}

// applyImages 处理主图、缩略图与画廊的文件生命周期。
func (s *ProjectService) applyImages(item *db.Project, input ProjectInput) error {
	featured, featuredChanged, err := resolveImage(s.files, item.FeaturedImage, input.FeaturedImage, storage.MaxFeaturedSize)
	if err != nil {
		return err
	}
	item.FeaturedImage = featured

	thumbnail, _, err := resolveImage(s.files, item.Thumbnail, input.Thumbnail, storage.MaxBadgeSize)
	if err != nil {
		return err
	}
	item.Thumbnail = thumbnail

	// 主图更新且没有显式缩略图时，自动派生一张
	if featuredChanged && item.FeaturedImage != "" && item.Thumbnail == "" {
		if thumb, thumbErr := s.files.Thumbnail(item.FeaturedImage, storage.DefaultThumbnailWidth); thumbErr == nil {
			item.Thumbnail = thumb
		}
	}

	if len(input.GalleryRemove) > 0 {
		remove := make(map[string]bool, len(input.GalleryRemove))
		for _, key := range input.GalleryRemove {
			remove[key] = true
		}

		kept := make([]string, 0, len(item.Gallery))
		for _, key := range item.Gallery {
			if remove[key] {
				if err := s.files.Delete(key); err != nil {
					return err
				}
				continue
			}
			kept = append(kept, key)
		}
		item.Gallery = kept
	}

	for _, file := range input.GalleryAdd {
		key, err := s.files.Save(file, storage.MaxFeaturedSize)
		if err != nil {
			return err
		}
		item.Gallery = append(item.Gallery, key)
	}

	return nil
}

func (s *ProjectService) applyFilters(query *gorm.DB, filter ProjectFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR description LIKE ?", like, like)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}
	if filter.Published != nil {
		query = query.Where("is_published = ?", *filter.Published)
	}
	if filter.TechnologyID != 0 {
		query = query.Joins("JOIN project_technologies ON project_technologies.project_id = projects.id").
			Where("project_technologies.technology_id = ?", filter.TechnologyID)
	}
	return query
}

func (s *ProjectService) applyOrder(query *gorm.DB, filter ProjectFilter) *gorm.DB {
	column := "created_at"
	desc := true

	switch filter.OrderBy {
	case "sort_order":
		column, desc = "sort_order", false
	case "views_count":
		column, desc = "views_count", true
	case "title":
		column, desc = "title", false
	case "created_at", "":
	default:
	}
	if filter.OrderBy != "" && filter.OrderBy == column {
		desc = filter.OrderDesc
	}

	direction := "asc"
	if desc {
		direction = "desc"
	}
	return query.Order(fmt.Sprintf("projects.%s %s", column, direction)).Order("projects.id asc")
}

func (s *ProjectService) ensureSlugFree(slug string, selfID uint) error {
	var existing db.Project
	query := s.db.Where("slug = ?", slug)
	if selfID != 0 {
		query = query.Where("id <> ?", selfID)
	}
	if err := query.First(&existing).Error; err == nil {
		return ErrProjectSlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// resolveTechnologies 校验并加载给定 ID 的技术记录，nil 输入原样返回。
func (s *ProjectService) resolveTechnologies(ids []uint) ([]db.Technology, error) {
	if ids == nil {
		return nil, nil
	}
	if len(ids) == 0 {
		return []db.Technology{}, nil
	}

	var technologies []db.Technology
	if err := s.db.Where("id IN ?", ids).Find(&technologies).Error; err != nil {
		return nil, err
	}
	if len(technologies) != len(dedupeIDs(ids)) {
		return nil, ErrTechnologyRefInvalid
	}
	return technologies, nil
}

// replaceFeatures 以提交的列表整体替换项目亮点，nil 表示保持不变。
func replaceFeatures(tx *gorm.DB, projectID uint, features []ProjectFeatureInput) error {
	if features == nil {
		return nil
	}

	if err := tx.Unscoped().Where("project_id = ?", projectID).Delete(&db.ProjectFeature{}).Error; err != nil {
		return err
	}

	for idx, feature := range features {
		title := strings.TrimSpace(feature.Title)
		if title == "" {
			continue
		}
		row := db.ProjectFeature{
			ProjectID:   projectID,
			Title:       title,
			Description: strings.TrimSpace(feature.Description),
			SortOrder:   idx,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func normalizeProjectStatus(status string) (string, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		return ProjectStatusDraft, nil
	}
	switch status {
	case ProjectStatusDraft, ProjectStatusInProgress, ProjectStatusCompleted, ProjectStatusArchived:
		return status, nil
	}
	return "", ErrProjectStatusInvalid
}

func dedupeIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
