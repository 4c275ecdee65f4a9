package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devfolio/internal/db"
	"github.com/devfolio/internal/storage"
	"gorm.io/gorm"
)

var (
	ErrTestimonialNotFound   = errors.New("testimonial not found")
	ErrTestimonialProjectRef = errors.New("referenced project does not exist")
)

// TestimonialService wraps testimonial operations.
type TestimonialService struct {
	db    *gorm.DB
	files *storage.Store
}

// TestimonialFilter describes filters for listing testimonials.
type TestimonialFilter struct {
	Search    string
	Rating    int
	ProjectID uint
	Published *bool
	Featured  *bool
	Page      int
	PerPage   int
}

// TestimonialListResult aggregates paginated testimonial results.
type TestimonialListResult struct {
	Items      []db.Testimonial
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// TestimonialInput represents fields accepted when creating or updating a testimonial.
// ProjectID 指向 0 表示清除项目关联，nil 表示保持不变。
type TestimonialInput struct {
	ClientName    string
	ClientTitle   string
	ClientCompany string
	Content       string
	Rating        int
	ProjectID     *uint
	IsFeatured    *bool
	IsPublished   *bool
	SortOrder     *int
	ClientAvatar  ImagePatch
}

// NewTestimonialService creates a TestimonialService instance.
func NewTestimonialService(gdb *gorm.DB, files *storage.Store) *TestimonialService {
	return &TestimonialService{db: gdb, files: files}
}

// List returns testimonials matching the filter.
func (s *TestimonialService) List(filter TestimonialFilter) (TestimonialListResult, error) {
	result := TestimonialListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 12),
	}

	query := s.db.Model(&db.Testimonial{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("client_name LIKE ? OR content LIKE ?", like, like)
	}
	if filter.Rating != 0 {
		query = query.Where("rating = ?", filter.Rating)
	}
	if filter.ProjectID != 0 {
		query = query.Where("project_id = ?", filter.ProjectID)
	}
	if filter.Published != nil {
		query = query.Where("is_published = ?", *filter.Published)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)

	if err := query.Order("sort_order asc").Order("id asc").
		Preload("Project").
		Limit(result.PerPage).
		Offset((result.Page - 1) * result.PerPage).
		Find(&result.Items).Error; err != nil {
		return result, err
	}

	return result, nil
}

// ListPublished returns published testimonials for the public site.
func (s *TestimonialService) ListPublished(page, perPage int) (TestimonialListResult, error) {
	published := true
	return s.List(TestimonialFilter{Published: &published, Page: page, PerPage: perPage})
}

// ListFeatured returns published featured testimonials in display order.
func (s *TestimonialService) ListFeatured(limit int) ([]db.Testimonial, error) {
	if limit <= 0 {
		limit = 3
	}

	var items []db.Testimonial
	if err := s.db.Where("is_published = ? AND is_featured = ?", true, true).
		Order("sort_order asc").Order("id asc").
		Limit(limit).
		Preload("Project").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a testimonial by id.
func (s *TestimonialService) Get(id uint) (*db.Testimonial, error) {
	var item db.Testimonial
	if err := s.db.Preload("Project").First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTestimonialNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new testimonial.
func (s *TestimonialService) Create(input TestimonialInput) (*db.Testimonial, error) {
	if err := validateTestimonialInput(input); err != nil {
		return nil, err
	}

	projectID, err := s.resolveProjectRef(input.ProjectID)
	if err != nil {
		return nil, err
	}

	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		order, err := nextSortOrder(s.db, &db.Testimonial{})
		if err != nil {
			return nil, err
		}
		sortOrder = order
	}

	item := db.Testimonial{
		ClientName:    strings.TrimSpace(input.ClientName),
		ClientTitle:   strings.TrimSpace(input.ClientTitle),
		ClientCompany: strings.TrimSpace(input.ClientCompany),
		Content:       strings.TrimSpace(input.Content),
		Rating:        input.Rating,
		ProjectID:     projectID,
		SortOrder:     sortOrder,
	}
	if input.IsFeatured != nil {
		item.IsFeatured = *input.IsFeatured
	}
	if input.IsPublished != nil {
		item.IsPublished = *input.IsPublished
	}

	avatar, _, err := resolveImage(s.files, "", input.ClientAvatar, storage.MaxBadgeSize)
	if err != nil {
		return nil, err
	}
	item.ClientAvatar = avatar

	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies an existing testimonial.
func (s *TestimonialService) Update(id uint, input TestimonialInput) (*db.Testimonial, error) {
	if err := validateTestimonialInput(input); err != nil {
		return nil, err
	}

	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.ClientName = strings.TrimSpace(input.ClientName)
	item.ClientTitle = strings.TrimSpace(input.ClientTitle)
	item.ClientCompany = strings.TrimSpace(input.ClientCompany)
	item.Content = strings.TrimSpace(input.Content)
	item.Rating = input.Rating

	if input.ProjectID != nil {
		projectID, err := s.resolveProjectRef(input.ProjectID)
		if err != nil {
			return nil, err
		}
		item.ProjectID = projectID
		item.Project = nil
	}
	if input.IsFeatured != nil {
		item.IsFeatured = *input.IsFeatured
	}
	if input.IsPublished != nil {
		item.IsPublished = *input.IsPublished
	}
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}

	avatar, _, err := resolveImage(s.files, item.ClientAvatar, input.ClientAvatar, storage.MaxBadgeSize)
	if err != nil {
		return nil, err
	}
	item.ClientAvatar = avatar

	if err := s.db.Omit("Project").Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a testimonial together with its avatar file.
func (s *TestimonialService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := deleteImages(s.files, item.ClientAvatar); err != nil {
		return err
	}
	return s.db.Unscoped().Delete(item).Error
}

// Reorder applies the submitted {id, order} pairs.
func (s *TestimonialService) Reorder(updates []OrderUpdate) error {
	return applyReorder(s.db, &db.Testimonial{}, updates, ErrTestimonialNotFound)
}

// ToggleFeatured flips the featured flag.
func (s *TestimonialService) ToggleFeatured(id uint) (*db.Testimonial, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.IsFeatured = !item.IsFeatured
	if err := s.db.Omit("Project").Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// TogglePublished flips the published flag.
func (s *TestimonialService) TogglePublished(id uint) (*db.Testimonial, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.IsPublished = !item.IsPublished
	if err := s.db.Omit("Project").Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// resolveProjectRef 校验项目引用，返回要写入的外键值。
func (s *TestimonialService) resolveProjectRef(projectID *uint) (*uint, error) {
	if projectID == nil || *projectID == 0 {
		return nil, nil
	}

	var count int64
	if err := s.db.Model(&db.Project{}).Where("id = ?", *projectID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrTestimonialProjectRef
	}
	id := *projectID
	return &id, nil
}

func validateTestimonialInput(input TestimonialInput) error {
	if strings.TrimSpace(input.ClientName) == "" {
		return fmt.Errorf("%w: client name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Content) == "" {
		return fmt.Errorf("%w: content is required", ErrInvalidInput)
	}
	if input.Rating < 1 || input.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidInput)
	}
	return nil
}
