package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devfolio/internal/db"
	"gorm.io/gorm"
)

var (
	ErrTechnologyNotFound  = errors.New("technology not found")
	ErrTechnologySlugTaken = errors.New("technology slug already exists")
	ErrTechnologyInUse     = errors.New("technology is referenced by projects")
)

// TechnologyService wraps technology related operations.
type TechnologyService struct {
	db *gorm.DB
}

// TechnologyFilter describes filters for listing technologies.
type TechnologyFilter struct {
	Search   string
	Type     string
	Featured *bool
	Page     int
	PerPage  int
}

// TechnologyListResult aggregates paginated technology results.
type TechnologyListResult struct {
	Items      []db.Technology
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// TechnologyInput represents fields accepted when creating or updating a technology.
// 指针字段缺省时表示保持原值。
type TechnologyInput struct {
	Name        string
	Slug        string
	Type        string
	Color       string
	Proficiency *int
	IsFeatured  *bool
	SortOrder   *int
}

// NewTechnologyService creates a TechnologyService instance.
func NewTechnologyService(gdb *gorm.DB) *TechnologyService {
	return &TechnologyService{db: gdb}
}

// List returns technologies matching the filter, ordered by sort order.
func (s *TechnologyService) List(filter TechnologyFilter) (TechnologyListResult, error) {
	result := TechnologyListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 20),
	}

	query := s.db.Model(&db.Technology{})
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("name LIKE ?", "%"+search+"%")
	}
	if techType := strings.TrimSpace(filter.Type); techType != "" {
		query = query.Where("type = ?", techType)
	}
	if filter.Featured != nil {
		query = query.Where("is_featured = ?", *filter.Featured)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)

	if err := query.Order("sort_order asc").Order("id asc").
		Limit(result.PerPage).
		Offset((result.Page - 1) * result.PerPage).
		Find(&result.Items).Error; err != nil {
		return result, err
	}

	return result, nil
}

// ListAll returns every technology in display order.
func (s *TechnologyService) ListAll() ([]db.Technology, error) {
	var items []db.Technology
	if err := s.db.Order("sort_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListFeatured returns featured technologies in display order.
func (s *TechnologyService) ListFeatured() ([]db.Technology, error) {
	var items []db.Technology
	if err := s.db.Where("is_featured = ?", true).
		Order("sort_order asc").Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a technology by id.
func (s *TechnologyService) Get(id uint) (*db.Technology, error) {
	var item db.Technology
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTechnologyNotFound
		}
		return nil, err
	}
	return &item, nil
}

// GetBySlug fetches a technology by its slug.
func (s *TechnologyService) GetBySlug(slug string) (*db.Technology, error) {
	var item db.Technology
	if err := s.db.Where("slug = ?", strings.TrimSpace(slug)).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTechnologyNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new technology with a unique slug.
func (s *TechnologyService) Create(input TechnologyInput) (*db.Technology, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if err := s.ensureSlugFree(slug, 0); err != nil {
		return nil, err
	}

	proficiency := 0
	if input.Proficiency != nil {
		proficiency = *input.Proficiency
	}
	if proficiency < 0 || proficiency > 100 {
		return nil, fmt.Errorf("%w: proficiency must be between 0 and 100", ErrInvalidInput)
	}

	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		order, err := nextSortOrder(s.db, &db.Technology{})
		if err != nil {
			return nil, err
		}
		sortOrder = order
	}

	item := db.Technology{
		Name:        name,
		Slug:        slug,
		Type:        strings.TrimSpace(input.Type),
		Color:       strings.TrimSpace(input.Color),
		Proficiency: proficiency,
		SortOrder:   sortOrder,
	}
	if input.IsFeatured != nil {
		item.IsFeatured = *input.IsFeatured
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies an existing technology while keeping slug uniqueness.
func (s *TechnologyService) Update(id uint, input TechnologyInput) (*db.Technology, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	slug := strings.TrimSpace(input.Slug)
	if slug == "" {
		slug = Slugify(name)
	}
	if err := s.ensureSlugFree(slug, id); err != nil {
		return nil, err
	}

	item.Name = name
	item.Slug = slug
	item.Type = strings.TrimSpace(input.Type)
	item.Color = strings.TrimSpace(input.Color)

	if input.Proficiency != nil {
		if *input.Proficiency < 0 || *input.Proficiency > 100 {
			return nil, fmt.Errorf("%w: proficiency must be between 0 and 100", ErrInvalidInput)
		}
		item.Proficiency = *input.Proficiency
	}
	if input.IsFeatured != nil {
		item.IsFeatured = *input.IsFeatured
	}
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}

	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a technology unless any project still references it.
func (s *TechnologyService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	count, err := s.projectUsageCount(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrTechnologyInUse
	}

	return s.db.Unscoped().Delete(item).Error
}

// Reorder applies the submitted {id, order} pairs.
func (s *TechnologyService) Reorder(updates []OrderUpdate) error {
	return applyReorder(s.db, &db.Technology{}, updates, ErrTechnologyNotFound)
}

// ToggleFeatured flips the featured flag.
func (s *TechnologyService) ToggleFeatured(id uint) (*db.Technology, error) {
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

func (s *TechnologyService) ensureSlugFree(slug string, selfID uint) error {
	var existing db.Technology
	query := s.db.Where("slug = ?", slug)
	if selfID != 0 {
		query = query.Where("id <> ?", selfID)
	}
	if err := query.First(&existing).Error; err == nil {
		return ErrTechnologySlugTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return nil
}

// projectUsageCount 统计仍引用该技术的项目数量，软删除的项目不计入。
func (s *TechnologyService) projectUsageCount(id uint) (int64, error) {
	var count int64
	if err := s.db.Model(&db.Project{}).
		Joins("JOIN project_technologies ON projects.id = project_technologies.project_id").
		Where("project_technologies.technology_id = ?", id).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
