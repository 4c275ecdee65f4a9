package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devfolio/internal/db"
	"gorm.io/gorm"
)

var ErrSkillNotFound = errors.New("skill not found")

// SkillService wraps skill related operations.
type SkillService struct {
	db *gorm.DB
}

// SkillInput represents fields accepted when creating or updating a skill.
type SkillInput struct {
	Name            string
	Category        string
	YearsExperience *int
	Level           *int
	IsHighlighted   *bool
	SortOrder       *int
}

// SkillCategory 聚合同一分类下的技能，用于前台分组展示。
type SkillCategory struct {
	Name   string
	Skills []db.Skill
}

// NewSkillService creates a SkillService instance.
func NewSkillService(gdb *gorm.DB) *SkillService {
	return &SkillService{db: gdb}
}

// ListAll returns every skill in display order.
func (s *SkillService) ListAll() ([]db.Skill, error) {
	var items []db.Skill
	if err := s.db.Order("sort_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListHighlighted returns highlighted skills in display order.
func (s *SkillService) ListHighlighted() ([]db.Skill, error) {
	var items []db.Skill
	if err := s.db.Where("is_highlighted = ?", true).
		Order("sort_order asc").Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListGrouped returns skills grouped by category.
// 分类顺序跟随组内第一条技能的排序值。
func (s *SkillService) ListGrouped() ([]SkillCategory, error) {
	items, err := s.ListAll()
	if err != nil {
		return nil, err
	}

	index := make(map[string]int)
	groups := make([]SkillCategory, 0)
	for _, item := range items {
		category := item.Category
		if category == "" {
			category = "其他"
		}
		pos, ok := index[category]
		if !ok {
			pos = len(groups)
			index[category] = pos
			groups = append(groups, SkillCategory{Name: category})
		}
		groups[pos].Skills = append(groups[pos].Skills, item)
	}

	return groups, nil
}

// Get fetches a skill by id.
func (s *SkillService) Get(id uint) (*db.Skill, error) {
	var item db.Skill
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSkillNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new skill.
func (s *SkillService) Create(input SkillInput) (*db.Skill, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	level := 0
	if input.Level != nil {
		level = *input.Level
	}
	if level < 0 || level > 100 {
		return nil, fmt.Errorf("%w: level must be between 0 and 100", ErrInvalidInput)
	}

	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		order, err := nextSortOrder(s.db, &db.Skill{})
		if err != nil {
			return nil, err
		}
		sortOrder = order
	}

	item := db.Skill{
		Name:      name,
		Category:  strings.TrimSpace(input.Category),
		Level:     level,
		SortOrder: sortOrder,
	}
	if input.YearsExperience != nil {
		item.YearsExperience = *input.YearsExperience
	}
	if input.IsHighlighted != nil {
		item.IsHighlighted = *input.IsHighlighted
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies an existing skill.
func (s *SkillService) Update(id uint, input SkillInput) (*db.Skill, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}

	item.Name = name
	item.Category = strings.TrimSpace(input.Category)

	if input.Level != nil {
		if *input.Level < 0 || *input.Level > 100 {
			return nil, fmt.Errorf("%w: level must be between 0 and 100", ErrInvalidInput)
		}
		item.Level = *input.Level
	}
	if input.YearsExperience != nil {
		item.YearsExperience = *input.YearsExperience
	}
	if input.IsHighlighted != nil {
		item.IsHighlighted = *input.IsHighlighted
	}
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}

	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a skill.
func (s *SkillService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Unscoped().Delete(item).Error
}

// Reorder applies the submitted {id, order} pairs.
func (s *SkillService) Reorder(updates []OrderUpdate) error {
	return applyReorder(s.db, &db.Skill{}, updates, ErrSkillNotFound)
}

// ToggleHighlighted flips the highlighted flag.
func (s *SkillService) ToggleHighlighted(id uint) (*db.Skill, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.IsHighlighted = !item.IsHighlighted
	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}
