package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devfolio/internal/db"
	"github.com/devfolio/internal/storage"
	"gorm.io/gorm"
)

var ErrEducationNotFound = errors.New("education not found")

// EducationService wraps education history operations.
type EducationService struct {
	db    *gorm.DB
	files *storage.Store
}

// EducationInput represents fields accepted when creating or updating an education entry.
// 与 ExperienceInput 遵循同样的进行中/结束时间互斥规则。
type EducationInput struct {
	Degree          string
	Institution     string
	FieldOfStudy    string
	Description     string
	StartDate       time.Time
	EndDate         *time.Time
	IsCurrent       bool
	SortOrder       *int
	InstitutionLogo ImagePatch
}

// NewEducationService creates an EducationService instance.
func NewEducationService(gdb *gorm.DB, files *storage.Store) *EducationService {
	return &EducationService{db: gdb, files: files}
}

// ListAll returns every education entry in display order.
func (s *EducationService) ListAll() ([]db.Education, error) {
	var items []db.Education
	if err := s.db.Order("sort_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches an education entry by id.
func (s *EducationService) Get(id uint) (*db.Education, error) {
	var item db.Education
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEducationNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new education entry.
func (s *EducationService) Create(input EducationInput) (*db.Education, error) {
	if err := validateEducationInput(input); err != nil {
		return nil, err
	}

	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		order, err := nextSortOrder(s.db, &db.Education{})
		if err != nil {
			return nil, err
		}
		sortOrder = order
	}

	item := db.Education{
		Degree:       strings.TrimSpace(input.Degree),
		Institution:  strings.TrimSpace(input.Institution),
		FieldOfStudy: strings.TrimSpace(input.FieldOfStudy),
		Description:  strings.TrimSpace(input.Description),
		StartDate:    input.StartDate,
		EndDate:      resolveEndDate(input.IsCurrent, input.EndDate),
		IsCurrent:    input.IsCurrent,
		SortOrder:    sortOrder,
	}

	logo, _, err := resolveImage(s.files, "", input.InstitutionLogo, storage.MaxBadgeSize)
	if err != nil {
		return nil, err
	}
	item.InstitutionLogo = logo

	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies an existing education entry.
func (s *EducationService) Update(id uint, input EducationInput) (*db.Education, error) {
	if err := validateEducationInput(input); err != nil {
		return nil, err
	}

	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.Degree = strings.TrimSpace(input.Degree)
	item.Institution = strings.TrimSpace(input.Institution)
	item.FieldOfStudy = strings.TrimSpace(input.FieldOfStudy)
	item.Description = strings.TrimSpace(input.Description)
	item.StartDate = input.StartDate
	item.EndDate = resolveEndDate(input.IsCurrent, input.EndDate)
	item.IsCurrent = input.IsCurrent
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}

	logo, _, err := resolveImage(s.files, item.InstitutionLogo, input.InstitutionLogo, storage.MaxBadgeSize)
	if err != nil {
		return nil, err
	}
	item.InstitutionLogo = logo

	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an education entry together with its logo file.
func (s *EducationService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := deleteImages(s.files, item.InstitutionLogo); err != nil {
		return err
	}
	return s.db.Unscoped().Delete(item).Error
}

// Reorder applies the submitted {id, order} pairs.
func (s *EducationService) Reorder(updates []OrderUpdate) error {
	return applyReorder(s.db, &db.Education{}, updates, ErrEducationNotFound)
}

func validateEducationInput(input EducationInput) error {
	if strings.TrimSpace(input.Degree) == "" {
		return fmt.Errorf("%w: degree is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Institution) == "" {
		return fmt.Errorf("%w: institution is required", ErrInvalidInput)
	}
	if input.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	if !input.IsCurrent && input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return fmt.Errorf("%w: end date must not precede start date", ErrInvalidInput)
	}
	return nil
}
