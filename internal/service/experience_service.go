package service

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devfolio/internal/db"
	"github.com/devfolio/internal/storage"
	"gorm.io/gorm"
)

var ErrExperienceNotFound = errors.New("experience not found")

// ExperienceService wraps work experience operations.
type ExperienceService struct {
	db    *gorm.DB
	files *storage.Store
}

// ExperienceInput represents fields accepted when creating or updating an experience.
// IsCurrent 为 true 时 EndDate 一律写入空值。
type ExperienceInput struct {
	Title            string
	Company          string
	Location         string
	Responsibilities []string
	Achievements     []string
	StartDate        time.Time
	EndDate          *time.Time
	IsCurrent        bool
	SortOrder        *int
	CompanyLogo      ImagePatch
}

// NewExperienceService creates an ExperienceService instance.
func NewExperienceService(gdb *gorm.DB, files *storage.Store) *ExperienceService {
	return &ExperienceService{db: gdb, files: files}
}

// ListAll returns every experience in display order.
func (s *ExperienceService) ListAll() ([]db.Experience, error) {
	var items []db.Experience
	if err := s.db.Order("sort_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches an experience by id.
func (s *ExperienceService) Get(id uint) (*db.Experience, error) {
	var item db.Experience
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrExperienceNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new experience entry.
func (s *ExperienceService) Create(input ExperienceInput) (*db.Experience, error) {
	if err := validateExperienceInput(input); err != nil {
		return nil, err
	}

	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		order, err := nextSortOrder(s.db, &db.Experience{})
		if err != nil {
			return nil, err
		}
		sortOrder = order
	}

	item := db.Experience{
		Title:            strings.TrimSpace(input.Title),
		Company:          strings.TrimSpace(input.Company),
		Location:         strings.TrimSpace(input.Location),
		Responsibilities: cleanLines(input.Responsibilities),
		Achievements:     cleanLines(input.Achievements),
		StartDate:        input.StartDate,
		EndDate:          resolveEndDate(input.IsCurrent, input.EndDate),
		IsCurrent:        input.IsCurrent,
		SortOrder:        sortOrder,
	}

	logo, _, err := resolveImage(s.files, "", input.CompanyLogo, storage.MaxBadgeSize)
	if err != nil {
		return nil, err
	}
	item.CompanyLogo = logo

	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies an existing experience entry.
func (s *ExperienceService) Update(id uint, input ExperienceInput) (*db.Experience, error) {
	if err := validateExperienceInput(input); err != nil {
		return nil, err
	}

	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.Title = strings.TrimSpace(input.Title)
	item.Company = strings.TrimSpace(input.Company)
	item.Location = strings.TrimSpace(input.Location)
	item.Responsibilities = cleanLines(input.Responsibilities)
	item.Achievements = cleanLines(input.Achievements)
	item.StartDate = input.StartDate
	item.EndDate = resolveEndDate(input.IsCurrent, input.EndDate)
	item.IsCurrent = input.IsCurrent
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}

	logo, _, err := resolveImage(s.files, item.CompanyLogo, input.CompanyLogo, storage.MaxBadgeSize)
	if err != nil {
		return nil, err
	}
	item.CompanyLogo = logo

	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an experience entry together with its logo file.
func (s *ExperienceService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := deleteImages(s.files, item.CompanyLogo); err != nil {
		return err
	}
	return s.db.Unscoped().Delete(item).Error
}

// Reorder applies the submitted {id, order} pairs.
func (s *ExperienceService) Reorder(updates []OrderUpdate) error {
	return applyReorder(s.db, &db.Experience{}, updates, ErrExperienceNotFound)
}

// YearsOfExperience 返回距最早一段经历开始时间的整年数。
func (s *ExperienceService) YearsOfExperience(now time.Time) (int, error) {
	var row sql.NullTime
	err := s.db.Model(&db.Experience{}).
		Select("MIN(start_date)").
		Scan(&row).Error
	if err != nil {
		return 0, err
	}
	if !row.Valid || row.Time.After(now) {
		return 0, nil
	}

	earliest := row.Time
	years := now.Year() - earliest.Year()
	anniversary := earliest.AddDate(years, 0, 0)
	if anniversary.After(now) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return years, nil
}

// resolveEndDate 实现进行中与结束时间互斥的规则。
func resolveEndDate(isCurrent bool, endDate *time.Time) *time.Time {
	if isCurrent {
		return nil
	}
	return endDate
}

func validateExperienceInput(input ExperienceInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.Company) == "" {
		return fmt.Errorf("%w: company is required", ErrInvalidInput)
	}
	if input.StartDate.IsZero() {
		return fmt.Errorf("%w: start date is required", ErrInvalidInput)
	}
	if !input.IsCurrent && input.EndDate != nil && input.EndDate.Before(input.StartDate) {
		return fmt.Errorf("%w: end date must not precede start date", ErrInvalidInput)
	}
	return nil
}

// cleanLines 去掉空白条目并修剪每一行。
func cleanLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
