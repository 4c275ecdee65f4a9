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

var (
	ErrCertificationNotFound      = errors.New("certification not found")
	ErrCertificationFilterInvalid = errors.New("certification filter is invalid")
)

// 证书有效期筛选值
const (
	CertificationFilterActive  = "active"
	CertificationFilterExpired = "expired"
)

// CertificationService wraps certification operations.
type CertificationService struct {
	db    *gorm.DB
	files *storage.Store
}

// CertificationInput represents fields accepted when creating or updating a certification.
// DoesNotExpire 为 true 时 ExpiryDate 一律写入空值。
type CertificationInput struct {
	Name                string
	IssuingOrganization string
	CredentialID        string
	CredentialURL       string
	IssueDate           time.Time
	ExpiryDate          *time.Time
	DoesNotExpire       bool
	SortOrder           *int
	BadgeImage          ImagePatch
}

// NewCertificationService creates a CertificationService instance.
func NewCertificationService(gdb *gorm.DB, files *storage.Store) *CertificationService {
	return &CertificationService{db: gdb, files: files}
}

// ListAll returns every certification in display order.
func (s *CertificationService) ListAll() ([]db.Certification, error) {
	return s.List("", time.Now())
}

// List returns certifications filtered by validity.
// filter 为空返回全部，active 返回永久有效或未过期的，expired 返回已过期的。
func (s *CertificationService) List(filter string, now time.Time) ([]db.Certification, error) {
	query := s.db.Model(&db.Certification{})

	switch strings.TrimSpace(filter) {
	case "":
	case CertificationFilterActive:
		query = query.Where("does_not_expire = ? OR expiry_date > ?", true, now)
	case CertificationFilterExpired:
		query = query.Where("does_not_expire = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", false, now)
	default:
		return nil, ErrCertificationFilterInvalid
	}

	var items []db.Certification
	if err := query.Order("sort_order asc").Order("id asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a certification by id.
func (s *CertificationService) Get(id uint) (*db.Certification, error) {
	var item db.Certification
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCertificationNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new certification.
func (s *CertificationService) Create(input CertificationInput) (*db.Certification, error) {
	if err := validateCertificationInput(input); err != nil {
		return nil, err
	}

	sortOrder := 0
	if input.SortOrder != nil {
		sortOrder = *input.SortOrder
	} else {
		order, err := nextSortOrder(s.db, &db.Certification{})
		if err != nil {
			return nil, err
		}
		sortOrder = order
	}

	item := db.Certification{
		Name:                strings.TrimSpace(input.Name),
		IssuingOrganization: strings.TrimSpace(input.IssuingOrganization),
		CredentialID:        strings.TrimSpace(input.CredentialID),
		CredentialURL:       strings.TrimSpace(input.CredentialURL),
		IssueDate:           input.IssueDate,
		ExpiryDate:          resolveExpiryDate(input.DoesNotExpire, input.ExpiryDate),
		DoesNotExpire:       input.DoesNotExpire,
		SortOrder:           sortOrder,
	}

	badge, _, err := resolveImage(s.files, "", input.BadgeImage, storage.MaxBadgeSize)
	if err != nil {
		return nil, err
	}
	item.BadgeImage = badge

	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies an existing certification.
func (s *CertificationService) Update(id uint, input CertificationInput) (*db.Certification, error) {
	if err := validateCertificationInput(input); err != nil {
		return nil, err
	}

	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.Name = strings.TrimSpace(input.Name)
	item.IssuingOrganization = strings.TrimSpace(input.IssuingOrganization)
	item.CredentialID = strings.TrimSpace(input.CredentialID)
	item.CredentialURL = strings.TrimSpace(input.CredentialURL)
	item.IssueDate = input.IssueDate
	item.ExpiryDate = resolveExpiryDate(input.DoesNotExpire, input.ExpiryDate)
	item.DoesNotExpire = input.DoesNotExpire
	if input.SortOrder != nil {
		item.SortOrder = *input.SortOrder
	}

	badge, _, err := resolveImage(s.files, item.BadgeImage, input.BadgeImage, storage.MaxBadgeSize)
	if err != nil {
		return nil, err
	}
	item.BadgeImage = badge

	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a certification together with its badge file.
func (s *CertificationService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	if err := deleteImages(s.files, item.BadgeImage); err != nil {
		return err
	}
	return s.db.Unscoped().Delete(item).Error
}

// Reorder applies the submitted {id, order} pairs.
func (s *CertificationService) Reorder(updates []OrderUpdate) error {
	return applyReorder(s.db, &db.Certification{}, updates, ErrCertificationNotFound)
}

// resolveExpiryDate 实现永久有效与过期时间互斥的规则。
func resolveExpiryDate(doesNotExpire bool, expiryDate *time.Time) *time.Time {
	if doesNotExpire {
		return nil
	}
	return expiryDate
}

func validateCertificationInput(input CertificationInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.IssuingOrganization) == "" {
		return fmt.Errorf("%w: issuing organization is required", ErrInvalidInput)
	}
	if input.IssueDate.IsZero() {
		return fmt.Errorf("%w: issue date is required", ErrInvalidInput)
	}
	return nil
}
