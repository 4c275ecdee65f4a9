package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/devfolio/internal/db"
	"gorm.io/gorm"
)

var (
	ErrContactMessageNotFound = errors.New("contact message not found")
	ErrContactStatusInvalid   = errors.New("contact message status is invalid")
)

// 留言状态集合
const (
	ContactStatusNew      = "new"
	ContactStatusRead     = "read"
	ContactStatusReplied  = "replied"
	ContactStatusArchived = "archived"
)

// ContactService wraps contact message intake and triage.
type ContactService struct {
	db *gorm.DB
}

// ContactFilter describes filters for listing contact messages.
type ContactFilter struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}

// ContactListResult aggregates paginated contact message results.
type ContactListResult struct {
	Items      []db.ContactMessage
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// ContactInput represents fields accepted from the public contact form.
type ContactInput struct {
	Name    string
	Email   string
	Subject string
	Message string
}

// NewContactService creates a ContactService instance.
func NewContactService(gdb *gorm.DB) *ContactService {
	return &ContactService{db: gdb}
}

// List returns contact messages newest first.
func (s *ContactService) List(filter ContactFilter) (ContactListResult, error) {
	result := ContactListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 20),
	}

	query := s.db.Model(&db.ContactMessage{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("name LIKE ? OR email LIKE ? OR subject LIKE ?", like, like, like)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}
	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)

	if err := query.Order("created_at desc").Order("id desc").
		Limit(result.PerPage).
		Offset((result.Page - 1) * result.PerPage).
		Find(&result.Items).Error; err != nil {
		return result, err
	}

	return result, nil
}

// Get fetches a contact message by id.
func (s *ContactService) Get(id uint) (*db.ContactMessage, error) {
	var item db.ContactMessage
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContactMessageNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create stores a message submitted from the public contact form.
func (s *ContactService) Create(input ContactInput) (*db.ContactMessage, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	email := strings.TrimSpace(input.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	message := strings.TrimSpace(input.Message)
	if message == "" {
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}

	item := db.ContactMessage{
		Name:    name,
		Email:   email,
		Subject: strings.TrimSpace(input.Subject),
		Message: message,
		Status:  ContactStatusNew,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// MarkRead 把一条新留言标记为已读，其他状态保持不变。
func (s *ContactService) MarkRead(id uint) (*db.ContactMessage, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if item.Status != ContactStatusNew {
		return item, nil
	}

	item.Status = ContactStatusRead
	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateStatus sets the triage status of a message.
func (s *ContactService) UpdateStatus(id uint, status string) (*db.ContactMessage, error) {
	status = strings.ToLower(strings.TrimSpace(status))
	switch status {
	case ContactStatusNew, ContactStatusRead, ContactStatusReplied, ContactStatusArchived:
	default:
		return nil, ErrContactStatusInvalid
	}

	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	item.Status = status
	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a contact message.
func (s *ContactService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Unscoped().Delete(item).Error
}

// CountNew 返回待处理的新留言数量。
func (s *ContactService) CountNew() (int64, error) {
	var count int64
	if err := s.db.Model(&db.ContactMessage{}).
		Where("status = ?", ContactStatusNew).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
