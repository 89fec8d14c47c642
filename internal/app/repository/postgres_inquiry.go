package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
)

// Методы для журнала запросов цен

// Создать запрос. Частичный уникальный индекс гарантирует единственность
// pending-записи: при конфликте возвращается существующая, снимок цены
// не пересчитывается
func (r *PostgresRepository) CreateInquiry(inq *ds.Inquiry) (*ds.Inquiry, error) {
	inq.Status = ds.StatusPending
	inq.CreatedAt = time.Now()

	err := r.db.Create(inq).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		var existing ds.Inquiry
		err = r.db.Where("user_id = ? AND device_id = ? AND project_id = ? AND status = ?",
			inq.UserID, inq.DeviceID, inq.ProjectID, ds.StatusPending).
			First(&existing).Error
		if err != nil {
			return nil, err
		}
		return &existing, nil
	}
	if err != nil {
		return nil, err
	}
	return inq, nil
}

func (r *PostgresRepository) ListUserInquiries(userID uint) ([]ds.Inquiry, error) {
	var inquiries []ds.Inquiry
	err := r.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&inquiries).Error
	return inquiries, err
}

func (r *PostgresRepository) ListInquiries() ([]ds.Inquiry, error) {
	var inquiries []ds.Inquiry
	err := r.db.Order("created_at DESC").Find(&inquiries).Error
	return inquiries, err
}

// Перевод статуса только из pending: отсутствующий или уже решенный
// запрос не трогаем и не считаем ошибкой
func (r *PostgresRepository) SetInquiryStatus(id uint, status string) error {
	now := time.Now()
	return r.db.Model(&ds.Inquiry{}).
		Where("id = ? AND status = ?", id, ds.StatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": &now,
		}).Error
}
