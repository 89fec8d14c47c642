package repository

import (
	"errors"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
)

// Реализация Repository поверх PostgreSQL (gorm)
type PostgresRepository struct {
	db *gorm.DB
}

func NewPostgres(dsn string) (*PostgresRepository, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Автоматическая миграция всех таблиц
	err = db.AutoMigrate(
		&ds.User{},
		&ds.Category{},
		&ds.Device{},
		&ds.Settings{},
		&ds.Project{},
		&ds.Inquiry{},
		&ds.Comment{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	// Частичный уникальный индекс: не более одного pending-запроса на тройку
	// (пользователь, устройство, проект). Закрывает гонку двойного клика
	err = db.Exec(`CREATE UNIQUE INDEX IF NOT EXISTS idx_inquiries_pending
		ON inquiries (user_id, device_id, project_id)
		WHERE status = 'pending'`).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create pending index: %w", err)
	}

	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Получить активную запись коэффициентов
func (r *PostgresRepository) GetSettings() (*ds.Settings, error) {
	var s ds.Settings
	err := r.db.Where("is_active = ?", true).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Заменить набор коэффициентов целиком (одна активная строка)
func (r *PostgresRepository) ReplaceSettings(s *ds.Settings) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var current ds.Settings
		err := tx.Where("is_active = ?", true).First(&current).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		s.IsActive = true
		if err == nil {
			s.ID = current.ID
			return tx.Save(s).Error
		}
		return tx.Create(s).Error
	})
}
