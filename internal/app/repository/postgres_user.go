package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/role"
)

// Методы для пользователей (ORM)

func (r *PostgresRepository) GetUserByID(id uint) (*ds.User, error) {
	var user ds.User
	err := r.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Логин сверяется без учета регистра
func (r *PostgresRepository) GetUserByLogin(login string) (*ds.User, error) {
	var user ds.User
	err := r.db.Where("LOWER(login) = LOWER(?)", login).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresRepository) ListUsers() ([]ds.User, error) {
	var users []ds.User
	err := r.db.Order("id").Find(&users).Error
	return users, err
}

func (r *PostgresRepository) SaveUser(u *ds.User) error {
	if u.ID == 0 {
		err := r.db.Create(u).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrLoginTaken
		}
		return err
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var prev ds.User
		err := tx.First(&prev, u.ID).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		// понижение или деактивация последнего активного администратора
		// запрещены так же, как удаление
		if err == nil && prev.Role == role.Admin && prev.IsActive &&
			(u.Role != role.Admin || !u.IsActive) {
			var remaining int64
			countErr := tx.Model(&ds.User{}).
				Where("role = ? AND is_active = ? AND id != ?", role.Admin, true, u.ID).
				Count(&remaining).Error
			if countErr != nil {
				return countErr
			}
			if remaining == 0 {
				return ErrLastAdmin
			}
		}

		err = tx.Save(u).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrLoginTaken
		}
		return err
	})
}

// Удаление с защитой последнего администратора: считаем активных
// администраторов без удаляемого, при нуле отказываем без изменений
func (r *PostgresRepository) DeleteUser(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user ds.User
		err := tx.First(&user, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}

		if user.Role == role.Admin {
			var remaining int64
			err = tx.Model(&ds.User{}).
				Where("role = ? AND is_active = ? AND id != ?", role.Admin, true, id).
				Count(&remaining).Error
			if err != nil {
				return err
			}
			if remaining == 0 {
				return ErrLastAdmin
			}
		}

		return tx.Delete(&ds.User{}, id).Error
	})
}
