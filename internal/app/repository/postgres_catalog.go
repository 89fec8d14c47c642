package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
)

// Методы для категорий и устройств

func (r *PostgresRepository) ListCategories() ([]ds.Category, error) {
	var categories []ds.Category
	err := r.db.Order("id").Find(&categories).Error
	return categories, err
}

func (r *PostgresRepository) ListActiveCategories() ([]ds.Category, error) {
	var categories []ds.Category
	err := r.db.Where("is_active = ?", true).Order("id").Find(&categories).Error
	return categories, err
}

func (r *PostgresRepository) SaveCategory(c *ds.Category) error {
	if c.ID == 0 {
		return r.db.Create(c).Error
	}
	return r.db.Save(c).Error
}

// Удаление категории не каскадирует на устройства:
// висячая ссылка отображается как "Unknown"
func (r *PostgresRepository) DeleteCategory(id uint) error {
	return r.db.Delete(&ds.Category{}, id).Error
}

func (r *PostgresRepository) ListDevices() ([]ds.Device, error) {
	var devices []ds.Device
	err := r.db.Order("id").Find(&devices).Error
	return devices, err
}

func (r *PostgresRepository) GetDeviceByID(id uint) (*ds.Device, error) {
	var device ds.Device
	err := r.db.First(&device, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &device, nil
}

// Поиск активных устройств для сотрудника: закрытые поля не попадают в выдачу
func (r *PostgresRepository) SearchActiveDevices(query string, categoryID uint) ([]SafeDevice, error) {
	tx := r.db.Where("is_active = ?", true)
	if query != "" {
		tx = tx.Where("model_name ILIKE ?", "%"+query+"%")
	}
	if categoryID != 0 {
		tx = tx.Where("category_id = ?", categoryID)
	}

	var dbDevices []ds.Device
	if err := tx.Order("id").Find(&dbDevices).Error; err != nil {
		return nil, err
	}

	categories, err := r.ListCategories()
	if err != nil {
		return nil, err
	}
	categoryNames := make(map[uint]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	devices := make([]SafeDevice, len(dbDevices))
	for i, d := range dbDevices {
		name, ok := categoryNames[d.CategoryID]
		if !ok {
			name = "Unknown"
		}
		imageURL := ""
		if d.ImageURL != nil {
			imageURL = *d.ImageURL
		}
		devices[i] = SafeDevice{
			ID:           d.ID,
			ModelName:    d.ModelName,
			CategoryID:   d.CategoryID,
			CategoryName: name,
			ImageURL:     imageURL,
		}
	}
	return devices, nil
}

func (r *PostgresRepository) SaveDevice(d *ds.Device) error {
	if d.ID == 0 {
		return r.db.Create(d).Error
	}
	return r.db.Save(d).Error
}

// Физическое удаление: история запросов хранит снимки и не страдает
func (r *PostgresRepository) DeleteDevice(id uint) error {
	return r.db.Delete(&ds.Device{}, id).Error
}

func (r *PostgresRepository) UpdateDeviceImage(id uint, imageURL string) error {
	result := r.db.Model(&ds.Device{}).Where("id = ?", id).Update("image_url", imageURL)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
