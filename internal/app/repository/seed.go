package repository

import (
	"fmt"
	"sort"

	"golang.org/x/crypto/bcrypt"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/role"
)

func sortSummaries(summaries []ProjectSummary) {
	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].LastActivity.After(summaries[j].LastActivity)
	})
}

// EnsureSeedData загружает стартовые данные в пустое хранилище:
// пользователи, категории, устройства и активный набор коэффициентов.
// Явный шаг инициализации, вызывается при старте сервиса и из cmd/migrate
func EnsureSeedData(r Repository) error {
	users, err := r.ListUsers()
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil // хранилище уже наполнено
	}

	seedUsers := []struct {
		login, password, fullName string
		role                      role.Role
	}{
		{"admin", "admin", "System Administrator", role.Admin},
		{"ali", "123", "Ali Mohammadi", role.Employee},
		{"sara", "123", "Sara Rezaei", role.Employee},
	}
	for _, su := range seedUsers {
		hash, err := bcrypt.GenerateFromPassword([]byte(su.password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("failed to hash seed password: %w", err)
		}
		user := ds.User{
			Login:    su.login,
			Password: string(hash),
			FullName: su.fullName,
			Role:     su.role,
			IsActive: true,
		}
		if err := r.SaveUser(&user); err != nil {
			return err
		}
	}

	categories := []ds.Category{
		{Name: "VRF Systems", IsActive: true},
		{Name: "Chillers", IsActive: true},
		{Name: "Air Handling Units (AHU)", IsActive: true},
	}
	for i := range categories {
		if err := r.SaveCategory(&categories[i]); err != nil {
			return err
		}
	}

	devices := []ds.Device{
		{ModelName: "VRF-Outdoor-20HP", CategoryID: categories[0].ID, IsActive: true, FactoryPrice: 15000, Length: 2.5, Weight: 400},
		{ModelName: "VRF-Indoor-Cassette", CategoryID: categories[0].ID, IsActive: true, FactoryPrice: 800, Length: 0.8, Weight: 30},
		{ModelName: "Screw-Chiller-100T", CategoryID: categories[1].ID, IsActive: true, FactoryPrice: 45000, Length: 4.0, Weight: 2500},
		{ModelName: "Scroll-Chiller-Mini", CategoryID: categories[1].ID, IsActive: true, FactoryPrice: 12000, Length: 1.5, Weight: 600},
		{ModelName: "AHU-Industrial-5000", CategoryID: categories[2].ID, IsActive: true, FactoryPrice: 8000, Length: 3.0, Weight: 900},
		{ModelName: "AHU-Hygienic-2000", CategoryID: categories[2].ID, IsActive: true, FactoryPrice: 11000, Length: 2.2, Weight: 750},
	}
	for i := range devices {
		if err := r.SaveDevice(&devices[i]); err != nil {
			return err
		}
	}

	return r.ReplaceSettings(&ds.Settings{
		IsActive:           true,
		DiscountMultiplier: 0.38,
		FreightRate:        1000,
		CustomsNumerator:   350000,
		CustomsDenominator: 150000,
		WarrantyRate:       0.05,
		CommissionFactor:   0.95,
		OfficeFactor:       0.95,
		ProfitFactor:       0.65,
	})
}
