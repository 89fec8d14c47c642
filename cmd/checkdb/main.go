package main

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sasanhatam/Damonservice/internal/app/ds"
	"github.com/sasanhatam/Damonservice/internal/app/dsn"
)

// Диагностическая утилита: печатает содержимое каталога устройств
func main() {
	_ = godotenv.Load()

	dsnStr := dsn.FromEnv()
	if dsnStr == "" {
		log.Fatal("DSN string is empty. Check your .env file")
	}

	db, err := gorm.Open(postgres.Open(dsnStr), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	var devices []ds.Device
	err = db.Find(&devices).Error
	if err != nil {
		log.Fatal("Failed to get devices:", err)
	}

	fmt.Println("Devices in database:")
	for _, device := range devices {
		imageURL := "NULL"
		if device.ImageURL != nil {
			imageURL = *device.ImageURL
		}
		fmt.Printf("ID: %d, Model: %s, CategoryID: %d, Active: %v, ImageURL: %s\n",
			device.ID, device.ModelName, device.CategoryID, device.IsActive, imageURL)
	}
}
