package main

import (
	"log"

	"github.com/joho/godotenv"

	"github.com/sasanhatam/Damonservice/internal/app/dsn"
	"github.com/sasanhatam/Damonservice/internal/app/repository"
)

func main() {
	// Загрузка переменных окружения из .env файла
	_ = godotenv.Load()

	// Получение DSN строки подключения
	dsnStr := dsn.FromEnv()
	if dsnStr == "" {
		log.Fatal("DSN string is empty. Check your .env file")
	}

	// Подключение и миграция всех моделей (AutoMigrate внутри конструктора)
	repo, err := repository.NewPostgres(dsnStr)
	if err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	defer repo.Close()

	log.Println("Database migration completed successfully")

	// Стартовые данные: администратор, категории, устройства, коэффициенты
	if err := repository.EnsureSeedData(repo); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	log.Println("Database seeding completed successfully")
}
