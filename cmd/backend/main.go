package main

import (
	"log"

	"github.com/sasanhatam/Damonservice/internal/api"

	_ "github.com/sasanhatam/Damonservice/docs"
)

// @title Damonservice API
// @version 1.0
// @description Бэкенд расчета и согласования цен на климатическое оборудование
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	log.Println("App start")
	api.StartServer()
	log.Println("App terminated")
}
