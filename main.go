package main

import (
	"log"

	"github.com/learnsphere/learnsphere/config"
	"github.com/learnsphere/learnsphere/routes"
	"github.com/learnsphere/learnsphere/utils"
)

func main() {
	// Initialize logger
	if err := utils.InitLogger(); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}

	// Load environment variables
	_, err := config.LoadConfig()
	if err != nil {
		utils.LogError("Error loading config: %v", err)
		log.Fatal("Error loading config:", err)
	}

	// Initialize database
	config.InitDB()

	// Set up router
	router := routes.SetupRouter()

	utils.LogInfo("Server starting on port 8080")
	// Start server
	if err := router.Run(":8080"); err != nil {
		utils.LogError("Error starting server: %v", err)
		log.Fatal("Error starting server:", err)
	}
}
