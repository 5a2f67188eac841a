package main

import (
	"flag"
	"log"

	"lilium-backend/internal/model"
	"lilium-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	email := flag.String("email", "admin@lilium.iq", "account email to reset")
	password := flag.String("password", "admin123", "new password")
	flag.Parse()

	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, replying on system env")
	}

	// 2. Setup Database
	db := database.ConnectDB()

	// 3. Find User
	var user model.User
	if err := db.Where("email = ?", *email).First(&user).Error; err != nil {
		log.Fatalf("❌ User %s not found in database: %v", *email, err)
	}

	// 4. Hash new password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("❌ Failed to hash password: %v", err)
	}

	// 5. Update and force re-login everywhere
	updates := map[string]interface{}{
		"password":      string(hashedPassword),
		"token_version": uuid.New().String(),
	}
	if err := db.Model(&user).Updates(updates).Error; err != nil {
		log.Fatalf("❌ Failed to update password in DB: %v", err)
	}

	log.Printf("✅ Success! Password for %s has been reset to: %s", *email, *password)
}
