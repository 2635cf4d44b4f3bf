package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/TravisChandler1/ewaede/internal/models"
	"github.com/TravisChandler1/ewaede/internal/repository"
	"github.com/TravisChandler1/ewaede/pkg/config"
	"github.com/TravisChandler1/ewaede/pkg/database"
)

func main() {
	var (
		email    = flag.String("email", "", "admin email address")
		password = flag.String("password", "", "admin password")
		fullName = flag.String("name", "Platform Admin", "admin display name")
	)
	flag.Parse()

	if *email == "" || *password == "" {
		log.Fatal("both -email and -password are required")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	users := repository.NewUserRepository(db)
	profiles := repository.NewProfileRepository(db)

	normalized := strings.ToLower(strings.TrimSpace(*email))
	if _, err := users.FindByEmail(ctx, normalized); err == nil {
		log.Fatalf("an account with email %s already exists", normalized)
	} else if !errors.Is(err, sql.ErrNoRows) {
		log.Fatalf("failed to check existing account: %v", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        normalized,
		PasswordHash: string(hash),
	}
	if err := users.Create(ctx, user); err != nil {
		log.Fatalf("failed to create account: %v", err)
	}

	profile := &models.UserProfile{
		UserID:   user.ID,
		FullName: *fullName,
		Email:    normalized,
		Role:     models.RoleAdmin,
		IsActive: true,
	}
	if err := profiles.Create(ctx, profile); err != nil {
		log.Fatalf("failed to create profile: %v", err)
	}

	log.Printf("admin account created: %s (%s)", normalized, user.ID)
}
