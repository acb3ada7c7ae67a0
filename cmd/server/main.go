package main

import (
	"log"

	"github.com/hirewire/hirewire/internal/config"
	"github.com/hirewire/hirewire/internal/model"
	"github.com/hirewire/hirewire/internal/server"
	"github.com/hirewire/hirewire/pkg/database"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db := database.Connect()
	if err := migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}
	if err := seedRoles(db); err != nil {
		log.Fatalf("failed to seed roles: %v", err)
	}
	if cfg.AppEnv == "development" {
		if err := seedAdminUser(db); err != nil {
			log.Fatalf("failed to seed admin user: %v", err)
		}
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatalf("invalid REDIS_URL: %v", err)
		}
		redisClient = redis.NewClient(opts)
	} else {
		log.Println("REDIS_URL not set, running single-instance without redis")
	}

	srv := server.New(cfg, db, redisClient)
	if err := srv.Run(); err != nil {
		log.Fatalf("server exited with error: %v", err)
	}
}

func migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.User{},
		&model.Profile{},
		&model.BlacklistedToken{},
		&model.Department{},
		&model.Stage{},
		&model.Job{},
		&model.JobUser{},
		&model.Candidate{},
		&model.CandidateUser{},
		&model.CandidateJob{},
		&model.Document{},
		&model.Feedback{},
		&model.Note{},
		&model.Notification{},
	)
}

func seedRoles(db *gorm.DB) error {
	defaultRoles := []model.Role{
		{ID: model.RoleAdministrator, Name: "administrator", Description: "Full access, user management"},
		{ID: model.RoleRecruiter, Name: "recruiter", Description: "Owns candidates and positions"},
		{ID: model.RoleInterviewer, Name: "interviewer", Description: "Interviews and leaves feedback"},
	}

	for _, role := range defaultRoles {
		var count int64
		if err := db.Model(&model.Role{}).
			Where("id = ?", role.ID).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			if err := db.Create(&role).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

func seedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("email = ?", "admin@hirewire.local").
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	roleID := model.RoleAdministrator
	admin := model.User{
		FirstName:    "System",
		LastName:     "Administrator",
		Email:        "admin@hirewire.local",
		PasswordHash: string(hash),
		RoleID:       &roleID,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	profile := model.Profile{UserID: admin.ID, Locale: "en"}
	if err := db.Create(&profile).Error; err != nil {
		return err
	}

	log.Println("seeded admin user admin@hirewire.local (password: admin123)")
	return nil
}
