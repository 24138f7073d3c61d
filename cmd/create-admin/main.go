package main

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"csoportal/backend/internal/auth"
	"csoportal/backend/internal/config"
	"csoportal/backend/internal/domain"
	"csoportal/backend/internal/logger"
	"csoportal/backend/internal/storage"
	sqlstore "csoportal/backend/internal/storage/sql"
)

// main 在数据库中创建一个超级管理员账号，用于系统初始化。
func main() {
	var (
		name     = flag.String("name", "Administrator", "full name of the admin account")
		email    = flag.String("email", "", "login email (required)")
		password = flag.String("password", "", "login password (required, at least 8 characters)")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}

	if cfg.Database.Type == "" {
		log.Fatal("database.type is not configured, set CSOPORTAL_DATABASE_TYPE to mysql or postgres")
	}
	if !auth.ValidateEmail(*email) {
		log.Fatal("a valid -email is required")
	}
	if err := auth.ValidatePassword(*password); err != nil {
		log.Fatal("invalid -password", zap.Error(err))
	}

	store, err := sqlstore.NewStore(
		cfg.Database.Type,
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
	)
	if err != nil {
		log.Fatal("failed to connect database", zap.Error(err))
	}
	defer store.Close()

	normalized := strings.ToLower(*email)
	if _, err := store.GetStaffByEmail(normalized); err == nil {
		log.Fatal("a staff account with this email already exists", zap.String("email", normalized))
	} else if !errors.Is(err, storage.ErrStaffNotFound) {
		log.Fatal("failed to check existing account", zap.Error(err))
	}

	hashed, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatal("failed to hash password", zap.Error(err))
	}

	registrationID, err := nextRegistrationID(store)
	if err != nil {
		log.Fatal("failed to allocate registration id", zap.Error(err))
	}

	admin := &domain.Staff{
		RegistrationID: registrationID,
		Name:           *name,
		Email:          normalized,
		Password:       hashed,
		Role:           domain.RoleSupAdmin,
		EmailVerified:  true,
	}
	if err := store.CreateStaff(admin); err != nil {
		log.Fatal("failed to create admin account", zap.Error(err))
	}

	log.Info("admin account created",
		zap.String("registration_id", admin.RegistrationID),
		zap.String("email", admin.Email),
		zap.String("role", admin.Role),
	)
}

// nextRegistrationID 顺延分配员工编号，冲突时继续向后尝试。
func nextRegistrationID(repo storage.StaffRepository) (string, error) {
	latest, err := repo.LatestStaffRegistrationID()
	if err != nil {
		return "", err
	}

	n := 1
	if latest != "" {
		if _, err := fmt.Sscanf(latest, "Staff-%d", &n); err == nil {
			n++
		}
	}

	for {
		candidate := domain.FormatStaffRegistrationID(n)
		exists, err := repo.StaffRegistrationIDExists(candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		n++
	}
}
