package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"prostore-backend/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite:"

// PoolConfig holds the connection pool limits applied after connecting.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open selects the dialector from the DSN: "sqlite:<path>" opens SQLite for
// local development, anything else is treated as a PostgreSQL DSN.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		dsn = "host=localhost user=postgres password=postgres dbname=prostore port=5432 sslmode=disable"
	}

	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, sqlitePrefix) {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	} else {
		dialector = postgres.Open(dsn)
	}

	return gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
}

// Connect opens the process-wide pool and applies the pool limits. SQLite
// always gets a single connection: it locks the whole file on write.
func Connect(dsn string, pool PoolConfig) (*gorm.DB, error) {
	db, err := Open(dsn)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if db.Dialector.Name() == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
	} else if pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if db.Dialector.Name() == "postgres" {
		if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS pgcrypto;`).Error; err != nil {
			return fmt.Errorf("failed to enable pgcrypto extension: %w", err)
		}
	}

	return db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
	)
}

func CreateDefaultAdmin(db *gorm.DB) error {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	adminPassword := os.Getenv("ADMIN_PASSWORD")

	if adminEmail == "" {
		adminEmail = "admin@prostore.local"
	}
	if adminPassword == "" {
		adminPassword = "admin123"
	}

	var existingUser models.User
	result := db.Where("email = ?", adminEmail).First(&existingUser)
	if result.Error == nil {
		return nil
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := models.User{
		Email:    adminEmail,
		Password: string(hashedPassword),
		Role:     models.RoleAdmin,
		Name:     "Admin User",
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.WithField("email", adminEmail).Info("default admin created")
	return nil
}

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Ping checks database reachability within timeout.
func Ping(ctx context.Context, p Pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := p.PingContext(ctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	return nil
}

// Close releases the pool. Safe to call with a nil db.
func Close(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
