package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/plutov/paypal/v4"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vuongnd/learnify/internal/models"
	paygw "github.com/vuongnd/learnify/internal/payment"
	"github.com/vuongnd/learnify/internal/service"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	RedisAddr  string
}

func LoadConfig() (*Config, error) {
	return &Config{
		DBHost:     os.Getenv("DB_HOST"),
		DBPort:     os.Getenv("DB_PORT"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
	}, nil
}

func LoadVNPayConfig() paygw.VNPayConfig {
	return paygw.VNPayConfig{
		TmnCode:    os.Getenv("VNPAY_TMN_CODE"),
		HashSecret: os.Getenv("VNPAY_HASH_SECRET"),
		BaseURL:    os.Getenv("VNPAY_BASE_URL"),
	}
}

func LoadPayPalConfig() paygw.PayPalConfig {
	rate, err := strconv.ParseInt(os.Getenv("PAYPAL_EXCHANGE_RATE"), 10, 64)
	if err != nil || rate <= 0 {
		rate = 24500
	}
	return paygw.PayPalConfig{
		ExchangeRate: rate,
		BrandName:    "Learnify",
	}
}

func InitPayPalClient() (*paypal.Client, error) {
	base := paypal.APIBaseSandBox
	if os.Getenv("PAYPAL_LIVE") == "true" {
		base = paypal.APIBaseLive
	}
	return paypal.NewClient(
		os.Getenv("PAYPAL_CLIENT_ID"),
		os.Getenv("PAYPAL_CLIENT_SECRET"),
		base,
	)
}

func InitRedis(cfg *Config) *redis.Client {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}
	return redis.NewClient(&redis.Options{Addr: addr})
}

func LoadSMTPConfig() service.SMTPConfig {
	return service.SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     os.Getenv("SMTP_PORT"),
		Username: os.Getenv("SMTP_USERNAME"),
		Password: os.Getenv("SMTP_PASSWORD"),
	}
}

func LoadSettlementConfig() service.SettlementConfig {
	share, err := strconv.ParseFloat(os.Getenv("INSTRUCTOR_SHARE"), 64)
	if err != nil || share <= 0 || share > 1 {
		share = 0.70
	}
	return service.SettlementConfig{InstructorShare: share}
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}

func InitDatabase(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := enableUUIDExtension(db); err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&models.Role{}, &models.User{}, &models.Category{}, &models.Course{},
		&models.Coupon{}, &models.Transaction{}, &models.TransactionItem{},
		&models.Earning{}, &models.PayoutRequest{},
	)
	if err != nil {
		return nil, err
	}

	seedRoles(db)

	return db, nil
}

func seedRoles(db *gorm.DB) {
	roles := []models.Role{
		{Name: "student"},
		{Name: "instructor"},
		{Name: "admin"},
	}

	for _, role := range roles {
		var existingRole models.Role
		result := db.Where("name = ?", role.Name).First(&existingRole)
		if result.Error != nil {
			db.Create(&role)
		}
	}
}
