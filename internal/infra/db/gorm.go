package db

import (
	"time"

	"github.com/Shreyr69/indiport/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
func Connect(dsn string) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gormDB, nil
}

// Migrate はこのサービスが持つテーブルを作る
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&model.Profile{},
		&model.Product{},
		&model.DeliveryMethod{},
		&model.UserAddress{},
		&model.CartItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.RFQ{},
		&model.Review{},
		&model.AuditLog{},
		&model.SavedProduct{},
		&model.Category{},
	)
}
