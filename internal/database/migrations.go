package database

import (
	"fmt"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/yukikurage/gatehouse-api/internal/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// migrations lists every schema change in order. Released entries must never
// be edited; append a new one instead.
func migrations() []*gormigrate.Migration {
	return []*gormigrate.Migration{
		{
			ID: "20251001-0000-accounts-organizations",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.User{},
					&models.Profile{},
					&models.Organization{},
					&models.OrganizationRole{},
					&models.OrganizationMember{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(
					&models.OrganizationMember{},
					&models.OrganizationRole{},
					&models.Organization{},
					&models.Profile{},
					&models.User{},
				)
			},
		},
		{
			ID: "20251001-0001-invitations",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(
					&models.GeneralInviteLink{},
					&models.Invitation{},
				)
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.Invitation{}, &models.GeneralInviteLink{})
			},
		},
		{
			ID: "20251008-0000-notifications",
			Migrate: func(tx *gorm.DB) error {
				return tx.AutoMigrate(&models.Notification{})
			},
			Rollback: func(tx *gorm.DB) error {
				return tx.Migrator().DropTable(&models.Notification{})
			},
		},
	}
}

// Migrate applies all pending migrations.
func Migrate(db *gorm.DB, log *zap.Logger) error {
	log.Info("running database migrations")
	m := gormigrate.New(db, gormigrate.DefaultOptions, migrations())
	if err := m.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	log.Info("database migrations completed")
	return nil
}
