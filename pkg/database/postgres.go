package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	migrateV4 "github.com/golang-migrate/migrate/v4"
	migratePostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	gormPostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// PoolOptions содержит настройки пула соединений
type PoolOptions struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ApplicationName string
	LogLevel        logger.LogLevel
}

// NewPostgresDB создает новое подключение к PostgreSQL.
// DSN разбирается pgx, *sql.DB из pgx/stdlib передается в gorm.
func NewPostgresDB(dsn string, opts PoolOptions) (*gorm.DB, error) {
	connConfig, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database dsn: %w", err)
	}
	if opts.ApplicationName != "" {
		connConfig.RuntimeParams["application_name"] = opts.ApplicationName
	}

	sqlDB := stdlib.OpenDB(*connConfig)

	logLevel := opts.LogLevel
	if logLevel == 0 {
		logLevel = logger.Warn
	}
	db, err := gorm.Open(gormPostgres.New(gormPostgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	maxIdle := opts.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 5
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxIdle)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return db, nil
}

// Ping проверяет доступность БД; используется health-эндпоинтом
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := GetSQLDB(db)
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// MigrateDB применяет SQL-миграции из каталога migrationsPath
func MigrateDB(db *gorm.DB, migrationsPath string) error {
	log.Printf("[Migrate] Применение миграций из '%s'...", migrationsPath)

	sqlDB, err := GetSQLDB(db)
	if err != nil {
		return err
	}

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("не удалось проверить подключение к БД перед миграцией: %w", err)
	}

	driver, err := migratePostgres.WithInstance(sqlDB, &migratePostgres.Config{})
	if err != nil {
		return fmt.Errorf("не удалось создать драйвер postgres для migrate: %w", err)
	}

	m, err := migrateV4.NewWithDatabaseInstance("file://"+migrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("не удалось создать экземпляр migrate: %w", err)
	}

	err = m.Up()
	switch {
	case errors.Is(err, migrateV4.ErrNoChange):
		log.Println("[Migrate] Изменений в миграциях не найдено, база данных уже актуальна.")
	case err != nil:
		return fmt.Errorf("ошибка применения миграций 'up': %w", err)
	default:
		log.Println("[Migrate] Миграции успешно применены.")
	}

	return nil
}

// GetSQLDB возвращает базовый *sql.DB из *gorm.DB
func GetSQLDB(gormDB *gorm.DB) (*sql.DB, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	return sqlDB, nil
}
