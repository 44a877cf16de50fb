package model

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/warp-contracts/token-syncer/src/utils/build_info"
	"github.com/warp-contracts/token-syncer/src/utils/config"
	l "github.com/warp-contracts/token-syncer/src/utils/logger"
	"github.com/warp-contracts/token-syncer/src/utils/model/sql_migrations"

	"github.com/glebarez/sqlite"
	migrate "github.com/rubenv/sql-migrate"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const DialectorPostgres = "postgres"

func Connect(ctx context.Context, dbConfig *config.Database, username, password, applicationName string) (self *gorm.DB, err error) {
	log := l.NewSublogger("db")

	logger := logger.New(log,
		logger.Config{
			SlowThreshold:             500 * time.Millisecond, // Slow SQL threshold
			LogLevel:                  logger.Error,           // Log level
			IgnoreRecordNotFoundError: true,                   // Ignore ErrRecordNotFound error for logger
			Colorful:                  false,                  // Disable color
		},
	)

	if dbConfig.Driver == config.DatabaseDriverSqlite {
		self, err = gorm.Open(sqlite.Open(dbConfig.Path), &gorm.Config{Logger: logger})
		if err != nil {
			return
		}

		db, err := self.DB()
		if err != nil {
			return nil, err
		}

		// SQLite has a single writer, one connection serializes transactions
		db.SetMaxOpenConns(1)
		err = ping(ctx, dbConfig, self)
		return self, err
	}

	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s application_name=%s/warp.cc/%s",
		dbConfig.Host,
		dbConfig.Port,
		username,
		password,
		dbConfig.Name,
		dbConfig.SslMode,
		applicationName,
		build_info.Version,
	)

	if dbConfig.ClientKey != "" && dbConfig.ClientCert != "" && dbConfig.CaCert != "" {
		log.Info("Using SSL certificates from variables")

		var keyFile, certFile, caFile *os.File
		keyFile, err = os.CreateTemp("", "key.pem")
		if err != nil {
			return
		}
		defer os.Remove(keyFile.Name())
		_, err = keyFile.WriteString(dbConfig.ClientKey)
		if err != nil {
			return
		}

		certFile, err = os.CreateTemp("", "cert.pem")
		if err != nil {
			return
		}
		defer os.Remove(certFile.Name())
		_, err = certFile.WriteString(dbConfig.ClientCert)
		if err != nil {
			return
		}

		caFile, err = os.CreateTemp("", "ca.pem")
		if err != nil {
			return
		}
		defer os.Remove(caFile.Name())
		_, err = caFile.WriteString(dbConfig.CaCert)
		if err != nil {
			return
		}

		dsn += fmt.Sprintf(" sslcert=%s sslkey=%s sslrootcert=%s", certFile.Name(), keyFile.Name(), caFile.Name())
	}

	self, err = gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger})
	if err != nil {
		return
	}

	db, err := self.DB()
	if err != nil {
		return
	}

	db.SetMaxOpenConns(dbConfig.MaxOpenConns)
	db.SetMaxIdleConns(dbConfig.MaxIdleConns)
	db.SetConnMaxIdleTime(dbConfig.ConnMaxIdleTime)
	db.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)
	err = ping(ctx, dbConfig, self)
	if err != nil {
		return
	}

	return
}

func NewConnection(ctx context.Context, conf *config.Config, applicationName string) (self *gorm.DB, err error) {
	if conf.Database.Driver == config.DatabaseDriverSqlite {
		self, err = Connect(ctx, &conf.Database, "", "", applicationName)
		if err != nil {
			return
		}
		_, err = MigrateDB(self, conf.Database.Driver)
		return
	}

	err = Migrate(ctx, conf)
	if err != nil {
		return
	}

	return Connect(ctx, &conf.Database, conf.Database.User, conf.Database.Password, applicationName)
}

// Runs migrations. PostgreSQL uses the dedicated migration user.
func Migrate(ctx context.Context, conf *config.Config) (err error) {
	log := l.NewSublogger("db-migrate")

	if conf.Database.Driver == config.DatabaseDriverSqlite {
		self, err := Connect(ctx, &conf.Database, "", "", "migration")
		if err != nil {
			return err
		}
		db, err := self.DB()
		if err != nil {
			return err
		}
		defer db.Close()

		_, err = MigrateDB(self, conf.Database.Driver)
		return err
	}

	if conf.Database.MigrationUser == "" || conf.Database.MigrationPassword == "" {
		log.Info("Migration user not set, skipping migrations")
		return
	}

	// Use special migration user
	self, err := Connect(ctx, &conf.Database, conf.Database.MigrationUser, conf.Database.MigrationPassword, "migration")
	if err != nil {
		return
	}

	db, err := self.DB()
	if err != nil {
		return
	}
	defer db.Close()

	_, err = MigrateDB(self, conf.Database.Driver)
	if err != nil {
		return
	}

	conf.Database.MigrationUser = ""
	conf.Database.MigrationPassword = ""

	return
}

// Options of transactions that modify data. SQLite serializes transactions on its own.
func WriteTxOptions(db *gorm.DB) []*sql.TxOptions {
	if db.Dialector.Name() == DialectorPostgres {
		return []*sql.TxOptions{{Isolation: sql.LevelRepeatableRead}}
	}
	return nil
}

// Applies all pending migrations on an open connection
func MigrateDB(self *gorm.DB, driver string) (n int, err error) {
	log := l.NewSublogger("db-migrate")

	dialect := "postgres"
	if driver == config.DatabaseDriverSqlite {
		dialect = "sqlite3"
	}

	migrations := &migrate.HttpFileSystemMigrationSource{
		FileSystem: http.FS(sql_migrations.FS),
	}

	db, err := self.DB()
	if err != nil {
		return
	}

	n, err = migrate.Exec(db, dialect, migrations, migrate.Up)
	if err != nil {
		return
	}

	log.WithField("num", n).Info("Applied migrations")
	return
}

func ping(ctx context.Context, dbConfig *config.Database, db *gorm.DB) (err error) {
	if dbConfig.PingTimeout < 0 {
		// Ping disabled
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return
	}

	dbCtx, cancel := context.WithTimeout(ctx, dbConfig.PingTimeout)
	defer cancel()

	err = sqlDB.PingContext(dbCtx)
	if err != nil {
		return
	}
	return
}
