// Package store holds the remote stores attendance records are written to.
// Every backend replaces an existing record on write.
package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"liveattendance/internal/attendance"
	"liveattendance/internal/db"
)

const (
	DriverMemory    = "memory"
	DriverFirebase  = "firebase"
	DriverFirestore = "firestore"
	DriverPostgres  = "postgres"
	DriverDynamoDB  = "dynamodb"
)

// DefaultFirebaseDatabaseURL is the realtime database the mobile app writes to.
const DefaultFirebaseDatabaseURL = "https://liveattendance-336301-default-rtdb.asia-southeast1.firebasedatabase.app"

var ErrUnknownDriver = errors.New("unknown store driver")

type Store interface {
	attendance.Writer
	Delete(ctx context.Context, collection, key string) error
	Close() error
}

type Config struct {
	Driver     string         `yaml:"driver"`
	Collection string         `yaml:"collection"`
	Firebase   FirebaseConfig `yaml:"firebase"`
	Postgres   PostgresConfig `yaml:"postgres"`
	DynamoDB   DynamoDBConfig `yaml:"dynamodb"`
}

type FirebaseConfig struct {
	DatabaseURL     string `yaml:"database_url"`
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	CredentialsJSON string `yaml:"-"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type DynamoDBConfig struct {
	Table    string `yaml:"table"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
}

// Open connects the backend named by cfg.Driver.
func Open(ctx context.Context, cfg Config) (Store, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	log.Printf("[store] opening %s store", driver)

	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFirebase, "":
		f, err := OpenFirebase(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		return f, nil
	case DriverFirestore:
		f, err := OpenFirestore(ctx, cfg.Firebase)
		if err != nil {
			return nil, err
		}
		return f, nil
	case DriverPostgres:
		sqlDB, err := db.Connect(cfg.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		p := NewPostgres(sqlDB)
		if err := p.Migrate(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return p, nil
	case DriverDynamoDB:
		d, err := OpenDynamoDB(ctx, cfg.DynamoDB)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
}
