package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Config carries the tunables of the scheduling engine. Everything has a
// default so the service boots from a bare environment.
type Config struct {
	Port string

	// Minutes before a pending booking's start at which the reminder sweep
	// raises an "upcoming booking" alert.
	UpcomingMinutesBefore int

	// Minutes a party may sit on the waiting list before the sweep raises a
	// "long waiting" alert.
	LongWaitMinutes int

	// How far past a conflicting booking the auto-scheduler searches for a
	// free slot before giving up. Defaults to 12 hours, roughly the rest of
	// a business day.
	AutoScheduleLookahead time.Duration

	SweepInterval time.Duration
	SyncInterval  time.Duration
}

func Load() Config {
	return Config{
		Port:                  getEnv("PORT", "8080"),
		UpcomingMinutesBefore: getEnvInt("UPCOMING_MINUTES_BEFORE", 30),
		LongWaitMinutes:       getEnvInt("LONG_WAIT_MINUTES", 20),
		AutoScheduleLookahead: time.Duration(getEnvInt("AUTO_SCHEDULE_LOOKAHEAD_MINUTES", 720)) * time.Minute,
		SweepInterval:         time.Duration(getEnvInt("SWEEP_INTERVAL_SECONDS", 60)) * time.Second,
		SyncInterval:          time.Duration(getEnvInt("SYNC_INTERVAL_SECONDS", 60)) * time.Second,
	}
}

// InitDB connects to MySQL when DB_HOST is configured, otherwise falls back
// to a local SQLite file so development needs no database server.
func InitDB() (*gorm.DB, error) {
	host := os.Getenv("DB_HOST")
	if host == "" {
		path := getEnv("DB_PATH", "frontdesk.db")
		return gorm.Open(sqlite.Open(path), &gorm.Config{})
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		os.Getenv("DB_USER"),
		os.Getenv("DB_PASSWORD"),
		host,
		getEnv("DB_PORT", "3306"),
		os.Getenv("DB_NAME"),
	)
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
