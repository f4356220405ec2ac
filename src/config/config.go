package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := os.Getenv("DATABASE_PORT")
	DATABASE_SSLMODE := os.Getenv("DATABASE_SSLMODE")
	DATABASE_TIMEZONE := os.Getenv("DATABASE_TIMEZONE")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

var API_ENV = os.Getenv("API_ENV")

// BookingHoldTTL is how long a pending booking keeps its seats before the
// expiry sweep releases them back to the departure date.
func BookingHoldTTL() time.Duration {
	ttlEnv := os.Getenv("BOOKING_HOLD_TTL_MINUTES")
	mins, err := strconv.Atoi(ttlEnv)
	if err != nil || mins <= 0 {
		mins = 60
	}
	return time.Duration(mins) * time.Minute
}

// DraftTTL is the Redis expiry on in-progress checkout drafts.
func DraftTTL() time.Duration {
	ttlEnv := os.Getenv("DRAFT_TTL_MINUTES")
	mins, err := strconv.Atoi(ttlEnv)
	if err != nil || mins <= 0 {
		mins = 120
	}
	return time.Duration(mins) * time.Minute
}
