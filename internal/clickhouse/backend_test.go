package clickhouse

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/benefits-incoming/internal/config"
	"github.com/benefits-incoming/internal/model"
)

func TestOptions(t *testing.T) {
	opts := Options(config.ClickHouseConfig{
		Host:        "ch.local",
		Database:    "benefits",
		User:        "svc",
		Password:    "secret",
		DialTimeout: 3 * time.Second,
	})
	assert.Equal(t, []string{"ch.local:9000"}, opts.Addr)
	assert.Equal(t, "benefits", opts.Auth.Database)
	assert.Equal(t, "svc", opts.Auth.Username)
	assert.Equal(t, 3*time.Second, opts.DialTimeout)
}

func TestSchemaSQL(t *testing.T) {
	assert.Equal(t, "CREATE DATABASE IF NOT EXISTS benefits", createDatabaseSQL("benefits"))

	ddl := createTableSQL("benefits", "enrollments")
	assert.Contains(t, ddl, "CREATE TABLE IF NOT EXISTS benefits.enrollments (")
	assert.Contains(t, ddl, "ENGINE = ReplacingMergeTree(EXPORTED_AT)")
	assert.Contains(t, ddl, "ORDER BY (INSURANCE_COMPANY, USER_ID)")

	assert.Equal(t, "DELETE FROM benefits.enrollments WHERE INSURANCE_COMPANY = ?", deleteCarrierSQL("benefits", "enrollments"))
}

func TestRowValues(t *testing.T) {
	runID := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	r := model.BenefitRecord{UserID: "U1", FirstName: "Jane", LastName: "Doe", Version: 2, InsuranceCompany: "Acme"}

	assert.Equal(t, []any{"Acme", "U1", "Jane", "Doe", int64(2), uint32(4), runID, now}, rowValues(r, 4, runID, now))
}
