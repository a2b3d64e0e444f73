package clickhouse

import (
	"context"
	"net"
	"strconv"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"

	"github.com/benefits-incoming/internal/config"
	"github.com/benefits-incoming/internal/model"
)

// Options builds the driver options from cfg.
func Options(cfg config.ClickHouseConfig) *clickhouse.Options {
	return &clickhouse.Options{
		Addr: []string{net.JoinHostPort(cfg.Host, fmtPort(cfg.Port))},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.User,
			Password: cfg.Password,
		},
		DialTimeout: cfg.DialTimeout,
	}
}

// Connect opens and pings a single connection.
func Connect(ctx context.Context, cfg config.ClickHouseConfig) (driver.Conn, error) {
	conn, err := clickhouse.Open(Options(cfg))
	if err != nil {
		return nil, err
	}
	if err := conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func fmtPort(p int) string {
	if p <= 0 {
		return "9000"
	}
	return strconv.Itoa(p)
}

func createDatabaseSQL(db string) string {
	return "CREATE DATABASE IF NOT EXISTS " + db
}

// createTableSQL keys rows by (carrier, user); ReplacingMergeTree keeps the latest export.
func createTableSQL(db, table string) string {
	return `CREATE TABLE IF NOT EXISTS ` + db + `.` + table + ` (
		INSURANCE_COMPANY String, USER_ID String, FIRST_NAME String, LAST_NAME String,
		VERSION Int64, POSITION UInt32, RUN_ID UUID, EXPORTED_AT DateTime64(3)
	) ENGINE = ReplacingMergeTree(EXPORTED_AT)
	ORDER BY (INSURANCE_COMPANY, USER_ID)`
}

func deleteCarrierSQL(db, table string) string {
	return "DELETE FROM " + db + "." + table + " WHERE INSURANCE_COMPANY = ?"
}

// InitSchema creates the database and the enrollments table.
func InitSchema(ctx context.Context, conn driver.Conn, db, table string) error {
	if err := conn.Exec(ctx, createDatabaseSQL(db)); err != nil {
		return err
	}
	return conn.Exec(ctx, createTableSQL(db, table))
}

// rowValues maps a record to column values in table order.
func rowValues(r model.BenefitRecord, position int, runID uuid.UUID, now time.Time) []any {
	return []any{
		r.InsuranceCompany, r.UserID, r.FirstName, r.LastName,
		int64(r.Version), uint32(position), runID, now,
	}
}

// InsertBatch appends records through PrepareBatch and sends them in one block.
func InsertBatch(ctx context.Context, conn driver.Conn, db, table string, records []model.BenefitRecord, runID uuid.UUID, now time.Time) error {
	if len(records) == 0 {
		return nil
	}
	batch, err := conn.PrepareBatch(ctx, "INSERT INTO "+db+"."+table)
	if err != nil {
		return err
	}
	for i, r := range records {
		if err := batch.Append(rowValues(r, i, runID, now)...); err != nil {
			batch.Abort()
			return err
		}
	}
	return batch.Send()
}
