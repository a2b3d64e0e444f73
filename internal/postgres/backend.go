package postgres

import (
	"context"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/benefits-incoming/internal/config"
	"github.com/benefits-incoming/internal/model"
)

// Columns in insert order.
var enrollmentColumns = []string{
	"insurance_company", "user_id", "first_name", "last_name", "version",
	"position", "run_id", "exported_at",
}

func createTableSQL(table string) string {
	return `
CREATE TABLE IF NOT EXISTS ` + table + ` (
    insurance_company TEXT NOT NULL,
    user_id TEXT NOT NULL,
    first_name TEXT NOT NULL,
    last_name TEXT NOT NULL,
    version BIGINT NOT NULL,
    position INTEGER NOT NULL,
    run_id UUID NOT NULL,
    exported_at TIMESTAMPTZ NOT NULL,
    PRIMARY KEY (insurance_company, user_id)
);
CREATE INDEX IF NOT EXISTS idx_` + table + `_run_id ON ` + table + `(run_id);
`
}

// ConnString builds a postgres:// URL from cfg.
func ConnString(cfg config.PostgresConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, fmtPort(cfg.Port)),
		Path:   "/" + cfg.Database,
	}
	return u.String()
}

// CreatePool creates a pgx connection pool. A run is sequential, so one
// connection is enough.
func CreatePool(ctx context.Context, cfg config.PostgresConfig) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(ConnString(cfg))
	if err != nil {
		return nil, err
	}
	pcfg.MaxConns = 1
	pcfg.MinConns = 1
	return pgxpool.NewWithConfig(ctx, pcfg)
}

func fmtPort(p int) string {
	if p <= 0 {
		return "5432"
	}
	return strconv.Itoa(p)
}

// InitSchema creates the enrollments table if it does not exist.
func InitSchema(ctx context.Context, pool *pgxpool.Pool, table string) error {
	_, err := pool.Exec(ctx, createTableSQL(table))
	return err
}

// deleteCarrierSQL clears the previous export of one carrier.
func deleteCarrierSQL(table string) string {
	return "DELETE FROM " + table + " WHERE insurance_company = $1"
}

// buildInsert renders a multi-row INSERT for records. offset is the output
// position of records[0] within the carrier.
func buildInsert(table string, records []model.BenefitRecord, offset int, runID string, now time.Time) (string, []any) {
	var sb strings.Builder
	sb.WriteString("INSERT INTO " + table + " (" + strings.Join(enrollmentColumns, ", ") + ") VALUES ")
	args := make([]any, 0, len(records)*len(enrollmentColumns))
	idx := 1
	for i, r := range records {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j := range enrollmentColumns {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString("$" + strconv.Itoa(idx))
			idx++
		}
		sb.WriteString(")")
		args = append(args, r.InsuranceCompany, r.UserID, r.FirstName, r.LastName,
			int64(r.Version), offset+i, runID, now)
	}
	return sb.String(), args
}
