package postgres

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benefits-incoming/internal/model"
)

type execCall struct {
	sql  string
	args []any
}

// recordingTx records statements and fails the failAt-th call (1-based).
type recordingTx struct {
	calls  []execCall
	failAt int
}

func (tx *recordingTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.calls = append(tx.calls, execCall{sql: sql, args: args})
	if len(tx.calls) == tx.failAt {
		return pgconn.CommandTag{}, fmt.Errorf("statement %d refused", tx.failAt)
	}
	return pgconn.CommandTag{}, nil
}

func enrollments(n int) []model.BenefitRecord {
	records := make([]model.BenefitRecord, n)
	for i := range records {
		records[i] = model.BenefitRecord{
			UserID:           fmt.Sprintf("U%03d", i),
			FirstName:        "F",
			LastName:         "L",
			Version:          1,
			InsuranceCompany: "Acme",
		}
	}
	return records
}

// positionCol is the index of "position" within enrollmentColumns.
const positionCol = 5

func TestReplaceCarrier_Batching(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	tests := []struct {
		name      string
		records   int
		batchSize int
		offsets   []int
		rows      []int
	}{
		{"three batches", 250, 100, []int{0, 100, 200}, []int{100, 100, 50}},
		{"exact multiple", 200, 100, []int{0, 100}, []int{100, 100}},
		{"single batch", 3, 100, []int{0}, []int{3}},
		{"no records", 0, 100, nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := &recordingTx{}
			err := replaceCarrier(context.Background(), tx, "t", "Acme", enrollments(tt.records), tt.batchSize, "run-1", now)
			require.NoError(t, err)

			require.Len(t, tx.calls, 1+len(tt.offsets))
			assert.Equal(t, deleteCarrierSQL("t"), tx.calls[0].sql)
			assert.Equal(t, []any{"Acme"}, tx.calls[0].args)

			for i, call := range tx.calls[1:] {
				assert.True(t, strings.HasPrefix(call.sql, "INSERT INTO t "))
				require.Len(t, call.args, tt.rows[i]*len(enrollmentColumns))
				assert.Equal(t, tt.offsets[i], call.args[positionCol])
				last := call.args[len(call.args)-len(enrollmentColumns)+positionCol]
				assert.Equal(t, tt.offsets[i]+tt.rows[i]-1, last)
			}
		})
	}
}

func TestReplaceCarrier_StopsAtFirstError(t *testing.T) {
	t.Run("delete fails", func(t *testing.T) {
		tx := &recordingTx{failAt: 1}
		err := replaceCarrier(context.Background(), tx, "t", "Acme", enrollments(5), 2, "run-1", time.Now())
		require.Error(t, err)
		assert.Len(t, tx.calls, 1)
	})

	t.Run("second insert fails", func(t *testing.T) {
		tx := &recordingTx{failAt: 3}
		err := replaceCarrier(context.Background(), tx, "t", "Acme", enrollments(5), 2, "run-1", time.Now())
		require.Error(t, err)
		assert.Len(t, tx.calls, 3)
	})
}
