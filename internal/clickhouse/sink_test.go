package clickhouse

import (
	"context"
	"testing"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benefits-incoming/internal/errors"
	"github.com/benefits-incoming/internal/model"
)

// fakeConn records Exec statements and hands out a fakeBatch.
type fakeConn struct {
	driver.Conn
	execs    []string
	execArgs [][]any
	execErr  error
	prepared []string
	batch    *fakeBatch
}

func (c *fakeConn) Exec(_ context.Context, query string, args ...any) error {
	c.execs = append(c.execs, query)
	c.execArgs = append(c.execArgs, args)
	return c.execErr
}

func (c *fakeConn) PrepareBatch(_ context.Context, query string, _ ...driver.PrepareBatchOption) (driver.Batch, error) {
	c.prepared = append(c.prepared, query)
	c.batch = &fakeBatch{}
	return c.batch, nil
}

type fakeBatch struct {
	driver.Batch
	rows    [][]any
	sent    bool
	aborted bool
}

func (b *fakeBatch) Append(v ...any) error {
	b.rows = append(b.rows, v)
	return nil
}

func (b *fakeBatch) Send() error {
	b.sent = true
	return nil
}

func (b *fakeBatch) Abort() error {
	b.aborted = true
	return nil
}

func testSink(conn *fakeConn) *Sink {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	return &Sink{
		conn:  conn,
		db:    "benefits",
		table: "enrollments",
		runID: uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
		now:   func() time.Time { return now },
	}
}

func TestSink_Write(t *testing.T) {
	conn := &fakeConn{}
	records := []model.BenefitRecord{
		{UserID: "U2", FirstName: "Bob", LastName: "Lee", Version: 5, InsuranceCompany: "Acme"},
		{UserID: "U1", FirstName: "Jane", LastName: "Doe", Version: 2, InsuranceCompany: "Acme"},
		{UserID: "U3", FirstName: "Amy", LastName: "Roe", Version: 1, InsuranceCompany: "Acme"},
	}

	require.NoError(t, testSink(conn).Write(context.Background(), "Acme", records))

	assert.Equal(t, []string{"DELETE FROM benefits.enrollments WHERE INSURANCE_COMPANY = ?"}, conn.execs)
	assert.Equal(t, [][]any{{"Acme"}}, conn.execArgs)
	assert.Equal(t, []string{"INSERT INTO benefits.enrollments"}, conn.prepared)

	require.Len(t, conn.batch.rows, 3)
	for i, row := range conn.batch.rows {
		assert.Equal(t, records[i].UserID, row[1])
		assert.Equal(t, uint32(i), row[5])
	}
	assert.True(t, conn.batch.sent)
	assert.False(t, conn.batch.aborted)
}

func TestSink_WriteNoRecordsOnlyDeletes(t *testing.T) {
	conn := &fakeConn{}

	require.NoError(t, testSink(conn).Write(context.Background(), "Acme", nil))

	assert.Len(t, conn.execs, 1)
	assert.Empty(t, conn.prepared)
}

func TestSink_WriteDeleteFails(t *testing.T) {
	conn := &fakeConn{execErr: errors.New("read only")}

	err := testSink(conn).Write(context.Background(), "Acme", []model.BenefitRecord{{UserID: "U1", InsuranceCompany: "Acme"}})

	require.ErrorIs(t, err, errors.ErrOutputUnavailable)
	var out *errors.OutputUnavailableError
	require.ErrorAs(t, err, &out)
	assert.Equal(t, "clickhouse", out.Sink)
	assert.Equal(t, "Acme", out.Carrier)
	assert.Empty(t, conn.prepared)
}
