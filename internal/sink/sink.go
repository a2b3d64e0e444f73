// Package sink writes reconciled carrier outputs.
package sink

import (
	"context"
	"strconv"
	"strings"

	"github.com/benefits-incoming/internal/model"
)

// Sink receives one carrier's survivors at a time. A failed Write affects
// only that carrier; callers keep writing the others.
type Sink interface {
	Name() string
	Write(ctx context.Context, carrier string, records []model.BenefitRecord) error
	Close() error
}

// FormatRecord renders r as userId,firstName,lastName,version,insuranceCompany.
func FormatRecord(r model.BenefitRecord) string {
	var b strings.Builder
	b.WriteString(r.UserID)
	b.WriteByte(',')
	b.WriteString(r.FirstName)
	b.WriteByte(',')
	b.WriteString(r.LastName)
	b.WriteByte(',')
	b.WriteString(strconv.Itoa(r.Version))
	b.WriteByte(',')
	b.WriteString(r.InsuranceCompany)
	return b.String()
}

// Render returns the file body for records: one newline-terminated line each.
func Render(records []model.BenefitRecord) string {
	var b strings.Builder
	for _, r := range records {
		b.WriteString(FormatRecord(r))
		b.WriteByte('\n')
	}
	return b.String()
}

// Batches splits records into chunks of at most size, preserving order.
func Batches(records []model.BenefitRecord, size int) [][]model.BenefitRecord {
	if size < 1 {
		size = 1
	}
	var out [][]model.BenefitRecord
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		out = append(out, records[start:end])
	}
	return out
}
