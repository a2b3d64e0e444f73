// Package parser turns raw enrollment lines into typed records.
//
// Splitting is a plain cut on the comma; there is no quoting or escaping, so
// a field can never contain a comma. Marshalling is positional and rejects a
// row only when it has fewer than five fields or a version that is not a
// 32-bit integer.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/benefits-incoming/internal/errors"
	"github.com/benefits-incoming/internal/model"
)

// Delimiter separates the fields of a row.
const Delimiter = ","

// SplitRow splits one line into its fields. Trailing empty fields are
// dropped, so "a,b,," has two fields. An empty line yields [""].
func SplitRow(line string) []string {
	fields := strings.Split(line, Delimiter)
	if line == "" {
		return fields
	}
	end := len(fields)
	for end > 0 && fields[end-1] == "" {
		end--
	}
	return fields[:end]
}

// SplitLines splits every line, preserving order.
func SplitLines(lines []string) [][]string {
	rows := make([][]string, len(lines))
	for i, line := range lines {
		rows[i] = SplitRow(line)
	}
	return rows
}

// Marshal maps a field list onto a BenefitRecord. line is the 1-based input
// line used in the error; pass 0 when unknown.
func Marshal(line int, fields []string) (model.BenefitRecord, error) {
	row := strings.Join(fields, Delimiter)
	if len(fields) < model.FieldCount {
		return model.BenefitRecord{}, errors.NewMalformedRecordError(line, row,
			fmt.Sprintf("expected %d fields, got %d", model.FieldCount, len(fields)), nil)
	}
	rawVersion := strings.TrimSpace(fields[model.FieldVersion])
	version, err := strconv.ParseInt(rawVersion, 10, 32)
	if err != nil {
		reason := fmt.Sprintf("version %q is not an integer", rawVersion)
		if errors.Is(err, strconv.ErrRange) {
			reason = fmt.Sprintf("version %q is out of the 32-bit range", rawVersion)
		}
		return model.BenefitRecord{}, errors.NewMalformedRecordError(line, row, reason, err)
	}
	return model.BenefitRecord{
		UserID:           strings.TrimSpace(fields[model.FieldUserID]),
		FirstName:        strings.TrimSpace(fields[model.FieldFirstName]),
		LastName:         strings.TrimSpace(fields[model.FieldLastName]),
		Version:          int(version),
		InsuranceCompany: strings.TrimSpace(fields[model.FieldInsuranceCompany]),
	}, nil
}

// MarshalAll marshals every row. Rows that fail are returned as rejections
// and never stop the rest from being processed. rows[i] is line i+1.
func MarshalAll(rows [][]string) ([]model.BenefitRecord, []model.Rejection) {
	records := make([]model.BenefitRecord, 0, len(rows))
	var rejections []model.Rejection
	for i, fields := range rows {
		rec, err := Marshal(i+1, fields)
		if err != nil {
			rejections = append(rejections, model.NewRejection(i+1, fields, err))
			continue
		}
		records = append(records, rec)
	}
	return records, rejections
}

// ParseLines runs the Row Parser and the Record Marshaller over raw lines.
func ParseLines(lines []string) ([]model.BenefitRecord, []model.Rejection) {
	return MarshalAll(SplitLines(lines))
}
