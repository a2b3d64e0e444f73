package model

import "strings"

// Field positions of an enrollment row: userId,firstName,lastName,version,insuranceCompany.
const (
	FieldUserID = iota
	FieldFirstName
	FieldLastName
	FieldVersion
	FieldInsuranceCompany

	// FieldCount is the minimum number of fields a row must carry.
	FieldCount
)

// BenefitRecord is one enrollment submission. Values are never mutated after marshalling.
type BenefitRecord struct {
	UserID           string
	FirstName        string
	LastName         string
	Version          int
	InsuranceCompany string
}

// NameKey is lastName followed by firstName, no separator. Survivors are ordered by it.
func (r BenefitRecord) NameKey() string {
	return r.LastName + r.FirstName
}

// Rejection is a row the marshaller refused, kept as data so callers can report it.
type Rejection struct {
	Line   int
	Row    string
	Fields []string
	Err    error
}

// NewRejection builds a Rejection from the split fields of a row.
func NewRejection(line int, fields []string, err error) Rejection {
	return Rejection{
		Line:   line,
		Row:    strings.Join(fields, ","),
		Fields: fields,
		Err:    err,
	}
}
