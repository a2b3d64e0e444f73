// Package reconcile groups enrollment records by carrier, keeps the
// highest-versioned submission per user and orders the survivors by name.
package reconcile

import (
	"maps"
	"slices"
	"strings"

	"github.com/benefits-incoming/internal/model"
)

// Partitions maps a carrier to its records in input order.
type Partitions map[string][]model.BenefitRecord

// Partition groups records by InsuranceCompany. No record is dropped.
func Partition(records []model.BenefitRecord) Partitions {
	parts := make(Partitions)
	for _, rec := range records {
		parts[rec.InsuranceCompany] = append(parts[rec.InsuranceCompany], rec)
	}
	return parts
}

// Carriers returns the partition keys in sorted order.
func Carriers(parts Partitions) []string {
	return slices.Sorted(maps.Keys(parts))
}

// Dedupe keeps one record per UserID: the one with the highest Version.
// On a version tie the first record seen wins. Survivors come back in the
// order each UserID first appeared; superseded counts the discarded records.
func Dedupe(records []model.BenefitRecord) (survivors []model.BenefitRecord, superseded int) {
	best := make(map[string]int, len(records))
	survivors = make([]model.BenefitRecord, 0, len(records))
	for _, rec := range records {
		i, seen := best[rec.UserID]
		if !seen {
			best[rec.UserID] = len(survivors)
			survivors = append(survivors, rec)
			continue
		}
		superseded++
		if rec.Version > survivors[i].Version {
			survivors[i] = rec
		}
	}
	return survivors, superseded
}

// Sort returns the records stably ordered by lastName ++ firstName.
func Sort(records []model.BenefitRecord) []model.BenefitRecord {
	sorted := slices.Clone(records)
	slices.SortStableFunc(sorted, func(a, b model.BenefitRecord) int {
		return strings.Compare(a.NameKey(), b.NameKey())
	})
	return sorted
}

// Result is the reconciled output of one carrier.
type Result struct {
	Carrier    string
	Records    []model.BenefitRecord
	Input      int
	Superseded int
}

// Reconcile runs Partition, then Dedupe and Sort per carrier. Results are
// ordered by carrier name.
func Reconcile(records []model.BenefitRecord) []Result {
	parts := Partition(records)
	results := make([]Result, 0, len(parts))
	for _, carrier := range Carriers(parts) {
		survivors, superseded := Dedupe(parts[carrier])
		results = append(results, Result{
			Carrier:    carrier,
			Records:    Sort(survivors),
			Input:      len(parts[carrier]),
			Superseded: superseded,
		})
	}
	return results
}
