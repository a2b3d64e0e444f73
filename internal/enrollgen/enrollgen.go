package enrollgen

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"strings"
)

const (
	defaultUsers          = 1000
	defaultDuplicateRatio = 0.25
	maxVersion            = 9
)

// DefaultCarriers are used when Options.Carriers is empty.
var DefaultCarriers = []string{"Aetna", "Cigna", "Humana", "Kaiser", "UnitedHealth"}

var firstNames = []string{"John", "Jane", "Bob", "Alice", "Charlie", "Diana", "Eve", "Frank", "Grace", "Henry"}
var lastNames = []string{"Smith", "Doe", "Brown", "Johnson", "Williams", "Jones", "Garcia", "Miller", "Davis", "Wilson"}

// Options controls the shape of a generated input file.
type Options struct {
	Users          int
	Start          int
	Carriers       []string
	DuplicateRatio float64 // resubmissions as a share of Users
	MalformedRatio float64 // malformed rows as a share of all rows
	Seed           int64
}

// Generate returns enrollment lines: one original submission per user,
// resubmissions under new (or equal, or older) versions, and malformed rows,
// shuffled. The same Options always yield the same lines.
func Generate(opts Options) []string {
	if opts.Users <= 0 {
		opts.Users = defaultUsers
	}
	if len(opts.Carriers) == 0 {
		opts.Carriers = DefaultCarriers
	}
	if opts.DuplicateRatio < 0 {
		opts.DuplicateRatio = defaultDuplicateRatio
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	lines := make([]string, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		lines = append(lines, formatRow(
			"U"+formatOrdinal(opts.Start+i),
			firstNames[i%len(firstNames)],
			lastNames[(i/len(firstNames))%len(lastNames)],
			strconv.Itoa(1+rng.Intn(maxVersion)),
			opts.Carriers[i%len(opts.Carriers)],
		))
	}

	nDuplicates := int(float64(opts.Users) * opts.DuplicateRatio)
	for j := 0; j < nDuplicates; j++ {
		i := rng.Intn(opts.Users)
		carrier := opts.Carriers[i%len(opts.Carriers)]
		// Some users also enroll with a second carrier.
		if j%5 == 4 {
			carrier = opts.Carriers[(i+1)%len(opts.Carriers)]
		}
		lines = append(lines, formatRow(
			"U"+formatOrdinal(opts.Start+i),
			firstNames[i%len(firstNames)],
			lastNames[(i/len(firstNames))%len(lastNames)],
			strconv.Itoa(1+rng.Intn(maxVersion)),
			carrier,
		))
	}

	if opts.MalformedRatio > 0 && opts.MalformedRatio < 1 {
		nMalformed := int(float64(len(lines)) * opts.MalformedRatio / (1 - opts.MalformedRatio))
		for k := 0; k < nMalformed; k++ {
			lines = append(lines, malformedRow(rng, k, opts.Carriers))
		}
	}

	rng.Shuffle(len(lines), func(a, b int) { lines[a], lines[b] = lines[b], lines[a] })
	return lines
}

// WriteLines writes one line per element, each terminated by a newline.
func WriteLines(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func malformedRow(rng *rand.Rand, k int, carriers []string) string {
	carrier := carriers[rng.Intn(len(carriers))]
	switch k % 3 {
	case 0:
		return formatRow("X"+formatOrdinal(k), "NoVersion", carrier)
	case 1:
		return formatRow("X"+formatOrdinal(k), "Bad", "Version", "v"+strconv.Itoa(rng.Intn(maxVersion)), carrier)
	default:
		return ""
	}
}

func formatRow(fields ...string) string {
	return strings.Join(fields, ",")
}

func formatOrdinal(n int) string {
	if n < 0 {
		n = 0
	}
	return fmt.Sprintf("%06d", n)
}
