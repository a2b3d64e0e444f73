package sink

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/benefits-incoming/internal/errors"
	"github.com/benefits-incoming/internal/model"
)

// FileExt is appended to the carrier name to form the output file name.
const FileExt = ".out"

// FileSink writes <dir>/<carrier>.out files.
type FileSink struct {
	dir string
}

// NewFile returns a FileSink rooted at dir. The directory is created on first write.
func NewFile(dir string) *FileSink {
	return &FileSink{dir: dir}
}

// Name implements Sink.
func (s *FileSink) Name() string { return "file" }

// Path returns the output path for carrier.
func (s *FileSink) Path(carrier string) string {
	return filepath.Join(s.dir, carrier+FileExt)
}

// Write replaces the carrier's file with one line per record.
func (s *FileSink) Write(ctx context.Context, carrier string, records []model.BenefitRecord) error {
	if err := ctx.Err(); err != nil {
		return errors.NewOutputUnavailableError(s.Name(), carrier, err)
	}
	if carrier == "." || carrier == ".." || strings.ContainsAny(carrier, `/\`) {
		return errors.NewOutputUnavailableError(s.Name(), carrier,
			errors.New("carrier name is not a valid file name"))
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return errors.NewOutputUnavailableError(s.Name(), carrier, err)
	}
	if err := writeFile(s.Path(carrier), records); err != nil {
		return errors.NewOutputUnavailableError(s.Name(), carrier, err)
	}
	return nil
}

// Close implements Sink.
func (s *FileSink) Close() error { return nil }

func writeFile(path string, records []model.BenefitRecord) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	w := bufio.NewWriter(f)
	for _, r := range records {
		if _, err := w.WriteString(FormatRecord(r) + "\n"); err != nil {
			return err
		}
	}
	return w.Flush()
}
