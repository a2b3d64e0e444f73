// Package source reads raw enrollment lines.
package source

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/benefits-incoming/internal/errors"
)

// ReadLines reads every line of the file at path. An unreadable file yields
// no lines and an *errors.InputUnavailableError.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.NewInputUnavailableError(path, err)
	}
	defer f.Close()

	lines, err := ReadFrom(f)
	if err != nil {
		return nil, errors.NewInputUnavailableError(path, err)
	}
	return lines, nil
}

// ReadFrom reads lines from r without their terminators. A trailing "\r" is
// dropped so CRLF files parse like LF files.
func ReadFrom(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}
