package hitfile

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danthegoodman1/hitmerge/record"
	"github.com/danthegoodman1/hitmerge/utils"
)

const (
	// DefaultMaxRows is the per-file row cap. Rows past it are ignored.
	DefaultMaxRows = 500_000

	// MinColumns is identifier, value, timestamp
	MinColumns = 3

	maxLineBytes = 1 << 20
)

var (
	ErrTooFewColumns = errors.New("too few columns")
	ErrColumnCount   = errors.New("column count differs from first row")
	ErrBadIdentifier = errors.New("identifier is not hexadecimal")
	ErrBadInteger    = errors.New("column is not a decimal integer")
	ErrNoRows        = errors.New("no data rows")
	ErrLineTooLong   = errors.New("line too long")
)

// ParseError is a malformed row. A single ParseError fails the whole file.
type ParseError struct {
	File string
	// Line is 1-based, 0 when the error is not tied to a line
	Line int
	// Column is 0-based, -1 when the error is not tied to a column
	Column int
	Err    error
}

func (e *ParseError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("parse error in %s: %s", e.File, e.Err)
	}
	if e.Column < 0 {
		return fmt.Sprintf("parse error in %s line %d: %s", e.File, e.Line, e.Err)
	}
	return fmt.Sprintf("parse error in %s line %d column %d: %s", e.File, e.Line, e.Column, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParseRecords reads whitespace delimited rows from r, stopping after maxRows
// data rows. Blank lines and lines starting with '#' are skipped and do not
// count toward maxRows. Every data row must have the column count of the first.
func ParseRecords(r io.Reader, name string, maxRows int) ([]record.Record, error) {
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)

	var (
		records []record.Record
		numCols int
		lineNum int
	)
	for len(records) < maxRows && sc.Scan() {
		lineNum++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < MinColumns {
			return nil, &ParseError{File: name, Line: lineNum, Column: -1, Err: fmt.Errorf("%w: got %d, need %d", ErrTooFewColumns, len(fields), MinColumns)}
		}
		if numCols == 0 {
			numCols = len(fields)
		} else if len(fields) != numCols {
			return nil, &ParseError{File: name, Line: lineNum, Column: -1, Err: fmt.Errorf("%w: got %d, want %d", ErrColumnCount, len(fields), numCols)}
		}

		rec, err := parseRow(fields)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.File = name
				pe.Line = lineNum
			}
			return nil, err
		}
		records = append(records, rec)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{File: name, Line: lineNum + 1, Column: -1, Err: ErrLineTooLong}
		}
		return nil, &utils.IOError{Op: "read", Path: name, Err: err}
	}
	if len(records) == 0 {
		return nil, &ParseError{File: name, Column: -1, Err: ErrNoRows}
	}

	return records, nil
}

func parseRow(fields []string) (record.Record, error) {
	var rec record.Record
	id, err := ParseIdentifier(fields[0])
	if err != nil {
		return rec, &ParseError{Column: 0, Err: fmt.Errorf("%w: %q", ErrBadIdentifier, fields[0])}
	}
	rec.Identifier = id

	ints := make([]int64, len(fields)-1)
	for i, f := range fields[1:] {
		v, err := strconv.ParseInt(f, 10, 64)
		if err != nil {
			return rec, &ParseError{Column: i + 1, Err: fmt.Errorf("%w: %q", ErrBadInteger, f)}
		}
		ints[i] = v
	}
	rec.Value = ints[0]
	rec.Timestamp = ints[1]
	if len(ints) > 2 {
		rec.Extra = ints[2:]
	}
	return rec, nil
}

// ParseIdentifier decodes base-16 text, with or without a 0x prefix.
func ParseIdentifier(s string) (uint64, error) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	return strconv.ParseUint(s, 16, 64)
}
