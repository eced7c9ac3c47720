package hitfile

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/danthegoodman1/hitmerge/record"
)

// PairFormat renders value and timestamp right-justified to width 10 with a
// space reserved for the sign.
const PairFormat = "% 10d % 10d\n"

type Pair struct {
	Value     int64
	Timestamp int64
}

// WritePairs writes the value and timestamp columns of records, one per line.
func WritePairs(w io.Writer, records []record.Record) (int64, error) {
	bw := bufio.NewWriterSize(w, 64*1024)
	var written int64
	for _, rec := range records {
		n, err := fmt.Fprintf(bw, PairFormat, rec.Value, rec.Timestamp)
		written += int64(n)
		if err != nil {
			return written, fmt.Errorf("error in fmt.Fprintf: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return written, fmt.Errorf("error in bw.Flush: %w", err)
	}
	return written, nil
}

// ReadPairs parses a file written by WritePairs.
func ReadPairs(r io.Reader, name string) ([]Pair, error) {
	sc := bufio.NewScanner(r)
	var (
		pairs   []Pair
		lineNum int
	)
	for sc.Scan() {
		lineNum++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, &ParseError{File: name, Line: lineNum, Column: -1, Err: fmt.Errorf("%w: got %d, want 2", ErrColumnCount, len(fields))}
		}
		var p Pair
		var err error
		if p.Value, err = strconv.ParseInt(fields[0], 10, 64); err != nil {
			return nil, &ParseError{File: name, Line: lineNum, Column: 0, Err: fmt.Errorf("%w: %q", ErrBadInteger, fields[0])}
		}
		if p.Timestamp, err = strconv.ParseInt(fields[1], 10, 64); err != nil {
			return nil, &ParseError{File: name, Line: lineNum, Column: 1, Err: fmt.Errorf("%w: %q", ErrBadInteger, fields[1])}
		}
		pairs = append(pairs, p)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("error in sc.Scan: %w", err)
	}
	return pairs, nil
}
