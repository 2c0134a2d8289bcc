// Package sampletable converts raw little-endian PCM assets into Go source
// declaring typed sample tables. It runs at build time through
// cmd/sampletab and go generate, so the instrument image carries the
// converted tables directly and nothing is converted at run time.
package sampletable

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"go/format"
	"go/token"
	"io"
)

// ErrOddLength is returned when the asset does not hold whole samples.
var ErrOddLength = errors.New("asset length is odd")

// ErrName is returned when the table name is not a Go identifier.
var ErrName = errors.New("invalid table name")

// Convert pairs consecutive bytes into little-endian samples.
func Convert(data []byte) ([]int16, error) {
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrOddLength, len(data))
	}
	samples := make([]int16, len(data)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}
	return samples, nil
}

// Bytes is the inverse of Convert.
func Bytes(samples []int16) []byte {
	data := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(s))
	}
	return data
}

// Table describes one generated table.
type Table struct {
	// Name is the exported variable name.
	Name string
	// Source is recorded in the table comment.
	Source string
	Data   []byte
}

const perLine = 12

// Generate writes a gofmt-ed Go file declaring every table as a fixed-size
// int16 array in package pkg.
func Generate(w io.Writer, pkg string, tables ...Table) error {
	if !token.IsIdentifier(pkg) {
		return fmt.Errorf("%w: package %q", ErrName, pkg)
	}
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "// Code generated by sampletab. DO NOT EDIT.\n\npackage %s\n", pkg)
	for _, t := range tables {
		if !token.IsIdentifier(t.Name) || !token.IsExported(t.Name) {
			return fmt.Errorf("%w: %q", ErrName, t.Name)
		}
		samples, err := Convert(t.Data)
		if err != nil {
			return fmt.Errorf("%s: %w", t.Name, err)
		}
		fmt.Fprintf(&buf, "\n// %s is converted from %s.\n", t.Name, t.Source)
		fmt.Fprintf(&buf, "var %s = [%d]int16{\n", t.Name, len(samples))
		for i, s := range samples {
			if i%perLine == 0 {
				buf.WriteByte('\t')
			}
			fmt.Fprintf(&buf, "%d,", s)
			if i%perLine == perLine-1 || i == len(samples)-1 {
				buf.WriteByte('\n')
			} else {
				buf.WriteByte(' ')
			}
		}
		buf.WriteString("}\n")
	}
	src, err := format.Source(buf.Bytes())
	if err != nil {
		return fmt.Errorf("format generated source: %w", err)
	}
	_, err = w.Write(src)
	return err
}
