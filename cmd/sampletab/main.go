// Command sampletab converts raw 16-bit little-endian assets into Go source
// tables. It is meant to run from go generate:
//
//	//go:generate go run ../cmd/sampletab -pkg samples -out tables.go Click=click.raw
//
// Every argument is Name=path. A malformed asset makes the command exit
// with a non-zero status, which fails the generate step.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dudk/sampler/sampletable"
)

var errArgument = errors.New("argument must be Name=path")

func main() {
	pkg := flag.String("pkg", "", "package name of the generated file")
	out := flag.String("out", "", "output file, stdout if empty")
	flag.Parse()
	if err := run(*pkg, *out, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "sampletab: %v\n", err)
		os.Exit(1)
	}
}

func run(pkg, out string, args []string) error {
	if pkg == "" {
		pkg = os.Getenv("GOPACKAGE")
	}
	tables, err := parse(args)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := sampletable.Generate(&buf, pkg, tables...); err != nil {
		return err
	}
	if out == "" {
		_, err = os.Stdout.Write(buf.Bytes())
		return err
	}
	return os.WriteFile(out, buf.Bytes(), 0644)
}

func parse(args []string) ([]sampletable.Table, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("no assets: %w", errArgument)
	}
	tables := make([]sampletable.Table, 0, len(args))
	for _, arg := range args {
		name, path, ok := strings.Cut(arg, "=")
		if !ok || name == "" || path == "" {
			return nil, fmt.Errorf("%q: %w", arg, errArgument)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		tables = append(tables, sampletable.Table{
			Name:   name,
			Source: filepath.Base(path),
			Data:   data,
		})
	}
	return tables, nil
}
