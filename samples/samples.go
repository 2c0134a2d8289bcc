// Package samples holds the built-in one-shot sounds. The tables are
// generated from the raw little-endian assets in this directory.
package samples

import (
	_ "embed"
)

//go:generate go run ../cmd/sampletab -pkg samples -out tables.go Click=click.raw Tick=tick.raw

// ClickRaw is the asset Click was generated from.
//
//go:embed click.raw
var ClickRaw []byte

// TickRaw is the asset Tick was generated from.
//
//go:embed tick.raw
var TickRaw []byte

// Lookup returns a built-in table by name.
func Lookup(name string) ([]int16, bool) {
	switch name {
	case "click":
		return Click[:], true
	case "tick":
		return Tick[:], true
	}
	return nil, false
}
