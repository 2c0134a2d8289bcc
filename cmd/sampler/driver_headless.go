//go:build headless

package main

import (
	"time"
)

func newDriver(sampleRate int, period time.Duration) (driver, error) {
	return newTicker(period), nil
}
