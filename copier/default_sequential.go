//go:build !dma

package copier

// Default returns the backend selected at build time.
func Default() Copier {
	return Sequential{}
}
