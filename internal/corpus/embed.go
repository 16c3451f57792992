package corpus

import (
	_ "embed"
)

// embeddedDataset is the reference set shipped with the binary: uppercase
// glyphs rendered at a 72 pixel raster height.
//
//go:embed dataset.bin
var embeddedDataset []byte

// Default decodes the embedded reference dataset. Each call returns a new Store.
func Default() (*Store, error) {
	return decode("embedded", embeddedDataset)
}
