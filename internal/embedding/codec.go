// Package embedding turns document text into packed embedding vectors.
//
// The packed form is the float32 values laid out consecutively in the host's
// native byte order with no header. The dimension is the byte length / 4.
package embedding

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/phonetonote/paperweight/internal/core/domain"
)

// bytesPerFloat is the width of one packed float32.
const bytesPerFloat = 4

// Encode packs a vector. An empty vector encodes to zero bytes.
func Encode(v []float32) []byte {
	if len(v) == 0 {
		return []byte{}
	}
	buf := make([]byte, len(v)*bytesPerFloat)
	for i, f := range v {
		binary.NativeEndian.PutUint32(buf[i*bytesPerFloat:], math.Float32bits(f))
	}
	return buf
}

// Decode unpacks bytes produced by Encode.
// Returns domain.ErrInvalidInput if the length is not a multiple of four.
func Decode(b []byte) ([]float32, error) {
	if len(b)%bytesPerFloat != 0 {
		return nil, fmt.Errorf("%w: embedding length %d is not a multiple of %d",
			domain.ErrInvalidInput, len(b), bytesPerFloat)
	}
	v := make([]float32, len(b)/bytesPerFloat)
	for i := range v {
		v[i] = math.Float32frombits(binary.NativeEndian.Uint32(b[i*bytesPerFloat:]))
	}
	return v, nil
}

// Dimension returns the vector length of a packed embedding.
func Dimension(b []byte) int {
	return len(b) / bytesPerFloat
}
