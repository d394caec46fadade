package helpers_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/donos-project/donosd/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func TestClampIntToUint16(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want uint16
	}{
		{name: "negative", in: -1, want: 0},
		{name: "zero", in: 0, want: 0},
		{name: "one", in: 1, want: 1},
		{name: "max", in: int(math.MaxUint16), want: math.MaxUint16},
		{name: "above-max", in: int(math.MaxUint16) + 1, want: math.MaxUint16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, helpers.ClampIntToUint16(tt.in))
		})
	}
}

func TestClampIntToUint32(t *testing.T) {
	assert.Equal(t, uint32(0), helpers.ClampIntToUint32(-1))
	assert.Equal(t, uint32(0), helpers.ClampIntToUint32(0))
	assert.Equal(t, uint32(1), helpers.ClampIntToUint32(1))

	if strconv.IntSize == 64 {
		assert.Equal(t, uint32(math.MaxUint32), helpers.ClampIntToUint32(int(math.MaxUint32)))
		assert.Equal(t, uint32(math.MaxUint32), helpers.ClampIntToUint32(int(math.MaxUint32)+1))
	}
}

