package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShortenLog(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"alice", "alice"},
		{"0123456789abcdef", "0123456789abcdef"},
		{"0123456789abcdefXYZ", "0123...fXYZ"},
		{"5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY", "5GrwvaEF...oHGKutQY"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ShortenLog(tt.in), tt.in)
	}
}
