package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"912 345 678", "+351912345678"},
		{"212345678", "+351212345678"},
		{"+351 912-345-678", "+351912345678"},
		{"351912345678", "+351912345678"},
		{"00351912345678", "+351912345678"},
		{"+44 20 7946 0958", "+442079460958"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in), "input %q", tt.in)
	}
}
