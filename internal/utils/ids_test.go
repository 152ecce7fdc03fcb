package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 1000; i++ {
		id := NewID()
		assert.False(t, seen[id])
		assert.True(t, IsValidID(id))
		seen[id] = true
	}
}

func TestIsValidID(t *testing.T) {
	cases := []struct {
		Name   string
		Given  string
		Expect bool
	}{
		{"Valid", "0b7f6c1e-3b0a-4b57-9f1e-6a3a3c9d2f10", true},
		{"Empty", "", false},
		{"Garbage", "../../etc/passwd", false},
		{"NoDashes", "0b7f6c1e3b0a4b579f1e6a3a3c9d2f10", false},
	}

	for _, c := range cases {
		t.Run(c.Name, func(t *testing.T) {
			assert.Equal(t, c.Expect, IsValidID(c.Given))
		})
	}
}
