package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSearchKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice", "alice"},
		{"  Alice  ", "alice"},
		{"Ünïcörn", "unicorn"},
		{"ＦＵＬＬＷＩＤＴＨ", "fullwidth"},
		{"Łukasz", "lukasz"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, SearchKey(tt.in), tt.in)
	}
}
