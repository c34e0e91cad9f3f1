package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		required bool
		wantErr  bool
	}{
		{"app id", "messages", true, false},
		{"folder id", "folder_01HZX3", true, false},
		{"empty optional", "", false, false},
		{"empty required", "", true, true},
		{"slash", "../etc", true, true},
		{"too long", strings.Repeat("a", MaxIDLength+1), true, true},
		{"null byte", "a\x00b", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id, "app_id", tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePlayer(t *testing.T) {
	assert.NoError(t, ValidatePlayer("ABC12345"))
	assert.NoError(t, ValidatePlayer("license:4f2a"))
	assert.Error(t, ValidatePlayer(""))
	assert.Error(t, ValidatePlayer("a b"))
}

func TestSanitizeFolderName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Work", "Work"},
		{"  Social   Media ", "Social Media"},
		{"<b>Games</b>", "Games"},
		{"<script>alert(1)</script>", ""},
		{"tab\there", "tabhere"},
		{"Tom & Jerry", "Tom & Jerry"},
		{strings.Repeat("x", 40), strings.Repeat("x", MaxFolderNameLength)},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFolderName(tt.in))
		})
	}
}

func TestSizeValidator(t *testing.T) {
	v := NewSizeValidator(4)
	assert.NoError(t, v.ValidateSize([]byte("1234")))
	assert.Error(t, v.ValidateSize([]byte("12345")))
	assert.Equal(t, 4, v.Max())
}
