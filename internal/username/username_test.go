package username

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"Chef One", "chef_one"},
		{"  Chef   One  ", "chef_one"},
		{"chef\t\none", "chef_one"},
		{"Chef-One!", "chefone"},
		{"ALREADY_ok_123", "already_ok_123"},
		{"Crème Brûlée", "crme_brle"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.raw))
		})
	}
}

func TestNormalize_OutputAlwaysInAlphabet(t *testing.T) {
	for _, raw := range []string{"Ünïcödé  Nämé", "a b c", "日本 語", "x__y"} {
		got := Normalize(raw)
		for _, r := range got {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_'
			assert.True(t, ok, "Normalize(%q) = %q contains %q", raw, got, r)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		wantErr bool
	}{
		{"valid", "chef1", false},
		{"underscore", "chef_one", false},
		{"min length", "abc", false},
		{"max length", "abcdefghijklmno", false},
		{"too short", "ab", true},
		{"too long", "abcdefghijklmnop", true},
		{"uppercase", "Chef1", true},
		{"dash", "chef-one", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
