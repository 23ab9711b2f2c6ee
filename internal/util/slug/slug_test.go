package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Home", "home"},
		{"About Us", "about-us"},
		{"  Pricing & Plans!  ", "pricing-plans"},
		{"Café Menü", "cafe-menu"},
		{"Already-a-slug", "already-a-slug"},
		{"multiple   spaces", "multiple-spaces"},
		{"2024 Roadmap", "2024-roadmap"},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Make(tt.in), "Make(%q)", tt.in)
	}
}

func TestIsValid(t *testing.T) {
	assert.True(t, IsValid("about-us"))
	assert.False(t, IsValid("About Us"))
	assert.False(t, IsValid(""))
	assert.False(t, IsValid("-leading"))
}
