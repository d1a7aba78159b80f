package textutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", UntitledName},
		{"blank", "   ", UntitledName},
		{"accents folded", "Canção de Ninar", "Cancao de Ninar"},
		{"keeps brackets and dashes", "Live [HD] - Part (2)", "Live [HD] - Part (2)"},
		{"punctuation becomes space", "What?! Really: yes/no", "What Really yes no"},
		{"collapses whitespace", "a \t\n  b", "a b"},
		{"only symbols", "?!*", UntitledName},
		{"dots are dropped", "v1.2 final", "v1 2 final"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.in))
		})
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "Unknown"},
		{-1, "Unknown"},
		{512, "512.0 B"},
		{1024, "1.0 KB"},
		{1536, "1.5 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
		{3 * 1024 * 1024 * 1024, "3.0 GB"},
		{2 * 1024 * 1024 * 1024 * 1024, "2.0 TB"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatSize(tt.in))
		})
	}
}
