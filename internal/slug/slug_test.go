// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package slug

import "testing"

func TestGenerate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple two words", input: "Hello World", want: "hello-world"},
		{name: "punctuation marks", input: "Hello, World! How's it going?", want: "hello-world-hows-it-going"},
		{name: "tabs and newlines", input: "sunset\tover\nthe  sea", want: "sunset-over-the-sea"},
		{name: "hyphens and spaces mixed", input: "  --hello -- world--  ", want: "hello-world"},
		{name: "unicode dropped", input: "café au lait", want: "caf-au-lait"},
		{name: "only special characters", input: "!@#$%^&*()", want: ""},
		{name: "empty string", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Generate(tt.input); got != tt.want {
				t.Errorf("Generate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestShort(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{name: "fits", input: "A red bicycle", max: 40, want: "a-red-bicycle"},
		{name: "cut at word boundary", input: "A minimalist poster of a lighthouse at dawn", max: 20, want: "a-minimalist-poster"},
		{name: "cut mid word when no late boundary", input: "Supercalifragilisticexpialidocious", max: 10, want: "supercalif"},
		{name: "fallback when empty", input: "!!!", max: 10, want: "image"},
		{name: "no limit", input: "one two three", max: 0, want: "one-two-three"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Short(tt.input, tt.max, "image")
			if got != tt.want {
				t.Errorf("Short(%q, %d) = %q, want %q", tt.input, tt.max, got, tt.want)
			}
			if tt.max > 0 && len(got) > tt.max {
				t.Errorf("len(%q) = %d exceeds %d", got, len(got), tt.max)
			}
		})
	}
}
