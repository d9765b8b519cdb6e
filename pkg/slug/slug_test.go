// Copyright (c) 2026 VeriClass. All rights reserved.

package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vericlass/vericlass/pkg/slug"
)

/*
TestFrom tests the slug transformation pipeline over representative
course titles.
*/
func TestFrom(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "Computer Networks", "computer-networks"},
		{"code_and_semester", "CS301 2026-spring", "cs301-2026-spring"},
		{"accents", "Introducción a la Física", "introduccion-a-la-fisica"},
		{"punctuation", "Data Structures & Algorithms!", "data-structures-algorithms"},
		{"repeated_separators", "AI  --  Ethics", "ai-ethics"},
		{"leading_trailing", "  Robotics  ", "robotics"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, slug.From(tt.input))
		})
	}
}
