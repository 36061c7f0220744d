package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePlayerName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain name unchanged", in: "Hunter", want: "Hunter"},
		{name: "decomposed accents composed", in: "Rémy", want: "Rémy"},
		{name: "whitespace runs collapsed", in: "  Old \t Timer  ", want: "Old Timer"},
		{name: "empty stays empty", in: "", want: ""},
		{name: "whitespace only becomes empty", in: " \t ", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizePlayerName(tt.in))
		})
	}
}
