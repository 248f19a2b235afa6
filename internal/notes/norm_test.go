package notes

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFoldSearchTerm(t *testing.T) {
	cases := map[string]string{
		"Díaz":               "diaz",
		"  LOGÍSTICA PÉREZ ": "logistica perez",
		"Müller":             "muller",
		"plain":              "plain",
		"":                   "",
	}
	for in, want := range cases {
		assert.Equal(t, want, FoldSearchTerm(in), "input %q", in)
	}
}
