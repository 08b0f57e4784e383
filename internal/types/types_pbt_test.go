package types

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestCategoryParsingProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("toggling a status twice is the identity", prop.ForAll(
		func(active bool) bool {
			s := StatusInactive
			if active {
				s = StatusActive
			}
			return s.Toggle().Toggle() == s
		},
		gen.Bool(),
	))

	properties.Property("parsing ignores case and surrounding space", prop.ForAll(
		func(idx int, upper bool) bool {
			c := Categories[idx]
			s := " " + string(c) + " "
			if upper {
				s = strings.ToUpper(s)
			}
			got, err := ParseCategory(s)
			return err == nil && got == c
		},
		gen.IntRange(0, len(Categories)-1),
		gen.Bool(),
	))

	properties.Property("anything parsed is a known category", prop.ForAll(
		func(s string) bool {
			c, err := ParseCategory(s)
			if err != nil {
				return c == ""
			}
			for _, known := range Categories {
				if c == known {
					return true
				}
			}
			return false
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}
