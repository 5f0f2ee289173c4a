// Package locale resolves the process language and country once at startup.
// The only consumer is the descriptor parser, which uses the tags to pick a
// localized Comment key.
package locale

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// envOrder is the POSIX precedence for message locale variables.
var envOrder = []string{"LC_ALL", "LC_MESSAGES", "LANG"}

// Tags holds the resolved locale. Both fields are empty for the C/POSIX locale
// or when nothing usable is set.
type Tags struct {
	Language string // "de"
	Country  string // "DE"
}

// Full returns the Desktop Entry form "lang_COUNTRY", or "" without a country.
func (t Tags) Full() string {
	if t.Language == "" || t.Country == "" {
		return ""
	}
	return t.Language + "_" + t.Country
}

// Resolve reads the locale from the process environment.
func Resolve() Tags {
	return ResolveFrom(os.Getenv)
}

// ResolveFrom reads the locale through getenv, using the first non-empty
// variable in POSIX precedence order.
func ResolveFrom(getenv func(string) string) Tags {
	for _, name := range envOrder {
		if v := getenv(name); v != "" {
			return Parse(v)
		}
	}
	return Tags{}
}

// Parse converts a POSIX locale string ("de_DE.UTF-8@euro") into tags.
func Parse(posix string) Tags {
	s := posix
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "" || s == "C" || s == "POSIX" {
		return Tags{}
	}

	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return Tags{}
	}
	var t Tags
	if base, conf := tag.Base(); conf != language.No {
		t.Language = base.String()
	}
	// Only an explicit region counts; an inferred one ("de" -> DE) is not a
	// country the user asked for.
	if region, conf := tag.Region(); conf == language.Exact {
		t.Country = region.String()
	}
	return t
}
