package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Tags
	}{
		{"de_DE.UTF-8", Tags{Language: "de", Country: "DE"}},
		{"pt_BR", Tags{Language: "pt", Country: "BR"}},
		{"fr_FR@euro", Tags{Language: "fr", Country: "FR"}},
		{"es", Tags{Language: "es"}},
		{"C", Tags{}},
		{"POSIX", Tags{}},
		{"C.UTF-8", Tags{}},
		{"", Tags{}},
		{"!!garbage", Tags{}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.in))
		})
	}
}

func TestTags_Full(t *testing.T) {
	assert.Equal(t, "de_DE", Tags{Language: "de", Country: "DE"}.Full())
	assert.Equal(t, "", Tags{Language: "de"}.Full())
	assert.Equal(t, "", Tags{}.Full())
}

func TestResolveFrom_Precedence(t *testing.T) {
	env := map[string]string{
		"LANG":        "en_US.UTF-8",
		"LC_MESSAGES": "de_AT.UTF-8",
	}
	got := ResolveFrom(func(k string) string { return env[k] })
	assert.Equal(t, Tags{Language: "de", Country: "AT"}, got)

	env["LC_ALL"] = "it_IT"
	got = ResolveFrom(func(k string) string { return env[k] })
	assert.Equal(t, Tags{Language: "it", Country: "IT"}, got)
}

func TestResolveFrom_Unset(t *testing.T) {
	got := ResolveFrom(func(string) string { return "" })
	assert.Equal(t, Tags{}, got)
}
