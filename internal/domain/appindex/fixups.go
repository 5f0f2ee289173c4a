package appindex

// Fixups maps executable paths seen at runtime to the path their descriptor
// declares. Packaging often launches a wrapper script whose descriptor names
// one file while the running process is another.
type Fixups map[string]string

// DefaultFixups are the built-in substitutions.
func DefaultFixups() Fixups {
	return Fixups{
		"/opt/google/chrome/chrome": "/opt/google/chrome/google-chrome",
		"/usr/lib/firefox/firefox":  "/usr/lib/firefox/firefox.sh",
		"/usr/bin/pidgin.orig":      "/usr/bin/pidgin",
	}
}

// WithExtra returns a copy of f plus extra. Built-in entries win on conflict.
func (f Fixups) WithExtra(extra map[string]string) Fixups {
	out := make(Fixups, len(f)+len(extra))
	for k, v := range extra {
		if k != "" && v != "" {
			out[k] = v
		}
	}
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Apply returns the substitution for path, or path unchanged. Exact match only.
func (f Fixups) Apply(path string) string {
	if to, ok := f[path]; ok {
		return to
	}
	return path
}
