package desktop

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"mvdan.cc/sh/v3/shell"
)

var (
	// sandboxLauncherRe matches `flatpak run ... --command=<name> <app-id>`.
	sandboxLauncherRe = regexp.MustCompile(`^(?:/usr/s?bin/)?flatpak\s.*--command=([a-zA-Z0-9\-_/.+]+)`)

	// fieldCodeRe matches Exec field codes (%f, %U, %i, ...).
	fieldCodeRe = regexp.MustCompile(`%[a-zA-Z]+`)

	// envPrefixRe is the whitespace-split fallback for `env VAR=val ... cmd`.
	envPrefixRe = regexp.MustCompile(`^(?:\S*/)?env\s+(?:(?:-\S*|\S+=\S*)\s+)*`)

	// tildeWordRe matches a tilde that starts an unquoted word.
	tildeWordRe = regexp.MustCompile(`(^|\s)~`)
)

// ExecResult is the outcome of normalising one Exec line.
type ExecResult struct {
	// Command is the best-effort executable reference: an absolute path when
	// resolution succeeded, otherwise a bare name. Never empty unless the input
	// had no command at all.
	Command string

	Sandboxed bool // taken from a sandbox launcher --command= argument
	Resolved  bool // a bare name was found on the search path

	// Err records why a step fell back; Command still holds the partial result.
	Err error
}

// NormalizeExec extracts the executable reference from a raw Exec value.
// searchPath is the ordered list of directories used to resolve bare names
// (normally $PATH split on the list separator). It never panics.
func NormalizeExec(raw string, searchPath []string) (res ExecResult) {
	res.Command = raw
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("normalize exec: %v", r)
		}
	}()

	if m := sandboxLauncherRe.FindStringSubmatch(raw); m != nil {
		res.Command = m[1]
		res.Sandboxed = true
		return res
	}

	cmd := strings.TrimSpace(fieldCodeRe.ReplaceAllString(raw, ""))
	res.Command = cmd

	first, err := firstWord(cmd)
	if err != nil {
		res.Err = err
		first = firstWordLoose(cmd)
	}
	first = strings.NewReplacer(`"`, "", `'`, "").Replace(first)
	res.Command = first

	if first == "" || strings.HasPrefix(first, "/") {
		return res
	}
	if full, ok := lookupSearchPath(first, searchPath); ok {
		res.Command = full
		res.Resolved = true
	}
	return res
}

// firstWord splits cmd with shell word rules and returns the command word,
// skipping an `env` wrapper with its assignments and options.
func firstWord(cmd string) (string, error) {
	// Parameters and tildes are kept literal: launchers do not expand them.
	cmd = tildeWordRe.ReplaceAllString(cmd, `$1\~`)
	words, err := shell.Fields(cmd, func(name string) string { return "$" + name })
	if err != nil {
		return "", fmt.Errorf("split exec %q: %w", cmd, err)
	}
	if len(words) == 0 {
		return "", nil
	}
	if filepath.Base(words[0]) != "env" {
		return words[0], nil
	}
	for i := 1; i < len(words); i++ {
		w := words[i]
		switch {
		case w == "-u" || w == "--unset" || w == "-C" || w == "--chdir":
			i++ // option argument
		case strings.HasPrefix(w, "-"), strings.Contains(w, "="):
		default:
			return w, nil
		}
	}
	return "", nil
}

// firstWordLoose is the fallback used when cmd is not valid shell syntax.
func firstWordLoose(cmd string) string {
	cmd = envPrefixRe.ReplaceAllString(cmd, "")
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// lookupSearchPath returns the first dir/name that exists.
func lookupSearchPath(name string, searchPath []string) (string, bool) {
	for _, dir := range searchPath {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}
	return "", false
}

// SplitSearchPath splits a PATH-style value.
func SplitSearchPath(value string) []string {
	return filepath.SplitList(value)
}
