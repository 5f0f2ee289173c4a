// Package desktop parses Desktop Entry descriptor files into application records.
//
// Parsing is pure with respect to the index: Parse returns a Result describing
// the keys and record a file produces, and the caller applies it. A file is
// either fully applied or not applied at all.
package desktop

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/ini.v1"

	"github.com/corey/appmeta/internal/domain/locale"
	"github.com/corey/appmeta/internal/ports"
)

// Ext is the descriptor file extension.
const Ext = ".desktop"

// Section is the group holding the application keys.
const Section = "Desktop Entry"

// SandboxLauncherName is the Name of the sandbox launcher's own descriptor.
// Indexing it would attribute every sandboxed app to the launcher.
const SandboxLauncherName = "flatpak"

// Outcome classifies a parse.
type Outcome int

const (
	// Parsed means Keys and Record are set and should be applied.
	Parsed Outcome = iota

	// Skipped means the file is valid but describes nothing launchable
	// (no Exec, or the sandbox launcher itself). Not an error.
	Skipped

	// Failed means the file could not be read or parsed. Err is set.
	Failed
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case Parsed:
		return "parsed"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is what one descriptor file contributes to the index.
type Result struct {
	Path    string
	Outcome Outcome

	// Keys are the lookup keys, deduplicated, all mapping to Record:
	// the executable reference, the descriptor base name, and the symlink
	// target of the executable when it is a link.
	Keys   []string
	Record *ports.Record

	Reason string // why the file was skipped
	Err    error  // why the file failed

	// ExecErr is a non-fatal normalisation problem; the keys still use the
	// best-effort command.
	ExecErr error
}

// Parser turns descriptor files into Results.
type Parser struct {
	Locale       locale.Tags
	Icons        ports.IconFinder // nil disables icon discovery
	FallbackIcon string           // used when no icon is declared or discovered
	SearchPath   []string         // directories for resolving bare command names
	Logger       *log.Logger
}

// New creates a Parser. A nil logger discards output.
func New(tags locale.Tags, icons ports.IconFinder, fallbackIcon string, searchPath []string, logger *log.Logger) *Parser {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Parser{
		Locale:       tags,
		Icons:        icons,
		FallbackIcon: fallbackIcon,
		SearchPath:   searchPath,
		Logger:       logger,
	}
}

// BaseName strips the descriptor extension from path's file name.
func BaseName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), Ext)
}

// IsDescriptor reports whether path names a descriptor file.
func IsDescriptor(path string) bool {
	return strings.HasSuffix(path, Ext)
}

// Parse reads one descriptor file. It never panics.
func (p *Parser) Parse(path string) (res Result) {
	res.Path = path
	defer func() {
		if r := recover(); r != nil {
			res = Result{Path: path, Outcome: Failed, Err: fmt.Errorf("parse %s: %v", path, r)}
		}
	}()

	f, err := ini.LoadSources(loadOptions, path)
	if err != nil {
		return failed(path, fmt.Errorf("load %s: %w", path, err))
	}
	return p.parseFile(path, f)
}

// ParseBytes parses descriptor content that is not on disk; path is recorded
// as the source file.
func (p *Parser) ParseBytes(path string, data []byte) Result {
	f, err := ini.LoadSources(loadOptions, data)
	if err != nil {
		return failed(path, fmt.Errorf("load %s: %w", path, err))
	}
	return p.parseFile(path, f)
}

// loadOptions make ini.v1 accept Desktop Entry syntax: '=' is the only
// delimiter, '#' and ';' only start comments at line start, quotes and
// trailing backslashes are literal, duplicate keys keep the last value.
var loadOptions = ini.LoadOptions{
	KeyValueDelimiters:      "=",
	IgnoreInlineComment:     true,
	IgnoreContinuation:      true,
	PreserveSurroundedQuote: true,
	SkipUnrecognizableLines: true,
	AllowShadows:            false,
}

func (p *Parser) parseFile(path string, f *ini.File) Result {
	base := BaseName(path)

	sec, err := f.GetSection(Section)
	if err != nil {
		return skipped(path, "no [Desktop Entry] section")
	}

	cmdline, ok := value(sec, "exec", "Exec")
	if !ok {
		return skipped(path, "no Exec key")
	}

	name, _ := value(sec, "Name")
	if name == SandboxLauncherName {
		return skipped(path, "sandbox launcher entry")
	}
	if name == "" {
		name = base
	}

	exec := NormalizeExec(cmdline, p.SearchPath)
	if exec.Err != nil {
		p.Logger.Debug("exec normalisation fell back", "path", path, "exec", cmdline, "err", exec.Err)
	}

	icon, ok := value(sec, "Icon")
	if !ok || icon == "" {
		icon = p.discoverIcon(base)
	}

	rec := &ports.Record{
		DisplayName: name,
		IconPath:    icon,
		Description: p.description(sec),
		SourceFile:  path,
	}

	return Result{
		Path:    path,
		Outcome: Parsed,
		Keys:    keysFor(exec.Command, base),
		Record:  rec,
		ExecErr: exec.Err,
	}
}

// discoverIcon falls back to the icon finder, then to the fixed terminal icon.
func (p *Parser) discoverIcon(base string) string {
	if p.Icons != nil {
		if found, ok := p.Icons.Find(base); ok {
			return found
		}
	}
	return p.FallbackIcon
}

// description picks Comment[lang_COUNTRY], Comment[lang], then Comment.
func (p *Parser) description(sec *ini.Section) string {
	var names []string
	if full := p.Locale.Full(); full != "" {
		names = append(names, "Comment["+full+"]")
	}
	if p.Locale.Language != "" {
		names = append(names, "Comment["+p.Locale.Language+"]")
	}
	names = append(names, "Comment")
	desc, _ := value(sec, names...)
	return desc
}

// keysFor builds the deduplicated key list for one record.
func keysFor(command, base string) []string {
	keys := make([]string, 0, 3)
	add := func(k string) {
		if k == "" {
			return
		}
		for _, existing := range keys {
			if existing == k {
				return
			}
		}
		keys = append(keys, k)
	}

	add(command)
	add(base)
	if filepath.IsAbs(command) {
		if info, err := os.Lstat(command); err == nil && info.Mode()&os.ModeSymlink != 0 {
			if target, err := filepath.EvalSymlinks(command); err == nil {
				add(target)
			}
		}
	}
	return keys
}

// value returns the first key in names present in sec.
func value(sec *ini.Section, names ...string) (string, bool) {
	for _, n := range names {
		if sec.HasKey(n) {
			return sec.Key(n).String(), true
		}
	}
	return "", false
}

func skipped(path, reason string) Result {
	return Result{Path: path, Outcome: Skipped, Reason: reason}
}

func failed(path string, err error) Result {
	return Result{Path: path, Outcome: Failed, Err: err}
}
