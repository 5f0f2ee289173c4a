package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/corey/appmeta/internal/domain/appindex"
	"github.com/corey/appmeta/internal/ports"
)

// ANSI color codes for terminal output.
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorCyan   = "\033[36m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

// jsonRecord is the --json shape of one index entry or lookup result.
type jsonRecord struct {
	Key         string `json:"key,omitempty"`
	Name        string `json:"name"`
	Icon        string `json:"icon"`
	Description string `json:"description,omitempty"`
	Source      string `json:"source,omitempty"`
}

func toJSON(key string, rec *ports.Record) jsonRecord {
	return jsonRecord{
		Key:         key,
		Name:        rec.DisplayName,
		Icon:        rec.IconPath,
		Description: rec.Description,
		Source:      rec.SourceFile,
	}
}

// formatRecord renders one record.
//
//	Text Editor  Edit text files
//	  icon:   /usr/share/icons/.../gedit.svg
//	  source: /usr/share/applications/org.gnome.gedit.desktop
func formatRecord(rec *ports.Record) string {
	var sb strings.Builder
	sb.WriteString(colorBold + rec.DisplayName + colorReset)
	if rec.Description != "" {
		sb.WriteString("  " + colorGray + rec.Description + colorReset)
	}
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  icon:   %s\n", rec.IconPath))
	if rec.Synthetic() {
		sb.WriteString(fmt.Sprintf("  source: %s(no descriptor)%s\n", colorYellow, colorReset))
	} else {
		sb.WriteString(fmt.Sprintf("  source: %s\n", rec.SourceFile))
	}
	return sb.String()
}

// formatEntries renders the index one key per line, in the order given.
//
//	/usr/bin/gedit  →  Text Editor  (org.gnome.gedit.desktop)
func formatEntries(entries []appindex.Entry) string {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(fmt.Sprintf("%s%s%s  →  %s", colorCyan, e.Key, colorReset, e.Record.DisplayName))
		if e.Record.SourceFile != "" {
			sb.WriteString(fmt.Sprintf("  %s(%s)%s", colorGray, filepath.Base(e.Record.SourceFile), colorReset))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// writeJSON encodes v indented.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
