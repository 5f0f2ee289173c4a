package ports

// IconFinder locates an icon file for an application on a best-effort basis.
// The concrete implementation (doublestar globbing over icon-theme directories)
// lives in internal/adapters/icontheme. Results are not ranked: the first
// matching path wins, and the order depends on the filesystem.
type IconFinder interface {
	// Find returns a path whose text contains name, or false if nothing
	// matched. An empty name never matches.
	Find(name string) (string, bool)
}
