package signature

import "strings"

// Wire names of the supported kinds.
const (
	TypePathContains       = "path_contains"
	TypeExtension          = "extension"
	TypeFilename           = "filename"
	TypeFilenameStartsWith = "filename_starts_with"
	TypeFilenameEndsWith   = "filename_ends_with"
	TypePathComponent      = "path_component"
)

// Kind is one path-matching rule. The set of implementations is closed to
// this package.
type Kind interface {
	// Type returns the wire discriminator, e.g. "extension".
	Type() string
	// Value returns the pattern parameter as it was configured.
	Value() string
	// Matches reports whether lowerPath satisfies the rule. lowerPath must
	// already be lower-cased.
	Matches(lowerPath string) bool

	sealed()
}

type pattern struct {
	raw   string
	lower string
}

func newPattern(s string) pattern { return pattern{raw: s, lower: strings.ToLower(s)} }

func (p pattern) Value() string { return p.raw }
func (pattern) sealed()         {}

// finalComponent returns the text after the last '/'.
func finalComponent(p string) string {
	return p[strings.LastIndexByte(p, '/')+1:]
}

type pathContains struct{ pattern }

// PathContains matches when s occurs anywhere in the path.
func PathContains(s string) Kind { return pathContains{newPattern(s)} }

func (pathContains) Type() string { return TypePathContains }
func (k pathContains) Matches(p string) bool {
	return strings.Contains(p, k.lower)
}

type extension struct {
	pattern
	suffix string
}

// Extension matches when the path ends with "." + s.
func Extension(s string) Kind {
	pt := newPattern(s)
	return extension{pattern: pt, suffix: "." + pt.lower}
}

func (extension) Type() string { return TypeExtension }
func (k extension) Matches(p string) bool {
	return strings.HasSuffix(p, k.suffix)
}

type filename struct {
	pattern
	suffix string
}

// Filename matches when the path equals s or ends with "/" + s.
func Filename(s string) Kind {
	pt := newPattern(s)
	return filename{pattern: pt, suffix: "/" + pt.lower}
}

func (filename) Type() string { return TypeFilename }
func (k filename) Matches(p string) bool {
	return p == k.lower || strings.HasSuffix(p, k.suffix)
}

type filenameStartsWith struct{ pattern }

// FilenameStartsWith matches when the final path component starts with s.
func FilenameStartsWith(s string) Kind { return filenameStartsWith{newPattern(s)} }

func (filenameStartsWith) Type() string { return TypeFilenameStartsWith }
func (k filenameStartsWith) Matches(p string) bool {
	return strings.HasPrefix(finalComponent(p), k.lower)
}

type filenameEndsWith struct{ pattern }

// FilenameEndsWith matches when the whole path ends with s. The check is not
// restricted to the final component.
func FilenameEndsWith(s string) Kind { return filenameEndsWith{newPattern(s)} }

func (filenameEndsWith) Type() string { return TypeFilenameEndsWith }
func (k filenameEndsWith) Matches(p string) bool {
	return strings.HasSuffix(p, k.lower)
}

type pathComponent struct {
	pattern
	prefix string
}

// PathComponent strips every '*' from s and matches when the final path
// component starts with the remainder. Intermediate directories are not
// consulted.
func PathComponent(s string) Kind {
	pt := newPattern(s)
	return pathComponent{pattern: pt, prefix: strings.ReplaceAll(pt.lower, "*", "")}
}

func (pathComponent) Type() string { return TypePathComponent }
func (k pathComponent) Matches(p string) bool {
	return strings.HasPrefix(finalComponent(p), k.prefix)
}

var constructors = map[string]func(string) Kind{
	TypePathContains:       PathContains,
	TypeExtension:          Extension,
	TypeFilename:           Filename,
	TypeFilenameStartsWith: FilenameStartsWith,
	TypeFilenameEndsWith:   FilenameEndsWith,
	TypePathComponent:      PathComponent,
}

// Types returns the supported wire discriminators in a stable order.
func Types() []string {
	return []string{
		TypePathContains,
		TypeExtension,
		TypeFilename,
		TypeFilenameStartsWith,
		TypeFilenameEndsWith,
		TypePathComponent,
	}
}
