// Package media maps namespaced virtual references to files under their configured roots.
package media

import (
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

var (
	// ErrPathEscape is returned when a reference would leave its namespace root.
	ErrPathEscape = errors.New("path escapes namespace root")
	// ErrUnknownNamespace is returned for an unrecognised namespace tag.
	ErrUnknownNamespace = errors.New("unknown namespace")
)

// Namespace identifies one of the isolated asset roots.
type Namespace int

const (
	NamespaceMusic      Namespace = iota // External music library
	NamespacePromo                       // Bundled promotional clip
	NamespaceBackground                  // Bundled background loops
)

// String returns the scheme tag of the namespace.
func (n Namespace) String() string {
	switch n {
	case NamespaceMusic:
		return "music"
	case NamespacePromo:
		return "promo"
	case NamespaceBackground:
		return "background"
	default:
		return "unknown"
	}
}

// ParseNamespace parses a scheme tag.
func ParseNamespace(tag string) (Namespace, error) {
	switch tag {
	case "music":
		return NamespaceMusic, nil
	case "promo":
		return NamespacePromo, nil
	case "background":
		return NamespaceBackground, nil
	default:
		return 0, errors.Wrapf(ErrUnknownNamespace, "%q", tag)
	}
}

// Ref is a validated reference to an asset inside a namespace.
// The zero value is not valid; use NewRef, RefFor or ParseRef.
type Ref struct {
	ns  Namespace
	rel string // decoded, slash separated, never escapes the root
}

// NewRef builds a reference from a percent-encoded relative path.
func NewRef(ns Namespace, encoded string) (Ref, error) {
	rel, err := url.PathUnescape(encoded)
	if err != nil {
		return Ref{}, errors.Wrapf(ErrPathEscape, "undecodable reference %q", encoded)
	}
	return RefFor(ns, rel)
}

// RefFor builds a reference from an already decoded relative path.
func RefFor(ns Namespace, rel string) (Ref, error) {
	if ns < NamespaceMusic || ns > NamespaceBackground {
		return Ref{}, errors.Wrapf(ErrUnknownNamespace, "namespace %d", int(ns))
	}
	clean, err := cleanRelative(rel)
	if err != nil {
		return Ref{}, err
	}
	return Ref{ns: ns, rel: clean}, nil
}

// ParseRef parses the "<namespace>:<percent-encoded path>" scheme.
func ParseRef(s string) (Ref, error) {
	tag, encoded, ok := strings.Cut(s, ":")
	if !ok {
		return Ref{}, errors.Wrapf(ErrUnknownNamespace, "reference %q has no namespace", s)
	}
	ns, err := ParseNamespace(tag)
	if err != nil {
		return Ref{}, err
	}
	return NewRef(ns, encoded)
}

// Namespace returns the namespace of the reference.
func (r Ref) Namespace() Namespace {
	return r.ns
}

// Rel returns the decoded relative path.
func (r Ref) Rel() string {
	return r.rel
}

// String encodes the reference back to the virtual scheme.
func (r Ref) String() string {
	segments := strings.Split(r.rel, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return r.ns.String() + ":" + strings.Join(segments, "/")
}

// cleanRelative validates a decoded relative path and returns its clean form.
func cleanRelative(rel string) (string, error) {
	switch {
	case rel == "":
		return "", errors.Wrap(ErrPathEscape, "empty reference")
	case strings.ContainsRune(rel, 0):
		return "", errors.Wrapf(ErrPathEscape, "reference %q contains NUL", rel)
	case strings.Contains(rel, `\`):
		return "", errors.Wrapf(ErrPathEscape, "reference %q contains a backslash", rel)
	case path.IsAbs(rel) || filepath.IsAbs(rel) || filepath.VolumeName(rel) != "":
		return "", errors.Wrapf(ErrPathEscape, "reference %q is absolute", rel)
	}

	for _, seg := range strings.Split(rel, "/") {
		if seg == ".." {
			return "", errors.Wrapf(ErrPathEscape, "reference %q contains a parent segment", rel)
		}
	}

	clean := path.Clean(rel)
	if clean == "." {
		return "", errors.Wrapf(ErrPathEscape, "reference %q names the root itself", rel)
	}
	return clean, nil
}
