package media

import (
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
)

// Roots are the three namespace directories, fixed at startup.
type Roots struct {
	Music      string
	Promo      string
	Background string
}

// Gateway resolves references to concrete file locations.
// It holds no mutable state; the roots never change after construction.
type Gateway struct {
	roots [3]string // indexed by Namespace
}

// NewGateway creates a gateway. Roots are made absolute so containment
// checks do not depend on later working directory changes.
func NewGateway(roots Roots) (*Gateway, error) {
	g := &Gateway{}
	for ns, root := range map[Namespace]string{
		NamespaceMusic:      roots.Music,
		NamespacePromo:      roots.Promo,
		NamespaceBackground: roots.Background,
	} {
		if strings.TrimSpace(root) == "" {
			return nil, errors.Newf("%s root is not configured", ns)
		}
		abs, err := filepath.Abs(root)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to resolve %s root", ns)
		}
		g.roots[ns] = abs
	}
	return g, nil
}

// Root returns the absolute root of a namespace.
func (g *Gateway) Root(ns Namespace) string {
	if ns < NamespaceMusic || ns > NamespaceBackground {
		return ""
	}
	return g.roots[ns]
}

// Resolve joins the namespace root with a percent-encoded relative reference.
func (g *Gateway) Resolve(ns Namespace, encoded string) (string, error) {
	ref, err := NewRef(ns, encoded)
	if err != nil {
		return "", err
	}
	return g.ResolveRef(ref)
}

// ResolveURI resolves a "<namespace>:<path>" reference.
func (g *Gateway) ResolveURI(s string) (string, error) {
	ref, err := ParseRef(s)
	if err != nil {
		return "", err
	}
	return g.ResolveRef(ref)
}

// ResolveRef resolves an already validated reference.
func (g *Gateway) ResolveRef(ref Ref) (string, error) {
	root := g.Root(ref.ns)
	if root == "" || ref.rel == "" {
		return "", errors.Wrapf(ErrUnknownNamespace, "invalid reference %v", ref)
	}

	full := filepath.Join(root, filepath.FromSlash(ref.rel))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Wrapf(ErrPathEscape, "%s resolves outside %s", ref, root)
	}
	return full, nil
}
