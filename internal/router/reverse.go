package router

import (
	"fmt"
	"net/url"
	"strings"
)

// Reverse returns the absolute path (mount point included) of the named route,
// filling its placeholders with args in order. Arguments are path-escaped.
func (r *Router) Reverse(name string, args ...string) (string, error) {
	tmpl, ok := r.names[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown route %q", ErrNoReverseMatch, name)
	}

	segments := strings.Split(tmpl, "/")
	next := 0
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") {
			continue
		}
		if next >= len(args) {
			return "", fmt.Errorf("%w: %q expects more than %d argument(s)", ErrNoReverseMatch, name, len(args))
		}
		if args[next] == "" {
			return "", fmt.Errorf("%w: %q argument %d is empty", ErrNoReverseMatch, name, next)
		}
		segments[i] = url.PathEscape(args[next])
		next++
	}
	if next != len(args) {
		return "", fmt.Errorf("%w: %q expects %d argument(s), got %d", ErrNoReverseMatch, name, next, len(args))
	}

	return r.basePath + strings.Join(segments, "/"), nil
}
