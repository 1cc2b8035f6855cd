package router

import "strings"

// JoinPath concatenates route fragments with exactly one slash between
// them and a single leading slash. Empty fragments are skipped.
func JoinPath(parts ...string) string {
	segments := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, "/")
		if p == "" {
			continue
		}
		for _, s := range strings.Split(p, "/") {
			if s != "" {
				segments = append(segments, s)
			}
		}
	}
	return "/" + strings.Join(segments, "/")
}

// toChiPattern rewrites ":name" segments into chi's "{name}" form.
func toChiPattern(pattern string) string {
	segments := strings.Split(pattern, "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") && len(s) > 1 {
			segments[i] = "{" + s[1:] + "}"
		}
	}
	return strings.Join(segments, "/")
}

// paramNames lists the ":name" segments of pattern in declaration order.
func paramNames(pattern string) []string {
	var names []string
	for _, s := range strings.Split(pattern, "/") {
		if strings.HasPrefix(s, ":") && len(s) > 1 {
			names = append(names, s[1:])
		}
	}
	return names
}

// routeKey identifies a route for duplicate detection. Parameter names are
// erased because "/a/:x" and "/a/:y" match the same requests.
func routeKey(verb, pattern string) string {
	segments := strings.Split(strings.ToLower(pattern), "/")
	for i, s := range segments {
		if strings.HasPrefix(s, ":") {
			segments[i] = ":"
		}
	}
	return strings.ToUpper(verb) + " " + strings.Join(segments, "/")
}
