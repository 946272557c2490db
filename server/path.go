package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

type SegmentKind int

const (
	SegmentLiteral SegmentKind = iota
	SegmentParam
	// SegmentOptional is a trailing parameter that may be absent: {name?}
	SegmentOptional
	// SegmentWildcard is a trailing parameter matching zero or more
	// segments, slashes included: {name*}
	SegmentWildcard
	// SegmentMulti is a parameter spanning exactly Count segments:
	// {name*2}. Its value joins them with slashes.
	SegmentMulti
)

// Segment is one piece of a route path. Value is the literal text or the
// parameter name.
type Segment struct {
	Kind  SegmentKind
	Value string
	Count int
}

// Pattern is a parsed route path.
type Pattern struct {
	Raw      string
	Segments []Segment
}

// ParsePattern parses a route path such as /users/{id}/files/{path*}.
func ParsePattern(path string) (Pattern, error) {
	if !strings.HasPrefix(path, "/") {
		return Pattern{}, fmt.Errorf("path %q must start with /", path)
	}
	p := Pattern{Raw: path}
	if path == "/" {
		return p, nil
	}

	parts := strings.Split(path[1:], "/")
	seen := make(map[string]bool)
	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return Pattern{}, fmt.Errorf("path %q: %w", path, err)
		}
		if seg.Kind != SegmentLiteral {
			for _, name := range append([]string{seg.Value}, seg.fields()...) {
				if seen[name] {
					return Pattern{}, fmt.Errorf("path %q: duplicate parameter %q", path, name)
				}
				seen[name] = true
			}
		}
		if (seg.Kind == SegmentOptional || seg.Kind == SegmentWildcard) && i != len(parts)-1 {
			return Pattern{}, fmt.Errorf("path %q: parameter %q must be the last segment", path, seg.Value)
		}
		p.Segments = append(p.Segments, seg)
	}
	return p, nil
}

func parseSegment(part string) (Segment, error) {
	if part == "" {
		return Segment{}, fmt.Errorf("empty segment")
	}
	if !strings.HasPrefix(part, "{") {
		if strings.ContainsAny(part, "{}*:") {
			return Segment{}, fmt.Errorf("invalid literal segment %q", part)
		}
		return Segment{Kind: SegmentLiteral, Value: part}, nil
	}
	if !strings.HasSuffix(part, "}") {
		return Segment{}, fmt.Errorf("unterminated parameter %q", part)
	}

	name := part[1 : len(part)-1]
	seg := Segment{Kind: SegmentParam}
	switch {
	case strings.HasSuffix(name, "?"):
		seg.Kind = SegmentOptional
		name = strings.TrimSuffix(name, "?")
	case strings.HasSuffix(name, "*"):
		seg.Kind = SegmentWildcard
		name = strings.TrimSuffix(name, "*")
	case strings.Contains(name, "*"):
		i := strings.LastIndex(name, "*")
		count, err := strconv.Atoi(name[i+1:])
		if err != nil || count < 1 {
			return Segment{}, fmt.Errorf("invalid segment count in %q", part)
		}
		seg.Kind = SegmentMulti
		seg.Count = count
		name = name[:i]
	}
	if !validParamName(name) {
		return Segment{}, fmt.Errorf("invalid parameter name %q", name)
	}
	seg.Value = name
	return seg, nil
}

func validParamName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}

// fieldName names the i-th router parameter of a multi-segment parameter.
func fieldName(name string, i int) string {
	return name + "__" + strconv.Itoa(i)
}

// fields returns the router parameter names of a multi-segment parameter.
func (s Segment) fields() []string {
	if s.Kind != SegmentMulti {
		return nil
	}
	names := make([]string, s.Count)
	for i := range names {
		names[i] = fieldName(s.Value, i)
	}
	return names
}

// Params returns the parameter names in path order.
func (p Pattern) Params() []string {
	var names []string
	for _, seg := range p.Segments {
		if seg.Kind != SegmentLiteral {
			names = append(names, seg.Value)
		}
	}
	return names
}

// Fields returns the parameter names a router sees, in path order. A
// multi-segment parameter contributes one field per segment.
func (p Pattern) Fields() []string {
	var names []string
	for _, seg := range p.Segments {
		switch seg.Kind {
		case SegmentLiteral:
		case SegmentMulti:
			names = append(names, seg.fields()...)
		default:
			names = append(names, seg.Value)
		}
	}
	return names
}

// Wildcard returns the name of the trailing catch-all parameter, if any.
func (p Pattern) Wildcard() (string, bool) {
	if n := len(p.Segments); n > 0 && p.Segments[n-1].Kind == SegmentWildcard {
		return p.Segments[n-1].Value, true
	}
	return "", false
}

// Variants expands a trailing optional parameter into the pattern without it
// and the pattern with it as a plain parameter. A trailing wildcard expands
// into the pattern without it and the pattern itself, so it also matches
// zero segments. Other patterns expand to themselves.
func (p Pattern) Variants() []Pattern {
	n := len(p.Segments)
	if n == 0 {
		return []Pattern{p}
	}

	last := p.Segments[n-1]
	switch last.Kind {
	case SegmentOptional:
		without := Pattern{Raw: p.Raw, Segments: p.Segments[:n-1:n-1]}
		with := Pattern{Raw: p.Raw, Segments: make([]Segment, n)}
		copy(with.Segments, p.Segments)
		with.Segments[n-1].Kind = SegmentParam
		return []Pattern{without, with}
	case SegmentWildcard:
		return []Pattern{{Raw: p.Raw, Segments: p.Segments[:n-1:n-1]}, p}
	default:
		return []Pattern{p}
	}
}

// Format renders the pattern with param producing the text for every
// parameter segment. Multi-segment parameters are rendered once per field
// as plain parameters.
func (p Pattern) Format(param func(Segment) string) string {
	if len(p.Segments) == 0 {
		return "/"
	}
	var b strings.Builder
	for _, seg := range p.Segments {
		switch seg.Kind {
		case SegmentLiteral:
			b.WriteByte('/')
			b.WriteString(seg.Value)
		case SegmentMulti:
			for _, name := range seg.fields() {
				b.WriteByte('/')
				b.WriteString(param(Segment{Kind: SegmentParam, Value: name}))
			}
		default:
			b.WriteByte('/')
			b.WriteString(param(seg))
		}
	}
	return b.String()
}

// Key identifies the pattern's shape; two patterns with the same key match
// the same requests.
func (p Pattern) Key() string {
	return p.Format(func(seg Segment) string {
		if seg.Kind == SegmentWildcard {
			return "{*}"
		}
		return "{}"
	})
}

// Collect builds parameter values from the fields a router extracted for one
// of p's variants. Multi-segment values are joined with slashes, an absent
// wildcard is empty and an absent optional parameter is omitted. Escaped
// values come from the raw request path and are unescaped.
func (p Pattern) Collect(fields map[string]string, escaped bool) (map[string]string, error) {
	params := make(map[string]string, len(fields))
	for _, seg := range p.Segments {
		var value string
		switch seg.Kind {
		case SegmentLiteral:
			continue
		case SegmentMulti:
			parts := make([]string, seg.Count)
			for i, name := range seg.fields() {
				parts[i] = fields[name]
			}
			value = strings.Join(parts, "/")
		case SegmentOptional:
			v, ok := fields[seg.Value]
			if !ok {
				continue
			}
			value = v
		default:
			value = fields[seg.Value]
		}

		if escaped {
			v, err := url.PathUnescape(value)
			if err != nil {
				return nil, fmt.Errorf("parameter %s: %w", seg.Value, err)
			}
			value = v
		}
		params[seg.Value] = value
	}
	return params, nil
}
