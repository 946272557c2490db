package server

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePattern(t *testing.T) {
	tests := []struct {
		path        string
		want        []Segment
		errContains string
	}{
		{path: "/", want: nil},
		{path: "/echo", want: []Segment{{Kind: SegmentLiteral, Value: "echo"}}},
		{
			path: "/echo/{a}/{b*}",
			want: []Segment{
				{Kind: SegmentLiteral, Value: "echo"},
				{Kind: SegmentParam, Value: "a"},
				{Kind: SegmentWildcard, Value: "b"},
			},
		},
		{
			path: "/users/{id}/{tab?}",
			want: []Segment{
				{Kind: SegmentLiteral, Value: "users"},
				{Kind: SegmentParam, Value: "id"},
				{Kind: SegmentOptional, Value: "tab"},
			},
		},
		{
			path: "/echo/{a}/{b*2}/{c?}",
			want: []Segment{
				{Kind: SegmentLiteral, Value: "echo"},
				{Kind: SegmentParam, Value: "a"},
				{Kind: SegmentMulti, Value: "b", Count: 2},
				{Kind: SegmentOptional, Value: "c"},
			},
		},
		{
			path: "/{b*3}/tail",
			want: []Segment{
				{Kind: SegmentMulti, Value: "b", Count: 3},
				{Kind: SegmentLiteral, Value: "tail"},
			},
		},
		{path: "echo", errContains: "must start with /"},
		{path: "/echo/", errContains: "empty segment"},
		{path: "/a//b", errContains: "empty segment"},
		{path: "/{a*}/b", errContains: "must be the last segment"},
		{path: "/{a?}/b", errContains: "must be the last segment"},
		{path: "/{a}/{a}", errContains: "duplicate parameter"},
		{path: "/{b*2}/{b__1}", errContains: "duplicate parameter"},
		{path: "/{b*0}", errContains: "invalid segment count"},
		{path: "/{b*x}", errContains: "invalid segment count"},
		{path: "/{*2}", errContains: "invalid parameter name"},
		{path: "/{a", errContains: "unterminated parameter"},
		{path: "/{}", errContains: "invalid parameter name"},
		{path: "/{1a}", errContains: "invalid parameter name"},
		{path: "/a{b}", errContains: "invalid literal segment"},
		{path: "/files/*", errContains: "invalid literal segment"},
		{path: "/a:b", errContains: "invalid literal segment"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			p, err := ParsePattern(tt.path)
			if tt.errContains != "" {
				require.ErrorContains(t, err, tt.errContains)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.path, p.Raw)
			require.Equal(t, tt.want, p.Segments)
		})
	}
}

func TestPatternHelpers(t *testing.T) {
	p, err := ParsePattern("/echo/{a}/{b*}")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, p.Params())

	name, ok := p.Wildcard()
	require.True(t, ok)
	require.Equal(t, "b", name)
	require.Equal(t, "/echo/{}/{*}", p.Key())

	plain, err := ParsePattern("/users/{id}")
	require.NoError(t, err)
	_, ok = plain.Wildcard()
	require.False(t, ok)
	require.Len(t, plain.Variants(), 1)
}

func TestPatternVariants(t *testing.T) {
	p, err := ParsePattern("/users/{id?}")
	require.NoError(t, err)

	variants := p.Variants()
	require.Len(t, variants, 2)
	require.Equal(t, "/users", variants[0].Key())
	require.Equal(t, "/users/{}", variants[1].Key())
	require.Equal(t, []string{"id"}, variants[1].Params())

	root, err := ParsePattern("/{page?}")
	require.NoError(t, err)
	require.Equal(t, "/", root.Variants()[0].Key())

	files, err := ParsePattern("/files/{rest*}")
	require.NoError(t, err)
	variants = files.Variants()
	require.Len(t, variants, 2)
	require.Equal(t, "/files", variants[0].Key())
	require.Equal(t, "/files/{*}", variants[1].Key())
}

func TestPatternFields(t *testing.T) {
	p, err := ParsePattern("/echo/{a}/{b*2}/{c?}")
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, p.Params())
	require.Equal(t, []string{"a", "b__0", "b__1", "c"}, p.Fields())
	require.Equal(t, "/echo/{}/{}/{}/{}", p.Key())
	require.Equal(t, "/echo/{}/{}/{}", p.Variants()[0].Key())
}

func TestPatternCollect(t *testing.T) {
	multi, err := ParsePattern("/echo/{a}/{b*2}/{c?}")
	require.NoError(t, err)
	wild, err := ParsePattern("/files/{id}/{rest*}")
	require.NoError(t, err)

	tests := []struct {
		name        string
		pattern     Pattern
		fields      map[string]string
		escaped     bool
		want        map[string]string
		errContains string
	}{
		{
			name:    "multi segment joined",
			pattern: multi,
			fields:  map[string]string{"a": "1", "b__0": "2", "b__1": "3"},
			want:    map[string]string{"a": "1", "b": "2/3"},
		},
		{
			name:    "optional present",
			pattern: multi,
			fields:  map[string]string{"a": "1", "b__0": "2", "b__1": "3", "c": "4"},
			want:    map[string]string{"a": "1", "b": "2/3", "c": "4"},
		},
		{
			name:    "absent wildcard is empty",
			pattern: wild,
			fields:  map[string]string{"id": "x"},
			want:    map[string]string{"id": "x", "rest": ""},
		},
		{
			name:    "unescaped when escaped",
			pattern: wild,
			fields:  map[string]string{"id": "a%2Fb", "rest": "c%20d/e"},
			escaped: true,
			want:    map[string]string{"id": "a/b", "rest": "c d/e"},
		},
		{
			name:    "left alone when not escaped",
			pattern: wild,
			fields:  map[string]string{"id": "100%", "rest": ""},
			want:    map[string]string{"id": "100%", "rest": ""},
		},
		{
			name:        "bad escape",
			pattern:     wild,
			fields:      map[string]string{"id": "%zz"},
			escaped:     true,
			errContains: "parameter id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.pattern.Collect(tt.fields, tt.escaped)
			if tt.errContains != "" {
				require.ErrorContains(t, err, tt.errContains)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestConvertPath(t *testing.T) {
	p, err := ParsePattern("/files/{id}/{rest*}")
	require.NoError(t, err)
	root, err := ParsePattern("/")
	require.NoError(t, err)

	require.Equal(t, "/files/{id}/*", NewChiEngine().ConvertPath(p))
	require.Equal(t, "/files/:id/*", NewEchoEngine().ConvertPath(p))
	require.Equal(t, "/files/{id}/{rest...}", NewStdlibEngine().ConvertPath(p))

	multi, err := ParsePattern("/m/{b*2}")
	require.NoError(t, err)
	require.Equal(t, "/m/{b__0}/{b__1}", NewChiEngine().ConvertPath(multi))
	require.Equal(t, "/m/:b__0/:b__1", NewEchoEngine().ConvertPath(multi))
	require.Equal(t, "/m/{b__0}/{b__1}", NewStdlibEngine().ConvertPath(multi))

	require.Equal(t, "/", NewChiEngine().ConvertPath(root))
	require.Equal(t, "/{$}", NewStdlibEngine().ConvertPath(root))
}
