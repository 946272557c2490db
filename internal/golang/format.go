package golang

import (
	"bufio"
	"bytes"
	"fmt"

	"golang.org/x/tools/imports"
)

// Format runs goimports over generated source. A syntax error carries the
// numbered source so the offending template output can be located.
func Format(filename string, src []byte) ([]byte, error) {
	out, err := imports.Process("", src, &imports.Options{
		Comments:  true,
		TabIndent: true,
		TabWidth:  8,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w\n%s", filename, err, numbered(src))
	}
	return out, nil
}

func numbered(src []byte) string {
	var b bytes.Buffer
	scanner := bufio.NewScanner(bytes.NewReader(src))
	for n := 1; scanner.Scan(); n++ {
		fmt.Fprintf(&b, "%4d  %s\n", n, scanner.Text())
	}
	return b.String()
}
