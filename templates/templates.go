// Package templates holds the embedded code generation templates.
package templates

import "embed"

//go:embed go/*.tmpl
var FS embed.FS
