package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/kolah/relay/server"
	"github.com/pb33f/libopenapi"
	"github.com/pb33f/libopenapi/datamodel"
	v3 "github.com/pb33f/libopenapi/datamodel/high/v3"
)

// Result is a parsed OpenAPI 3.x document. Warnings name the parts of the
// document relay will not serve.
type Result struct {
	Document *libopenapi.DocumentModel[v3.Document]
	Version  string
	Warnings []string
	RawData  []byte
}

// Option adjusts how a document is loaded.
type Option func(*options)

type options struct {
	basePath string
	version  string
}

// WithBasePath resolves file references relative to dir.
func WithBasePath(dir string) Option {
	return func(o *options) {
		o.basePath = dir
	}
}

// RequireVersion rejects documents whose openapi version does not start with
// prefix.
func RequireVersion(prefix string) Option {
	return func(o *options) {
		o.version = prefix
	}
}

// Load parses an in-memory document. File references are resolved only when
// WithBasePath is given.
func Load(data []byte, opts ...Option) (*Result, error) {
	o := options{version: "3."}
	for _, opt := range opts {
		opt(&o)
	}

	var config *datamodel.DocumentConfiguration
	if o.basePath != "" {
		config = &datamodel.DocumentConfiguration{
			BasePath:            o.basePath,
			AllowFileReferences: true,
		}
	}

	var doc libopenapi.Document
	var err error
	if config != nil {
		doc, err = libopenapi.NewDocumentWithConfiguration(data, config)
	} else {
		doc, err = libopenapi.NewDocument(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing OpenAPI document: %w", err)
	}

	version := doc.GetVersion()
	if !strings.HasPrefix(version, "3.") {
		return nil, fmt.Errorf("unsupported OpenAPI version: %s (only 3.x supported)", version)
	}
	if !strings.HasPrefix(version, o.version) {
		return nil, fmt.Errorf("OpenAPI version %s does not match required %s", version, o.version)
	}

	model, err := doc.BuildV3Model()
	if err != nil {
		return nil, fmt.Errorf("building OpenAPI model: %w", err)
	}

	return &Result{
		Document: model,
		Version:  version,
		Warnings: warnings(&model.Model),
		RawData:  data,
	}, nil
}

// LoadFile parses the document at path, resolving file references relative
// to it.
func LoadFile(path string, opts ...Option) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving absolute path: %w", err)
	}

	return Load(data, append([]Option{WithBasePath(filepath.Dir(absPath))}, opts...)...)
}

func warnings(doc *v3.Document) []string {
	var out []string
	if doc.Paths != nil && doc.Paths.PathItems != nil {
		for path := range doc.Paths.PathItems.FromOldest() {
			if _, err := server.ParsePattern(path); err != nil {
				out = append(out, fmt.Sprintf("path %s cannot be routed: %v", path, err))
			}
		}
	}
	if doc.Webhooks != nil {
		hooks := 0
		for range doc.Webhooks.FromOldest() {
			hooks++
		}
		if hooks > 0 {
			out = append(out, fmt.Sprintf("%d webhook(s) ignored; only paths are served", hooks))
		}
	}
	return out
}
