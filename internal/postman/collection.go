package postman

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi2"
	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/mark3labs/swagger2postman/internal/atomicfile"
	"github.com/mark3labs/swagger2postman/internal/spec"
)

const (
	defaultCollectionName = "Swagger Collection"
	// BaseURLPlaceholder is the baseUrl value when the document lists no servers.
	BaseURLPlaceholder = "BaseURL"
	// AuthTokenPlaceholder is the authToken value users replace by hand.
	AuthTokenPlaceholder = "YOUR_TOKEN_HERE"
	DefaultVersion       = "1"
)

// BuildOption configures how a collection is built from a document.
type BuildOption func(*buildConfig)

type buildConfig struct {
	includeTags   map[string]struct{}
	excludeTags   map[string]struct{}
	folderSegment int
	exampleLimit  int
}

// WithIncludeTags keeps only folders whose name is in tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.includeTags = addTags(c.includeTags, tags)
	}
}

// WithExcludeTags drops folders whose name is in tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) {
		c.excludeTags = addTags(c.excludeTags, tags)
	}
}

// WithFolderSegment sets the path segment index used to name folders for
// untagged operations.
func WithFolderSegment(n int) BuildOption {
	return func(c *buildConfig) { c.folderSegment = n }
}

// WithExampleLimit caps the placeholder values generated per request body.
// Zero or less removes the cap.
func WithExampleLimit(n int) BuildOption {
	return func(c *buildConfig) { c.exampleLimit = n }
}

func addTags(set map[string]struct{}, tags []string) map[string]struct{} {
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if set == nil {
			set = make(map[string]struct{}, len(tags))
		}
		set[t] = struct{}{}
	}
	return set
}

func (c *buildConfig) allow(folder string) bool {
	if len(c.includeTags) > 0 {
		if _, ok := c.includeTags[folder]; !ok {
			return false
		}
	}
	_, blocked := c.excludeTags[folder]
	return !blocked
}

// Transcoder converts one source document into Postman items.
type Transcoder struct {
	doc      *spec.Document
	resolver *Resolver
	cfg      buildConfig
}

func NewTranscoder(doc *spec.Document, opts ...BuildOption) *Transcoder {
	cfg := buildConfig{folderSegment: DefaultFolderSegment, exampleLimit: DefaultExampleLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	defs, _ := doc.Schemas()
	resolver := NewResolver(defs, doc.Order)
	resolver.limit = cfg.exampleLimit
	return &Transcoder{
		doc:      doc,
		resolver: resolver,
		cfg:      cfg,
	}
}

// Build converts doc into a collection. Paths are visited in document order
// and each lands in the folder named by FolderKey, created on first use.
func Build(ctx context.Context, doc *spec.Document, opts ...BuildOption) (*Collection, error) {
	if doc == nil || doc.T == nil {
		return nil, fmt.Errorf("postman: nil document")
	}
	return NewTranscoder(doc, opts...).Build(ctx)
}

// Build stops between paths once ctx is done.
func (t *Transcoder) Build(ctx context.Context) (*Collection, error) {
	folders := orderedmap.New[string, *Folder]()

	for _, path := range spec.OrderedKeys(t.doc.Order, "/paths", t.doc.Paths) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pathItem := t.doc.Paths[path]
		if pathItem == nil {
			continue
		}
		ops := t.operations(path, pathItem)
		if len(ops) == 0 {
			continue
		}
		key, err := FolderKey(path, ops[0].Op, t.cfg.folderSegment)
		if err != nil {
			var se *spec.SpecError
			if errors.As(err, &se) {
				se.Location = t.doc.Location
			}
			return nil, err
		}
		if !t.cfg.allow(key) {
			slog.Debug("skipping filtered folder", "folder", key, "path", path)
			continue
		}
		folder, ok := folders.Get(key)
		if !ok {
			folder = &Folder{Name: key, Items: []*Item{}}
			folders.Set(key, folder)
		}
		for _, op := range ops {
			item, err := t.BuildItem(key, op)
			if err != nil {
				return nil, err
			}
			folder.Items = append(folder.Items, item)
		}
	}

	c := &Collection{
		Info: Info{
			Name:        t.doc.Title(),
			Schema:      SchemaURL,
			Description: t.doc.Description(),
		},
		Folders:   make([]*Folder, 0, folders.Len()),
		Variables: Variables(t.doc),
	}
	if c.Info.Name == "" {
		c.Info.Name = defaultCollectionName
	}
	for pair := folders.Oldest(); pair != nil; pair = pair.Next() {
		c.Folders = append(c.Folders, pair.Value)
	}
	return c, nil
}

// operations lists the operations of a path item in document order.
func (t *Transcoder) operations(path string, pathItem *openapi2.PathItem) []Operation {
	byKey := make(map[string]*openapi2.Operation)
	for method, op := range pathItem.Operations() {
		byKey[strings.ToLower(method)] = op
	}
	keys := spec.OrderedKeys(t.doc.Order, spec.Pointer("/paths", path), byKey)
	out := make([]Operation, 0, len(keys))
	for _, k := range keys {
		out = append(out, Operation{Path: path, Method: k, Op: byKey[k], Shared: pathItem.Parameters})
	}
	return out
}

// Variables returns the collection variables: baseUrl, authToken and version.
func Variables(doc *spec.Document) []Variable {
	base := BaseURLPlaceholder
	if len(doc.Servers) > 0 {
		base = doc.Host + doc.Servers[0].URL
	}
	return []Variable{
		{Key: "baseUrl", Value: base, Type: "string"},
		{Key: "authToken", Value: AuthTokenPlaceholder, Type: "string"},
		{Key: "version", Value: DefaultVersion, Type: "string"},
	}
}

// FileName returns the collection file name for a short API name.
func FileName(name string) string {
	return name + "_collection.json"
}

// Marshal encodes c with four space indentation.
func Marshal(c *Collection) ([]byte, error) {
	s, err := marshalIndent(c)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

// Write serializes c to path, replacing any existing file.
func Write(path string, c *Collection) error {
	data, err := Marshal(c)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve output path: %w", err)
	}
	return atomicfile.Write(abs, data, 0o644)
}
