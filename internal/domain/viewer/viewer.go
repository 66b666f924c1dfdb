package viewer

import (
	"context"
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/filebrowser/internal/domain/browser"
	"github.com/GriffinCanCode/filebrowser/internal/providers/filesystem"
)

// Kind names the viewer an entry opens in.
type Kind string

const (
	KindDirectory Kind = "directory"
	KindText      Kind = "text"
	KindImage     Kind = "image"
	KindPlist     Kind = "plist"
	KindHex       Kind = "hex"
	KindPackage   Kind = "package"
	KindGeneric   Kind = "generic"
)

var kinds = []Kind{KindDirectory, KindText, KindImage, KindPlist, KindHex, KindPackage, KindGeneric}

// ParseKind validates s.
func ParseKind(s string) (Kind, error) {
	for _, k := range kinds {
		if strings.EqualFold(s, string(k)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown viewer kind %q", s)
}

// Table maps lowercase extensions, without the dot, to viewer kinds.
type Table map[string]Kind

// DefaultTable returns the built-in routing table.
func DefaultTable() Table {
	return Table{
		"txt":          KindText,
		"png":          KindImage,
		"jpg":          KindImage,
		"jpeg":         KindImage,
		"plist":        KindPlist,
		"entitlements": KindPlist,
		"bin":          KindHex,
		"dylib":        KindHex,
		"geode":        KindHex,
		"ipa":          KindPackage,
		"deb":          KindPackage,
	}
}

// ParseTable builds a table from raw extension to kind pairs, as read from a
// configuration file. Extensions may carry a leading dot and any case.
func ParseTable(raw map[string]string) (Table, error) {
	t := make(Table, len(raw))
	for ext, kind := range raw {
		k, err := ParseKind(kind)
		if err != nil {
			return nil, fmt.Errorf("extension %q: %w", ext, err)
		}
		if k == KindDirectory {
			return nil, fmt.Errorf("extension %q: directory is not a file viewer", ext)
		}
		key := normalize(ext)
		if key == "" {
			return nil, fmt.Errorf("empty extension")
		}
		t[key] = k
	}
	return t, nil
}

// Merge returns a copy of t with overrides applied on top.
func (t Table) Merge(overrides Table) Table {
	out := maps.Clone(t)
	if out == nil {
		out = Table{}
	}
	maps.Copy(out, overrides)
	return out
}

// Lookup finds the kind for a file name's extension.
func (t Table) Lookup(name string) (Kind, bool) {
	ext := normalize(filepath.Ext(name))
	if ext == "" {
		return "", false
	}
	k, ok := t[ext]
	return k, ok
}

func normalize(ext string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
}

// Source tells how a decision was reached.
type Source string

const (
	SourceEntry   Source = "entry"
	SourceTable   Source = "table"
	SourceContent Source = "content"
	SourceDefault Source = "default"
)

// Decision is the outcome of routing one entry.
type Decision struct {
	Kind    Kind                    `json:"kind"`
	Source  Source                  `json:"source"`
	Content *filesystem.ContentInfo `json:"content,omitempty"`
}

// Router picks the viewer for an entry: directories first, then the
// extension table, then content sniffing when a detector is configured.
type Router struct {
	table    Table
	detector filesystem.ContentDetector
	log      *zap.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithDetector enables content sniffing for extensions not in the table.
func WithDetector(d filesystem.ContentDetector) Option {
	return func(r *Router) { r.detector = d }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Router) {
		if log != nil {
			r.log = log
		}
	}
}

// NewRouter creates a router over table. A nil table uses DefaultTable.
func NewRouter(table Table, opts ...Option) *Router {
	if table == nil {
		table = DefaultTable()
	}
	r := &Router{table: table, log: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	r.log = r.log.Named("viewer")
	return r
}

// Table returns a copy of the routing table.
func (r *Router) Table() Table { return maps.Clone(r.table) }

// Route returns the viewer kind for entry.
func (r *Router) Route(ctx context.Context, entry browser.Entry) Kind {
	return r.Decide(ctx, entry).Kind
}

// Decide routes entry and reports how the kind was chosen.
func (r *Router) Decide(ctx context.Context, entry browser.Entry) Decision {
	if entry.IsDirectory {
		return Decision{Kind: KindDirectory, Source: SourceEntry}
	}
	if k, ok := r.table.Lookup(entry.Name); ok {
		return Decision{Kind: k, Source: SourceTable}
	}
	if r.detector == nil || entry.IsSymlink {
		return Decision{Kind: KindGeneric, Source: SourceDefault}
	}

	info, err := r.detector.DetectContent(ctx, entry.Path)
	if err != nil {
		r.log.Debug("Content detection failed", zap.String("path", entry.Path), zap.Error(err))
		return Decision{Kind: KindGeneric, Source: SourceDefault}
	}
	return Decision{Kind: r.kindFor(info), Source: SourceContent, Content: &info}
}

// kindFor maps sniffed content to a kind. A sniffed extension present in the
// table wins over the MIME family.
func (r *Router) kindFor(info filesystem.ContentInfo) Kind {
	if k, ok := r.table.Lookup(info.Extension); ok {
		return k
	}
	switch {
	case strings.HasPrefix(info.MIME, "image/"):
		return KindImage
	case strings.Contains(info.MIME, "plist"):
		return KindPlist
	case info.IsText:
		return KindText
	default:
		return KindGeneric
	}
}
