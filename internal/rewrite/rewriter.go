package rewrite

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/roammigrate/internal/graph"
	"github.com/dmitrijs2005/roammigrate/internal/ledger"
	"github.com/dmitrijs2005/roammigrate/internal/logging"
	"github.com/dmitrijs2005/roammigrate/internal/media"
	"github.com/dmitrijs2005/roammigrate/internal/objectstore"
)

// progressEvery is how many pages pass between progress log lines.
const progressEvery = 100

// Result counts what a rewrite changed.
type Result struct {
	LinksUpdated   int
	LinksNotFound  int
	BlocksModified int
	PagesModified  int
}

// Rewriter resolves identifiers through the ledger mapping first and the
// local file cache second.
type Rewriter struct {
	cache      *media.FileCache
	ledger     *ledger.Ledger
	publicBase string
	logger     logging.Logger
}

func New(cache *media.FileCache, l *ledger.Ledger, publicBase string, logger logging.Logger) *Rewriter {
	if l == nil {
		l = ledger.New()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Rewriter{
		cache:      cache,
		ledger:     l,
		publicBase: strings.TrimRight(publicBase, "/"),
		logger:     logger,
	}
}

// Resolve returns the new URL for an identifier, if the file was uploaded.
func (r *Rewriter) Resolve(id, ext string) (string, bool) {
	if rec, ok := r.ledger.Lookup(id); ok && rec != nil && rec.PublicURL != "" {
		return rec.PublicURL, true
	}

	f, ok := r.cache.Resolve(id, ext)
	if !ok {
		return "", false
	}
	target, ok := r.ledger.Target(f.Name)
	if !ok {
		return "", false
	}
	return objectstore.PublicURL(r.publicBase, target), true
}

// RewriteText replaces every resolvable legacy link in text. The kinds are
// applied one after another, so a link replaced by an earlier kind is never
// seen again.
func (r *Rewriter) RewriteText(ctx context.Context, text string) (string, Result) {
	var res Result

	for _, k := range Kinds {
		refs := FindReferences(text, k)
		if len(refs) == 0 {
			continue
		}

		var b strings.Builder
		last := 0
		for _, ref := range refs {
			url, ok := r.Resolve(ref.Identifier, ref.Ext)
			if !ok {
				res.LinksNotFound++
				r.logger.Debug(ctx, "unresolved media link", "kind", k.String(), "id", ref.Identifier, "ext", ref.Ext)
				continue
			}
			b.WriteString(text[last:ref.Start])
			b.WriteString(k.Wrap(ref.Alt, url))
			last = ref.End
			res.LinksUpdated++
		}
		b.WriteString(text[last:])
		text = b.String()
	}
	return text, res
}

// Rewrite walks the blocks of every page depth first and rewrites their
// text in place. Page text itself is left alone; a page counts as modified
// when any block below it changed.
func (r *Rewriter) Rewrite(ctx context.Context, pages []*graph.Node) Result {
	var total Result

	for i, page := range pages {
		if i > 0 && i%progressEvery == 0 {
			r.logger.Info(ctx, "rewriting pages", "done", i, "total", len(pages))
		}
		if page == nil {
			continue
		}

		pageModified := false
		graph.Walk([]*graph.Node{page}, func(_, block *graph.Node) {
			text, ok := block.String()
			if !ok {
				return
			}
			updated, res := r.RewriteText(ctx, text)
			total.LinksUpdated += res.LinksUpdated
			total.LinksNotFound += res.LinksNotFound
			if res.LinksUpdated > 0 {
				block.SetString(updated)
				total.BlocksModified++
				pageModified = true
			}
		})

		if pageModified {
			total.PagesModified++
			r.logger.Debug(ctx, "page rewritten", "title", page.Title())
		}
	}
	return total
}
