package history

import (
	"context"
	"net/url"

	"github.com/hazyhaar/softnav/marker"
	"github.com/hazyhaar/softnav/page"
)

// Restore describes the scroll decision after a swap.
type Restore struct {
	Traversal bool
	Dest      *page.Entry // destination entry for traversals
	From      *url.URL    // origin URL of the attempt
	To        *url.URL    // effective destination
	Replace   bool        // replace-type navigation
}

// RestoreScroll applies the post-swap scroll policy: traversals restore the
// destination entry's exact offsets; navigations to a different page scroll
// to the top unless a same-pathname replace with the preserve declaration
// keeps the current position; a fragment on the destination performs the
// in-page jump with its state-recovery dance.
func (c *Coordinator) RestoreScroll(ctx context.Context, r Restore) {
	switch {
	case r.Traversal:
		if st, ok := r.Dest.State(); ok {
			c.pg.SetScroll(st.Scroll)
		}
	case differentPage(r.From, r.To):
		if !(r.Replace && r.From.Path == r.To.Path && marker.PreservesScroll(c.pg.Document())) {
			c.pg.SetScroll(page.Offset{})
		}
	}

	if r.To != nil && r.To.Fragment != "" && !r.Traversal {
		c.fragmentJump(ctx, r.To.Fragment, samePage(r.From, r.To))
	}
}

// fragmentJump performs the platform in-page jump. Setting the location
// fragment drops the library state from the current entry on some engines,
// so the saved state is re-attached afterward; a jump that stays on the
// same page also re-synthesizes a pop so listeners observe the navigation.
func (c *Coordinator) fragmentJump(ctx context.Context, frag string, samePage bool) {
	hist := c.pg.History()
	saved, owned := hist.Current().State()

	c.pg.JumpToFragment(frag)

	cur := hist.Current()
	if !cur.Owned() && owned {
		st := saved
		cur.SetState(&st)
		c.persist(ctx, hist.Position(), cur)
	}
	if samePage && c.pg.OnPop != nil {
		c.pg.OnPop(cur)
	}
}

// HashNavigate handles a fragment-only navigation on the same page: no
// fetch, no swap — record the position, move the entry, jump.
func (c *Coordinator) HashNavigate(ctx context.Context, to *url.URL, replace bool) {
	c.RecordPosition(ctx)
	if replace {
		c.Replace(ctx, to)
	} else {
		c.Push(ctx, to)
	}
	c.fragmentJump(ctx, to.Fragment, true)
}

// differentPage reports whether pathname or query differ.
func differentPage(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Path != b.Path || a.RawQuery != b.RawQuery
}

// samePage reports whether only the fragment differs.
func samePage(a, b *url.URL) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Path == b.Path && a.RawQuery == b.RawQuery
}
