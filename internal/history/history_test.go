package history

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/hazyhaar/softnav/page"
)

const activeDoc = `<html><head><meta name="softnav" content="active"></head>
<body><p>intro</p><h2 id="part">Part</h2></body></html>`

func mustPage(t *testing.T, raw string) *page.Page {
	t.Helper()
	p, err := page.Load("http://site.test/one", raw)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func mustURL(t *testing.T, s string) *url.URL {
	t.Helper()
	u, err := url.Parse(s)
	if err != nil {
		t.Fatal(err)
	}
	return u
}

func TestInitSynthesizesInitialState(t *testing.T) {
	p := mustPage(t, activeDoc)
	p.SetScroll(page.Offset{Y: 12})
	c := NewCoordinator(p, Config{})

	if err := c.Init(context.Background()); err != nil {
		t.Fatal(err)
	}

	cur := p.History().Current()
	if !cur.Owned() {
		t.Fatal("initial entry not adopted")
	}
	st, _ := cur.State()
	if st.Index != 0 {
		t.Errorf("index: got %d, want 0", st.Index)
	}
	if st.Scroll.Y != 12 {
		t.Errorf("scroll: got %d, want 12", st.Scroll.Y)
	}
}

func TestInitLeavesForeignEntriesAlone(t *testing.T) {
	p := mustPage(t, `<html><head></head><body></body></html>`)
	c := NewCoordinator(p, Config{})
	if err := c.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if p.History().Current().Owned() {
		t.Error("non-opted-in document must not claim the entry")
	}
}

func TestInitAdoptsExistingState(t *testing.T) {
	p := mustPage(t, activeDoc)
	p.History().Replace(p.URL(), &page.EntryState{Index: 4, Scroll: page.Offset{Y: 300}})
	c := NewCoordinator(p, Config{})
	if err := c.Init(context.Background()); err != nil {
		t.Fatal(err)
	}
	if c.Index() != 4 {
		t.Errorf("index: got %d, want 4", c.Index())
	}
	if got := p.Scroll().Y; got != 300 {
		t.Errorf("restored scroll: got %d, want 300", got)
	}
}

func TestDirectionInference(t *testing.T) {
	ctx := context.Background()
	p := mustPage(t, activeDoc)
	c := NewCoordinator(p, Config{})
	if err := c.Init(ctx); err != nil {
		t.Fatal(err)
	}

	c.Push(ctx, mustURL(t, "http://site.test/two"))
	c.Push(ctx, mustURL(t, "http://site.test/three"))
	if c.Index() != 2 {
		t.Fatalf("index after two pushes: got %d, want 2", c.Index())
	}

	hist := p.History()
	back1, _ := hist.Go(-1)
	if dir := c.Traverse(back1); dir != DirBack {
		t.Errorf("first traversal: got %v, want back", dir)
	}
	back2, _ := hist.Go(-1)
	if dir := c.Traverse(back2); dir != DirBack {
		t.Errorf("second traversal: got %v, want back", dir)
	}
	fwd, _ := hist.Go(1)
	if dir := c.Traverse(fwd); dir != DirForward {
		t.Errorf("third traversal: got %v, want forward", dir)
	}
}

func TestReplacePreservesIndex(t *testing.T) {
	ctx := context.Background()
	p := mustPage(t, activeDoc)
	c := NewCoordinator(p, Config{})
	if err := c.Init(ctx); err != nil {
		t.Fatal(err)
	}
	c.Push(ctx, mustURL(t, "http://site.test/two"))

	before := p.History().Length()
	c.Replace(ctx, mustURL(t, "http://site.test/two?v=2"))

	if got := p.History().Length(); got != before {
		t.Errorf("length after replace: got %d, want %d", got, before)
	}
	st, _ := p.History().Current().State()
	if st.Index != 1 {
		t.Errorf("replace must preserve index: got %d, want 1", st.Index)
	}
}

func TestRestoreScrollPolicies(t *testing.T) {
	ctx := context.Background()

	t.Run("traversal restores exact offsets", func(t *testing.T) {
		p := mustPage(t, activeDoc)
		c := NewCoordinator(p, Config{})
		dest := &page.Entry{}
		dest.SetState(&page.EntryState{Index: 1, Scroll: page.Offset{X: 3, Y: 77}})
		c.RestoreScroll(ctx, Restore{Traversal: true, Dest: dest})
		if got := p.Scroll(); got != (page.Offset{X: 3, Y: 77}) {
			t.Errorf("scroll: got %+v", got)
		}
	})

	t.Run("different page resets to top", func(t *testing.T) {
		p := mustPage(t, activeDoc)
		p.SetScroll(page.Offset{Y: 50})
		c := NewCoordinator(p, Config{})
		c.RestoreScroll(ctx, Restore{
			From: mustURL(t, "http://site.test/one"),
			To:   mustURL(t, "http://site.test/two"),
		})
		if got := p.Scroll(); got != (page.Offset{}) {
			t.Errorf("scroll: got %+v, want top", got)
		}
	})

	t.Run("same page leaves scroll alone", func(t *testing.T) {
		p := mustPage(t, activeDoc)
		p.SetScroll(page.Offset{Y: 50})
		c := NewCoordinator(p, Config{})
		c.RestoreScroll(ctx, Restore{
			From: mustURL(t, "http://site.test/one"),
			To:   mustURL(t, "http://site.test/one"),
		})
		if got := p.Scroll().Y; got != 50 {
			t.Errorf("scroll: got %d, want 50", got)
		}
	})

	t.Run("preserve declaration keeps scroll on same-pathname replace", func(t *testing.T) {
		p := mustPage(t, `<html><head><meta name="softnav" content="active">
<meta name="softnav-scroll" content="preserve"></head><body></body></html>`)
		p.SetScroll(page.Offset{Y: 50})
		c := NewCoordinator(p, Config{})
		c.RestoreScroll(ctx, Restore{
			From:    mustURL(t, "http://site.test/one?p=1"),
			To:      mustURL(t, "http://site.test/one?p=2"),
			Replace: true,
		})
		if got := p.Scroll().Y; got != 50 {
			t.Errorf("scroll: got %d, want 50 (preserved)", got)
		}
	})

	t.Run("without declaration same-pathname replace resets", func(t *testing.T) {
		p := mustPage(t, activeDoc)
		p.SetScroll(page.Offset{Y: 50})
		c := NewCoordinator(p, Config{})
		c.RestoreScroll(ctx, Restore{
			From:    mustURL(t, "http://site.test/one?p=1"),
			To:      mustURL(t, "http://site.test/one?p=2"),
			Replace: true,
		})
		if got := p.Scroll(); got != (page.Offset{}) {
			t.Errorf("scroll: got %+v, want top", got)
		}
	})
}

func TestFragmentJumpRecoversEntryState(t *testing.T) {
	ctx := context.Background()
	p := mustPage(t, activeDoc)
	c := NewCoordinator(p, Config{})
	if err := c.Init(ctx); err != nil {
		t.Fatal(err)
	}

	popped := 0
	p.OnPop = func(*page.Entry) { popped++ }

	c.RestoreScroll(ctx, Restore{
		From: mustURL(t, "http://site.test/one"),
		To:   mustURL(t, "http://site.test/one#part"),
	})

	cur := p.History().Current()
	if !cur.Owned() {
		t.Error("entry state not recovered after platform dropped it")
	}
	if popped != 1 {
		t.Errorf("same-page jump should re-synthesize one pop, got %d", popped)
	}
	if got := p.URL().Fragment; got != "part" {
		t.Errorf("fragment: got %q, want part", got)
	}
}

func TestHashNavigatePushesWithoutFetch(t *testing.T) {
	ctx := context.Background()
	p := mustPage(t, activeDoc)
	c := NewCoordinator(p, Config{})
	if err := c.Init(ctx); err != nil {
		t.Fatal(err)
	}

	before := p.History().Length()
	c.HashNavigate(ctx, mustURL(t, "http://site.test/one#part"), false)

	if got := p.History().Length(); got != before+1 {
		t.Errorf("length: got %d, want %d", got, before+1)
	}
	if c.Index() != 1 {
		t.Errorf("index: got %d, want 1", c.Index())
	}
}

func TestReplaceCarriesScroll(t *testing.T) {
	ctx := context.Background()
	p := mustPage(t, activeDoc)
	c := NewCoordinator(p, Config{})
	if err := c.Init(ctx); err != nil {
		t.Fatal(err)
	}
	p.SetScroll(page.Offset{Y: 480})
	c.RecordPosition(ctx)

	c.Replace(ctx, mustURL(t, "http://site.test/one?v=2"))

	st, ok := p.History().Current().State()
	if !ok {
		t.Fatal("replaced entry lost library state")
	}
	if st.Scroll.Y != 480 {
		t.Errorf("replace dropped recorded scroll: got %d, want 480", st.Scroll.Y)
	}
}

// The settle watcher records positions from its own goroutine while
// navigation reads and rewrites the same entries. Run with -race.
func TestWatcherAndNavigationShareEntryState(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := mustPage(t, activeDoc)
	c := NewCoordinator(p, Config{SettleInterval: time.Millisecond})
	if err := c.Init(ctx); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.WatchScroll(ctx)
	}()

	for i := 0; i < 50; i++ {
		p.SetScroll(page.Offset{Y: i})
		c.RecordPosition(ctx)
		c.Push(ctx, mustURL(t, fmt.Sprintf("http://site.test/p%d", i)))

		dest, err := p.History().Go(-1)
		if err != nil {
			t.Fatal(err)
		}
		c.Traverse(dest)
		c.RestoreScroll(ctx, Restore{Traversal: true, Dest: dest})
		c.Replace(ctx, dest.URL)

		if dest, err = p.History().Go(1); err != nil {
			t.Fatal(err)
		}
		c.Traverse(dest)
		time.Sleep(time.Millisecond)
	}

	cancel()
	<-done
}
