package extractor

import (
	"context"
	"fmt"
	"time"

	"github.com/project-tktt/pl-crawler/internal/browser"
)

// fakeElement is a DOM node whose descendants are keyed by selector
type fakeElement struct {
	text     string
	attrs    map[string]string
	children map[string][]*fakeElement
	onClick  func() error
}

func (e *fakeElement) Text(ctx context.Context) (string, error) { return e.text, nil }

func (e *fakeElement) Attribute(ctx context.Context, name string) (string, bool, error) {
	v, ok := e.attrs[name]
	return v, ok, nil
}

func (e *fakeElement) Find(ctx context.Context, selector string) (browser.Element, error) {
	if els := e.children[selector]; len(els) > 0 {
		return els[0], nil
	}
	return nil, fmt.Errorf("%w: %s", browser.ErrElementNotFound, selector)
}

func (e *fakeElement) FindAll(ctx context.Context, selector string) ([]browser.Element, error) {
	var out []browser.Element
	for _, el := range e.children[selector] {
		out = append(out, el)
	}
	return out, nil
}

func (e *fakeElement) Click(ctx context.Context) error {
	if e.onClick == nil {
		return browser.ErrUnsupported
	}
	return e.onClick()
}

// fakePage serves a sequence of views; clicking a next control moves to the following view
type fakePage struct {
	views   []*fakeElement
	current int

	heights   []int64
	measured  int
	scrolls   int
	waits     int
	navigated []string
}

func (p *fakePage) view() *fakeElement { return p.views[p.current] }

func (p *fakePage) Navigate(ctx context.Context, url string) error {
	p.navigated = append(p.navigated, url)
	return nil
}

func (p *fakePage) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	p.waits++
	if len(p.view().children[selector]) == 0 {
		return fmt.Errorf("%w: %s", browser.ErrTimeout, selector)
	}
	return nil
}

func (p *fakePage) Find(ctx context.Context, selector string) (browser.Element, error) {
	return p.view().Find(ctx, selector)
}

func (p *fakePage) FindAll(ctx context.Context, selector string) ([]browser.Element, error) {
	return p.view().FindAll(ctx, selector)
}

func (p *fakePage) Evaluate(ctx context.Context, script string, out any) error {
	switch script {
	case scrollHeightScript:
		i := p.measured
		if i >= len(p.heights) {
			i = len(p.heights) - 1
		}
		p.measured++
		*(out.(*int64)) = p.heights[i]
		return nil
	case scrollToBottomScript:
		p.scrolls++
		return nil
	}
	return browser.ErrUnsupported
}

// test table layout
const (
	containerSel   = ".statsTableContainer"
	rowSel         = ".table__row"
	nameSel        = ".playerName"
	clubSel        = ".club"
	flagSel        = "img.flag"
	appearancesSel = ".appearances"
	nextSel        = ".paginationNextContainer"
)

func testSchema() Schema {
	return Schema{
		Container: containerSel,
		Row:       rowSel,
		Fields: []Field{
			{Name: "Name", Selector: nameSel},
			{Name: "Club", Selector: clubSel},
			{Name: "Nationality", Selector: flagSel, Attr: "title", Optional: true, Default: "Unknown"},
			{Name: "Appearances", Selector: appearancesSel, Kind: KindInt},
		},
	}
}

type rowCells struct {
	name, club, nationality, appearances string
}

func textNode(s string) []*fakeElement {
	if s == "" {
		return nil
	}
	return []*fakeElement{{text: s}}
}

func newRow(r rowCells) *fakeElement {
	row := &fakeElement{children: map[string][]*fakeElement{
		nameSel:        textNode(r.name),
		clubSel:        textNode(r.club),
		appearancesSel: textNode(r.appearances),
	}}
	if r.nationality != "" {
		row.children[flagSel] = []*fakeElement{{attrs: map[string]string{"title": r.nationality}}}
	}
	return row
}

func newView(rows ...rowCells) *fakeElement {
	v := &fakeElement{children: map[string][]*fakeElement{
		containerSel: {{}},
	}}
	for _, r := range rows {
		v.children[rowSel] = append(v.children[rowSel], newRow(r))
	}
	return v
}

// withPager links the views with next controls; the last one is marked inactive
func withPager(p *fakePage) *fakePage {
	for i, v := range p.views {
		class := "paginationBtn paginationNextContainer"
		if i == len(p.views)-1 {
			class += " inactive"
		}
		next := &fakeElement{attrs: map[string]string{"class": class}}
		if i < len(p.views)-1 {
			next.onClick = func() error {
				p.current++
				return nil
			}
		}
		v.children[nextSel] = []*fakeElement{next}
	}
	return p
}
