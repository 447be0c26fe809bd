// Package pagination renders page-at-a-time listings behind inline
// prev/next buttons whose callbacks carry the page number.
package pagination

import (
	"context"
	"fmt"
	"strings"

	tele "gopkg.in/telebot.v4"

	"dialogbot/core/telegram/callbacks"
	"dialogbot/core/telegram/filter"
	tghelpers "dialogbot/core/telegram/helpers"
	"dialogbot/core/telegram/keyboard"
	"dialogbot/core/telegram/router"
)

// Source supplies the listed lines one page at a time.
type Source interface {
	Page(ctx context.Context, page, size int) ([]string, error)
	Count(ctx context.Context) (int, error)
}

// Pager drives one paginated listing identified by its callback action.
type Pager struct {
	action   string
	title    string
	source   Source
	pageSize int
}

// New builds a pager. The action must be unique across the bot's callbacks.
func New(action, title string, source Source, pageSize int) *Pager {
	if pageSize < 1 {
		pageSize = 5
	}
	return &Pager{action: action, title: title, source: source, pageSize: pageSize}
}

// Send renders the requested page to the chat, editing in place when
// answering a page-flip callback.
func (p *Pager) Send(c tele.Context, page int) error {
	ctx := tghelpers.BuildContext(c)

	total, err := p.source.Count(ctx)
	if err != nil {
		return fmt.Errorf("pagination %s: count: %w", p.action, err)
	}
	pages := (total + p.pageSize - 1) / p.pageSize
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}

	lines, err := p.source.Page(ctx, page, p.pageSize)
	if err != nil {
		return fmt.Errorf("pagination %s: page %d: %w", p.action, page, err)
	}

	var sb strings.Builder
	if p.title != "" {
		fmt.Fprintf(&sb, "%s (%d)\n\n", p.title, total)
	}
	if len(lines) == 0 {
		sb.WriteString("Nothing here yet.")
	}
	for i, line := range lines {
		fmt.Fprintf(&sb, "%d. %s\n", (page-1)*p.pageSize+i+1, line)
	}

	markup := p.navMarkup(page, pages)
	if c.Callback() != nil {
		_ = c.Respond()
		return c.EditOrSend(sb.String(), markup)
	}
	return c.Send(sb.String(), markup)
}

// navMarkup builds the navigation row; single-page listings get no keyboard.
func (p *Pager) navMarkup(page, pages int) *tele.ReplyMarkup {
	if pages <= 1 {
		return nil
	}
	var row []keyboard.InlineBtn
	if page > 1 {
		row = append(row,
			keyboard.InlineBtn{Text: "«", Data: p.pageData(1)},
			keyboard.InlineBtn{Text: "‹", Data: p.pageData(page - 1)},
		)
	}
	row = append(row, keyboard.InlineBtn{Text: fmt.Sprintf("%d/%d", page, pages), Data: p.pageData(page)})
	if page < pages {
		row = append(row,
			keyboard.InlineBtn{Text: "›", Data: p.pageData(page + 1)},
			keyboard.InlineBtn{Text: "»", Data: p.pageData(pages)},
		)
	}
	return keyboard.InlineRows(row)
}

func (p *Pager) pageData(page int) string {
	return callbacks.Pack(p.action, map[string]string{"p": fmt.Sprint(page)})
}

// Handler answers page-flip callbacks.
func (p *Pager) Handler() tele.HandlerFunc {
	return func(c tele.Context) error {
		page, err := callbacks.ParamInt(c, "p")
		if err != nil {
			page = 1
		}
		if err := p.Send(c, page); err != nil {
			return err
		}
		return router.ErrStopPropagation
	}
}

// Mount registers the page-flip callback route.
func (p *Pager) Mount(r *router.Router) {
	r.Handle(router.GroupDefault, router.Route{
		Name:    "page." + p.action,
		Filter:  filter.CallbackData(p.action),
		Handler: p.Handler(),
	})
}
