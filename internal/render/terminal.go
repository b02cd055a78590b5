// Package render prints dashboard pages as plain-text tables.
package render

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/ternarybob/banner"

	"github.com/alanyoungcy/polyview/internal/activity"
	"github.com/alanyoungcy/polyview/internal/domain"
	"github.com/alanyoungcy/polyview/internal/service"
)

const headerWidth = 72

// Terminal writes pages to w. With color set, headers use ANSI colors.
type Terminal struct {
	w     io.Writer
	color bool
}

// NewTerminal creates a Terminal writing to w.
func NewTerminal(w io.Writer, color bool) *Terminal {
	return &Terminal{w: w, color: color}
}

func (t *Terminal) paint(code, s string) string {
	if !t.color {
		return s
	}
	return code + s + banner.ColorReset
}

// Header prints the address and tab banner. Pages loaded by "load more" skip
// it so appended rows continue the previous table.
func (t *Terminal) Header(p *service.Page) {
	hr := t.paint(banner.ColorCyan, strings.Repeat("=", headerWidth))
	title := fmt.Sprintf("  %s  |  %s", domain.ChecksumAddress(p.Address), strings.ToUpper(string(p.Tab)))
	if p.Range != "" {
		title += "  |  " + p.Range
	}
	fmt.Fprintln(t.w, hr)
	fmt.Fprintln(t.w, t.paint(banner.ColorBold+banner.ColorWhite, title))
	fmt.Fprintln(t.w, hr)
}

// Page prints p: the header for a first page, then its table and footer.
func (t *Terminal) Page(p *service.Page) error {
	if !p.Append {
		t.Header(p)
	}
	var err error
	if p.Tab == service.TabPositions {
		err = t.positions(p)
	} else {
		err = t.activity(p)
	}
	if err != nil {
		return fmt.Errorf("render: %s: %w", p.Tab, err)
	}
	for _, w := range p.Warnings {
		fmt.Fprintf(t.w, "note: %s\n", w)
	}
	return nil
}

func (t *Terminal) activity(p *service.Page) error {
	if len(p.Rows) == 0 {
		if !p.Append {
			fmt.Fprintln(t.w, emptyMessage(p.Tab))
		}
		return nil
	}

	tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', 0)
	if !p.Append {
		fmt.Fprintln(tw, "ACTIVITY\tMARKET\tOUTCOME\tPRICE\tSHARES\tVALUE\tWHEN")
	}
	for _, r := range p.Rows {
		outcome := "-"
		if r.ShowBadge {
			outcome = r.Outcome
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Classification.Label,
			truncate(r.MarketTitle, 48),
			outcome,
			r.PriceCents,
			r.Shares,
			r.Classification.Display,
			r.When,
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if p.HasMore {
		fmt.Fprintf(t.w, "-- more available (next offset %d) --\n", p.Offset+len(p.Rows))
	}
	return nil
}

func (t *Terminal) positions(p *service.Page) error {
	if p.Portfolio == nil || len(p.Portfolio.Positions) == 0 {
		fmt.Fprintln(t.w, emptyMessage(p.Tab))
		return nil
	}

	tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "MARKET\tOUTCOME\tSHARES\tAVG\tNOW\tBET\tVALUE\tTO WIN\tP&L\t")
	for _, m := range p.Portfolio.Positions {
		pos := m.Position
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s (%s)\t\n",
			truncate(activity.MarketTitle(pos.Title), 40),
			pos.Outcome,
			activity.Shares(pos.Size),
			activity.PriceCents(pos.AvgPrice),
			activity.PriceCents(pos.CurrentPrice),
			activity.FormatUSD(m.Bet),
			activity.FormatUSD(m.Value),
			activity.FormatUSD(m.ToWin),
			activity.FormatSignedUSD(m.PnL),
			activity.FormatPercent(m.PnLPercent),
		)
	}
	tot := p.Portfolio.Totals
	fmt.Fprintf(tw, "TOTAL (%d)\t\t\t\t\t%s\t%s\t%s\t%s (%s)\t\n",
		tot.Count,
		activity.FormatUSD(tot.Bet),
		activity.FormatUSD(tot.Value),
		activity.FormatUSD(tot.ToWin),
		activity.FormatSignedUSD(tot.PnL),
		activity.FormatPercent(tot.PnLPercent),
	)
	return tw.Flush()
}

func emptyMessage(tab service.Tab) string {
	switch tab {
	case service.TabPositions:
		return "No open positions for this address"
	case service.TabTrades:
		return "No trades found for this address"
	default:
		return "No activity found for this address"
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
