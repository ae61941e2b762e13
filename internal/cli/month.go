package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"minical/internal/calendar"
	"minical/internal/model"
)

const cellWidth = 14

var (
	monthYear  int
	monthMonth int
)

var monthCmd = &cobra.Command{
	Use:   "month",
	Short: "Print a month grid with its events",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, svc := openService(cfg)

		m, err := monthFromFlags(model.MonthOf(svc.Today()), monthYear, monthMonth)
		if err != nil {
			return err
		}
		st, err := svc.State(m)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderMonth(st, svc.Today()))
		return nil
	},
}

func init() {
	monthCmd.Flags().IntVar(&monthYear, "year", 0, "Year to show (default current)")
	monthCmd.Flags().IntVar(&monthMonth, "month", 0, "Month to show, 1-12 (default current)")
	rootCmd.AddCommand(monthCmd)
}

// renderMonth draws the 6x7 grid followed by the sorted event list.
func renderMonth(st calendar.State, today model.Date) string {
	view := calendar.Render(st, today)

	titleStyle := lipgloss.NewStyle().Bold(true).Width(7 * cellWidth).Align(lipgloss.Center)
	headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Width(cellWidth)
	baseCell := lipgloss.NewStyle().Width(cellWidth).Height(2)
	outsideStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	metaStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var b strings.Builder
	b.WriteString(titleStyle.Render(view.Label))
	b.WriteString("\n")

	headers := make([]string, 0, 7)
	for _, name := range []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"} {
		headers = append(headers, headerStyle.Render(name))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, headers...))
	b.WriteString("\n")

	for row := 0; row < calendar.GridCells/7; row++ {
		cells := make([]string, 0, 7)
		for _, c := range view.Cells[row*7 : row*7+7] {
			style := baseCell
			switch {
			case c.Outside:
				style = style.Inherit(outsideStyle)
			case c.Accent != nil:
				style = style.
					Background(lipgloss.Color(c.Accent.Primary)).
					Foreground(lipgloss.Color(calendar.ReadableText(c.Accent.Primary)))
			}
			if c.Today {
				style = style.Bold(true).Underline(true)
			}
			cells = append(cells, style.Render(cellText(st, c)))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		b.WriteString("\n")
	}

	if len(view.List) == 0 {
		b.WriteString("\nNo events yet.\n")
		return b.String()
	}
	b.WriteString("\n")
	for _, item := range view.List {
		accent := lipgloss.NewStyle().Foreground(lipgloss.Color(item.Accent))
		fmt.Fprintf(&b, "%s %s  %s\n",
			accent.Render(item.Emoji+" "+item.Event.Title),
			item.DateRange,
			metaStyle.Render("("+item.CategoryName+")"),
		)
	}
	return b.String()
}

// cellText is the day number plus the first event pill and an overflow
// count.
func cellText(st calendar.State, c calendar.Cell) string {
	day := strconv.Itoa(c.Day)
	if len(c.Events) == 0 {
		return day
	}
	if extra := len(c.Events) - 1; extra > 0 {
		day += fmt.Sprintf(" +%d", extra)
	}
	p := st.PillFor(c.Events[0])
	return day + "\n" + truncate(p.Emoji+" "+p.Title, cellWidth-2)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
