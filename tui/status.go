package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/loomwright/grue/types"
)

// locationDisplayName derives a human-readable name from a location ID.
// "great_hall" -> "Great Hall", "castle_gates" -> "Castle Gates".
func locationDisplayName(id types.LocationID) string {
	words := strings.Split(string(id), "_")
	for i, w := range words {
		if len(w) > 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

// renderStatusBar produces a full-width inverted status line showing
// current location, exits, inventory, and turn count.
func (m Model) renderStatusBar() string {
	w := m.engine.World
	p := w.Player()

	locName := locationDisplayName(p.CurrentLocation)

	exits := w.Exits(p.CurrentLocation)
	dirs := make([]string, 0, len(exits))
	for dir := range exits {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	exitStr := strings.Join(dirs, ",")

	carried := w.ItemsIn(types.ParentOfPlayer())
	invCount := len(carried)

	left := fmt.Sprintf(" %s | Exits: %s", locName, exitStr)
	right := fmt.Sprintf("T:%d ", w.TurnCount())

	// Show inventory items if they fit, otherwise just count.
	if invCount > 0 {
		names := make([]string, 0, len(carried))
		for _, id := range carried {
			names = append(names, w.ItemName(id))
		}
		invStr := strings.Join(names, ", ")
		candidate := fmt.Sprintf("Inv: %s | T:%d ", invStr, w.TurnCount())
		if lipgloss.Width(left)+lipgloss.Width(candidate)+2 < m.width {
			right = candidate
		} else {
			right = fmt.Sprintf("Inv: %d | T:%d ", invCount, w.TurnCount())
		}
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	bar := left + strings.Repeat(" ", gap) + right
	return styleStatusBar.Width(m.width).Render(bar)
}
