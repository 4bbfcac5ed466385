package dashboard

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// modalSize returns the inner width and height of the modal box for a
// screen of the given size.
func modalSize(width, height int) (int, int) {
	w := width * 7 / 10
	if w < 40 {
		w = 40
	}
	h := height * 6 / 10
	if h < 8 {
		h = 8
	}
	return w, h
}

// renderModal draws the open modal centered on screen. The body comes from
// the model's viewport so long details can scroll.
func (r renderer) renderModal() string {
	m := r.st.Modal
	p := r.sty.pal

	border := p.Primary
	if m.Kind == ModalKillConfirm || m.Failed {
		border = p.Critical
	}

	titleStyle := lipgloss.NewStyle().Foreground(border).Bold(true)
	title := m.Title
	if m.Kind == ModalKillConfirm {
		title = "⚠ " + title
	}

	body := r.modalBody
	if body == "" {
		body = m.Message
	}

	var hint string
	switch m.Kind {
	case ModalKillConfirm:
		hint = "[y] kill  [n/esc] cancel"
	default:
		hint = "[esc/enter] close  [↑/↓] scroll"
	}

	w, _ := modalSize(r.width, r.height)
	content := strings.Join([]string{
		titleStyle.Render(title),
		"",
		r.sty.value.Render(body),
		"",
		r.sty.muted.Render(hint),
	}, "\n")

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Background(p.Surface).
		Padding(1, 2).
		Width(w).
		Render(content)

	return lipgloss.Place(
		r.width,
		r.height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(p.Background),
	)
}
