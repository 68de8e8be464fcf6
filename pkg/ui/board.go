package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/boardwalkhq/boardwalk/pkg/model"
	"github.com/boardwalkhq/boardwalk/pkg/workspace"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
)

const (
	minColumnWidth = 20
	maxCardLines   = 3
)

// BoardModel is the Kanban board view over a workspace store. Columns are
// taken from the store's column set; cards are the column-local issue lists
// with the store's filters applied.
type BoardModel struct {
	store *workspace.Store

	width  int
	height int

	focusedCol  int
	selectedRow []int // selection per column, parallel to columns

	// Detail panel
	showDetail bool
	detailVP   viewport.Model
	mdRenderer *glamour.TermRenderer
	detailID   string

	// Search mode
	searchMode  bool
	searchInput textinput.Model

	// Transient status-bar message
	notice      string
	noticeError bool

	readOnly bool // offline snapshots cannot move issues
	moving   bool // a move request is in flight
}

// moveResultMsg reports the outcome of an issue move request.
type moveResultMsg struct {
	err error
}

// SnapshotReloadedMsg swaps in a freshly loaded store, e.g. when the
// offline snapshot file changes on disk.
type SnapshotReloadedMsg struct {
	Store *workspace.Store
}

// clearNoticeMsg expires the transient status-bar notice.
type clearNoticeMsg struct{}

// NewBoardModel builds a board over the given store. When readOnly is set
// (offline snapshot mode), mutation keys are disabled.
func NewBoardModel(store *workspace.Store, readOnly bool) BoardModel {
	ti := textinput.New()
	ti.Placeholder = "search issues"
	ti.Prompt = "/ "
	ti.CharLimit = 120

	m := BoardModel{
		store:       store,
		searchInput: ti,
		readOnly:    readOnly,
	}
	m.selectedRow = make([]int, store.Columns().Len())
	return m
}

func (m BoardModel) Init() tea.Cmd {
	return nil
}

func (m BoardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.detailVP.Width = msg.Width - 4
		m.detailVP.Height = msg.Height - 6
		m.mdRenderer = nil // rebuild at the new wrap width on next render
		return m, nil

	case SnapshotReloadedMsg:
		if msg.Store != nil {
			m.store = msg.Store
			m.showDetail = false
			m.clampSelection()
		}
		return m, nil

	case moveResultMsg:
		m.moving = false
		if msg.err != nil {
			m.noticeError = true
			if errors.Is(msg.err, workspace.ErrMoveRestricted) {
				m.notice = "move blocked: issues reach DONE only from IN TESTING"
			} else {
				m.notice = fmt.Sprintf("move failed: %v", msg.err)
			}
		} else {
			m.noticeError = false
			m.notice = "moved"
		}
		m.clampSelection()
		return m, clearNoticeAfter(3 * time.Second)

	case clearNoticeMsg:
		m.notice = ""
		return m, nil

	case tea.KeyMsg:
		if m.searchMode {
			return m.updateSearch(msg)
		}
		if m.showDetail {
			return m.updateDetail(msg)
		}
		return m.updateBoard(msg)
	}
	return m, nil
}

func (m BoardModel) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter", "esc":
		m.searchMode = false
		m.searchInput.Blur()
		if msg.String() == "esc" {
			m.searchInput.SetValue("")
			m.store.SetSearchQuery("")
		}
		m.clampSelection()
		return m, nil
	}
	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.store.SetSearchQuery(m.searchInput.Value())
	m.clampSelection()
	return m, cmd
}

func (m BoardModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter":
		m.showDetail = false
		return m, nil
	}
	var cmd tea.Cmd
	m.detailVP, cmd = m.detailVP.Update(msg)
	return m, cmd
}

func (m BoardModel) updateBoard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	cols := m.store.Columns().Columns()
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "left", "h":
		if m.focusedCol > 0 {
			m.focusedCol--
		}
		m.clampSelection()
	case "right", "l":
		if m.focusedCol < len(cols)-1 {
			m.focusedCol++
		}
		m.clampSelection()
	case "up", "k":
		if m.row() > 0 {
			m.selectedRow[m.focusedCol]--
		}
	case "down", "j":
		if m.row() < len(m.focusedIssues())-1 {
			m.selectedRow[m.focusedCol]++
		}
	case "g":
		m.selectedRow[m.focusedCol] = 0
	case "G":
		if n := len(m.focusedIssues()); n > 0 {
			m.selectedRow[m.focusedCol] = n - 1
		}
	case "/":
		m.searchMode = true
		m.searchInput.Focus()
	case "enter":
		if issue, ok := m.selectedIssue(); ok {
			m.showDetail = true
			m.renderDetail(issue)
		}
	case "y":
		if issue, ok := m.selectedIssue(); ok {
			if err := clipboard.WriteAll(issue.ID); err == nil {
				m.notice = "copied " + issue.ID
				m.noticeError = false
				return m, clearNoticeAfter(2 * time.Second)
			}
		}
	case "H", "shift+left":
		return m.moveSelected(-1)
	case "L", "shift+right":
		return m.moveSelected(1)
	case "c":
		m.store.ClearAllFilters()
		m.searchInput.SetValue("")
		m.clampSelection()
	}
	return m, nil
}

// moveSelected moves the selected card one column left or right. The
// optimistic update lands before the command runs, so the card appears in the
// destination immediately; a failed request rolls it back.
func (m BoardModel) moveSelected(dir int) (tea.Model, tea.Cmd) {
	if m.readOnly {
		m.notice = "read-only snapshot"
		m.noticeError = true
		return m, clearNoticeAfter(2 * time.Second)
	}
	if m.moving {
		return m, nil
	}
	cols := m.store.Columns().Columns()
	dst := m.focusedCol + dir
	if dst < 0 || dst >= len(cols) {
		return m, nil
	}
	srcID := cols[m.focusedCol].ID
	dstID := cols[dst].ID

	// The selection row indexes the filtered view; the store's move
	// contract indexes the unfiltered column-local list. Resolve the
	// selected issue first, then find it in the unfiltered list.
	issue, ok := m.selectedIssue()
	if !ok {
		return m, nil
	}
	srcIdx := -1
	for i, it := range m.store.ColumnIssues(srcID) {
		if it.ID == issue.ID {
			srcIdx = i
			break
		}
	}
	if srcIdx < 0 {
		return m, nil
	}
	dstIdx := len(m.store.ColumnIssues(dstID))

	m.moving = true
	store := m.store
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return moveResultMsg{err: store.MoveIssue(ctx, srcID, dstID, srcIdx, dstIdx)}
	}
}

func (m *BoardModel) renderDetail(issue model.Issue) {
	if m.mdRenderer == nil {
		width := m.detailVP.Width
		if width <= 0 {
			width = 80
		}
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err == nil {
			m.mdRenderer = r
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", issue.Title)
	fmt.Fprintf(&b, "**%s** · %s · %s\n\n", issue.ID, issue.IssueType, issue.Priority)
	fmt.Fprintf(&b, "Assignee: %s\n\n", m.store.Profiles().DisplayName(issue))
	if issue.Description != "" {
		b.WriteString(issue.Description)
		b.WriteString("\n")
	}
	if issue.UpdatedAt != nil {
		fmt.Fprintf(&b, "\n_updated %s_\n", FormatTimeRel(*issue.UpdatedAt))
	}

	content := b.String()
	if m.mdRenderer != nil {
		if rendered, err := m.mdRenderer.Render(content); err == nil {
			content = rendered
		}
	}
	m.detailVP.SetContent(content)
	m.detailVP.GotoTop()
	m.detailID = issue.ID
}

func (m BoardModel) View() string {
	if m.width == 0 {
		return "loading..."
	}
	if m.showDetail {
		return lipgloss.JoinVertical(lipgloss.Left,
			m.detailVP.View(),
			m.statusBar(),
		)
	}

	cols := m.store.Columns().Columns()
	if len(cols) == 0 {
		return "no columns"
	}

	colWidth := m.width/len(cols) - 2
	if colWidth < minColumnWidth {
		colWidth = minColumnWidth
	}

	visible := visibleByColumn(m.store)
	rendered := make([]string, 0, len(cols))
	for i, col := range cols {
		rendered = append(rendered, m.renderColumn(i, col, visible[col.ID], colWidth))
	}

	board := lipgloss.JoinHorizontal(lipgloss.Top, rendered...)
	return lipgloss.JoinVertical(lipgloss.Left, board, m.statusBar())
}

func (m BoardModel) renderColumn(idx int, col model.Column, issues []model.Issue, width int) string {
	title := styleColumnTitle.Render(fmt.Sprintf("%s (%d)", col.Name, len(issues)))

	var cards []string
	for row, issue := range issues {
		cards = append(cards, m.renderCard(issue, width-2, idx == m.focusedCol && row == m.row()))
	}
	if len(cards) == 0 {
		cards = append(cards, styleCardMeta.Render("empty"))
	}

	body := lipgloss.JoinVertical(lipgloss.Left, append([]string{title}, cards...)...)
	style := styleColumnBorder
	if idx == m.focusedCol {
		style = styleColumnFocused
	}
	return style.Width(width).Render(body)
}

func (m BoardModel) renderCard(issue model.Issue, width int, selected bool) string {
	title := Truncate(issue.Title, width)
	meta := Truncate(
		fmt.Sprintf("%s · %s", issue.Priority, m.store.Profiles().DisplayName(issue)),
		width,
	)

	titleStyle := styleCard
	if selected {
		titleStyle = styleCardSelected
		title = "▸ " + Truncate(issue.Title, width-2)
	}
	accent := lipgloss.NewStyle().Foreground(PriorityColor(string(issue.Priority)))
	return titleStyle.Render(title) + "\n" + accent.Render("●") + " " + styleCardMeta.Render(meta)
}

func (m BoardModel) statusBar() string {
	if m.searchMode {
		return m.searchInput.View()
	}
	if m.notice != "" {
		if m.noticeError {
			return styleNotice.Render(m.notice)
		}
		return styleStatusBar.Render(m.notice)
	}

	parts := []string{"h/l: column", "j/k: card", "H/L: move", "enter: detail", "/: search", "y: yank", "q: quit"}
	if n := m.store.ActiveFilterCount(); n > 0 {
		parts = append([]string{fmt.Sprintf("%d filters (c to clear)", n)}, parts...)
	}
	if q := m.searchInput.Value(); q != "" {
		parts = append([]string{fmt.Sprintf("search: %q", q)}, parts...)
	}
	return styleStatusBar.Render(strings.Join(parts, "  "))
}

// visibleByColumn buckets the filtered issue list by board column.
func visibleByColumn(store *workspace.Store) map[string][]model.Issue {
	return store.Columns().Assign(store.VisibleIssues())
}

func (m BoardModel) focusedIssues() []model.Issue {
	cols := m.store.Columns().Columns()
	if m.focusedCol >= len(cols) {
		return nil
	}
	return visibleByColumn(m.store)[cols[m.focusedCol].ID]
}

func (m BoardModel) selectedIssue() (model.Issue, bool) {
	issues := m.focusedIssues()
	row := m.row()
	if row < 0 || row >= len(issues) {
		return model.Issue{}, false
	}
	return issues[row], true
}

func (m BoardModel) row() int {
	if m.focusedCol >= len(m.selectedRow) {
		return 0
	}
	return m.selectedRow[m.focusedCol]
}

func (m *BoardModel) clampSelection() {
	cols := m.store.Columns().Columns()
	if len(m.selectedRow) != len(cols) {
		grown := make([]int, len(cols))
		copy(grown, m.selectedRow)
		m.selectedRow = grown
	}
	if m.focusedCol >= len(cols) && len(cols) > 0 {
		m.focusedCol = len(cols) - 1
	}
	for i, col := range cols {
		n := len(visibleByColumn(m.store)[col.ID])
		if m.selectedRow[i] >= n {
			m.selectedRow[i] = n - 1
		}
		if m.selectedRow[i] < 0 {
			m.selectedRow[i] = 0
		}
	}
}

func clearNoticeAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearNoticeMsg{}
	})
}
