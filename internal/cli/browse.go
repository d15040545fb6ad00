package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/pngstash/pngstash/internal/core"
	"github.com/pngstash/pngstash/pkg/png"
)

// browsePath is the file the browse TUI operates on, set by browseCmd
// before the program starts.
var browsePath string

// detailDataLimit caps how many data bytes the detail panel renders.
const detailDataLimit = 2048

type browseModel struct {
	path     string
	width    int
	height   int
	selected int

	// Data.
	report *core.ChunkReport
	file   *png.File

	// State.
	loading bool
	err     error
}

// chunksLoadedMsg carries a freshly loaded file back to the model.
type chunksLoadedMsg struct {
	report *core.ChunkReport
	file   *png.File
	err    error
}

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 2)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("62"))

	criticalChunkStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	ancillaryChunkStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

func newBrowseModel(path string) browseModel {
	return browseModel{
		path:    path,
		loading: true,
	}
}

func (m browseModel) Init() tea.Cmd {
	return loadChunks
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.selected > 0 {
				m.selected--
			}
			return m, nil
		case "down", "j":
			if m.report != nil && m.selected < len(m.report.Chunks)-1 {
				m.selected++
			}
			return m, nil
		case "g":
			m.selected = 0
			return m, nil
		case "G":
			if m.report != nil && len(m.report.Chunks) > 0 {
				m.selected = len(m.report.Chunks) - 1
			}
			return m, nil
		case "r":
			m.loading = true
			return m, loadChunks
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case chunksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.report = msg.report
		m.file = msg.file
		m.err = nil
		if m.selected >= len(m.report.Chunks) {
			m.selected = 0
		}
		return m, nil
	}

	return m, nil
}

func (m browseModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	title := titleStyle.Render(" pngstash browse ")
	help := helpStyle.Render("up/down: select chunk | g/G: first/last | r: reload | q: quit")

	if m.loading {
		return fmt.Sprintf("%s\n\n  Loading %s...\n\n%s", title, m.path, help)
	}

	if m.err != nil {
		return fmt.Sprintf("%s\n\n  Error: %s\n\n%s", title, m.err, help)
	}

	listPanel := m.renderListPanel()
	detailPanel := m.renderDetailPanel()

	// Available width for panels after accounting for margins.
	availableWidth := m.width - 2

	var body string
	if availableWidth > 90 {
		// Horizontal layout: list beside detail.
		listWidth := availableWidth / 3
		detailWidth := availableWidth - listWidth
		listPanel = panelStyle.Width(listWidth - 4).Render(listPanel)
		detailPanel = panelStyle.Width(detailWidth - 4).Render(detailPanel)
		body = lipgloss.JoinHorizontal(lipgloss.Top, listPanel, detailPanel)
	} else {
		// Vertical layout: stacked.
		panelWidth := availableWidth - 4
		if panelWidth < 20 {
			panelWidth = 20
		}
		listPanel = panelStyle.Width(panelWidth).Render(listPanel)
		detailPanel = panelStyle.Width(panelWidth).Render(detailPanel)
		body = lipgloss.JoinVertical(lipgloss.Left, listPanel, detailPanel)
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, body, help)
}

func (m browseModel) renderListPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Chunks in %s", m.path)))
	b.WriteString("\n")

	if m.report == nil || len(m.report.Chunks) == 0 {
		b.WriteString("  No chunks found.")
		return b.String()
	}

	for i, ci := range m.report.Chunks {
		line := fmt.Sprintf(" %2d  %-4s  %6d B ", ci.Index, ci.Type, ci.Length)
		if i == m.selected {
			line = selectedStyle.Render(line)
		} else if ci.Critical {
			line = criticalChunkStyle.Render(line)
		} else {
			line = ancillaryChunkStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("\n  Total: %d chunk(s), %d data bytes", m.report.ChunkCount, m.report.DataBytes))

	return b.String()
}

func (m browseModel) renderDetailPanel() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Detail"))
	b.WriteString("\n")

	if m.report == nil || m.selected >= len(m.report.Chunks) {
		b.WriteString("  Nothing selected.")
		return b.String()
	}

	ci := m.report.Chunks[m.selected]
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "Type:", ci.Type))
	b.WriteString(fmt.Sprintf("  %-12s %d bytes\n", "Length:", ci.Length))
	b.WriteString(fmt.Sprintf("  %-12s %d\n", "CRC:", ci.CRC))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "Critical:", yesNo(ci.Critical)))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "Public:", yesNo(ci.Public)))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "Reserved ok:", yesNo(ci.ReservedValid)))
	b.WriteString(fmt.Sprintf("  %-12s %s\n", "Safe copy:", yesNo(ci.SafeToCopy)))

	if m.file != nil && m.selected < len(m.file.Chunks()) {
		data := m.file.Chunks()[m.selected].Data()
		if len(data) > 0 {
			b.WriteString("\n  Data:\n")
			b.WriteString("  " + printableData(data, detailDataLimit))
		}
	}

	return b.String()
}

// printableData renders data with non-printable bytes replaced by dots,
// capped at max bytes.
func printableData(data []byte, max int) string {
	n := len(data)
	truncated := false
	if n > max {
		n = max
		truncated = true
	}

	out := make([]byte, 0, n+3)
	for _, b := range data[:n] {
		if b >= 0x20 && b <= 0x7e {
			out = append(out, b)
		} else {
			out = append(out, '.')
		}
	}
	if truncated {
		out = append(out, "..."...)
	}
	return string(out)
}

func loadChunks() tea.Msg {
	result := chunksLoadedMsg{}

	if Store == nil || Inspector == nil {
		result.err = fmt.Errorf("services not initialized")
		return result
	}

	f, err := Store.Load(browsePath)
	if err != nil {
		result.err = err
		return result
	}

	result.file = f
	result.report = Inspector.Inspect(f)
	result.report.Path = browsePath

	return result
}

var browseCmd = &cobra.Command{
	Use:   "browse <png>",
	Short: "Browse the chunks of a PNG file interactively",
	Long: `Launch an interactive terminal browser for a PNG file: a chunk list
panel beside a detail panel showing the selected chunk's properties and
printable data.

Navigate with the arrow keys or j/k, reload the file with r, quit with q.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if Store == nil || Inspector == nil {
			return fmt.Errorf("services not initialized")
		}
		browsePath = args[0]
		p := tea.NewProgram(newBrowseModel(args[0]), tea.WithAltScreen())
		_, err := p.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
}
