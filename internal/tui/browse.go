package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"rescale/internal/scaler"
	"rescale/internal/session"
)

const (
	scaleStep   = 10.0
	qualityStep = 0.05
)

// Saver persists an encoded output and returns where it went.
type Saver interface {
	Save(out scaler.Output) (string, error)
}

type inputField int

const (
	inputNone inputField = iota
	inputWidth
	inputHeight
)

// Browser is an interactive editor over an opened session. Editor calls
// that decode or encode run as commands and keys are ignored while one is
// in flight. View reads only the Browser's own copies of the settings and
// preview, never the editor.
type Browser struct {
	ctx    context.Context
	editor *session.Editor
	saver  Saver

	settings   scaler.Settings
	preview    session.Preview
	hasPreview bool
	status     string
	statusErr  bool
	busy       bool

	field  inputField
	buffer string

	quitting bool
}

type previewMsg struct {
	preview  session.Preview
	settings scaler.Settings
	err      error
}

type navigatedMsg struct {
	settings scaler.Settings
	err      error
}

type savedMsg struct {
	path string
	err  error
}

type exportedMsg struct {
	saved  int
	failed int
	err    error
}

func NewBrowser(ctx context.Context, editor *session.Editor, saver Saver) Browser {
	return Browser{ctx: ctx, editor: editor, saver: saver, settings: editor.Settings(), busy: true}
}

func (b Browser) Init() tea.Cmd {
	return previewCmd(b.editor)
}

func (b Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case previewMsg:
		b.busy = false
		b.settings = msg.settings
		if msg.err != nil {
			b.setError(msg.err)
			return b, nil
		}
		b.preview = msg.preview
		b.hasPreview = true
		return b, nil
	case navigatedMsg:
		b.settings = msg.settings
		if msg.err != nil {
			b.setError(fmt.Errorf("could not load that image: %w", msg.err))
		}
		return b.withRefresh()
	case savedMsg:
		b.busy = false
		if msg.err != nil {
			b.setError(msg.err)
		} else {
			b.setStatus("saved " + msg.path)
		}
		return b, nil
	case exportedMsg:
		if msg.err != nil {
			b.setError(msg.err)
		} else {
			b.setStatus(fmt.Sprintf("exported %d, failed %d", msg.saved, msg.failed))
		}
		// the batch drew on the shared surface
		return b.withRefresh()
	case tea.KeyMsg:
		return b.handleKey(msg)
	default:
		return b, nil
	}
}

func (b Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		b.quitting = true
		return b, tea.Quit
	}
	if b.field != inputNone {
		return b.handleInput(key)
	}
	if key == "q" {
		b.quitting = true
		return b, tea.Quit
	}
	if b.busy {
		return b, nil
	}

	s := b.settings
	switch key {
	case "right", "n":
		return b.navigate(b.editor.Next)
	case "left", "p":
		return b.navigate(b.editor.Prev)
	case "+", "=":
		b.editor.SetScale(s.ScalePercent + scaleStep)
	case "-", "_":
		b.editor.SetScale(s.ScalePercent - scaleStep)
	case "]":
		b.editor.SetQuality(s.Quality + qualityStep)
	case "[":
		b.editor.SetQuality(s.Quality - qualityStep)
	case "f":
		if err := b.editor.SetFormat(nextFormat(s.Format)); err != nil {
			b.setError(err)
			return b, nil
		}
	case "l":
		b.editor.SetLockAspect(!s.LockAspect)
	case "r":
		if err := b.editor.Reset(); err != nil {
			b.setError(err)
			return b, nil
		}
	case "w":
		b.field, b.buffer = inputWidth, ""
		return b, nil
	case "h":
		b.field, b.buffer = inputHeight, ""
		return b, nil
	case "d":
		b.busy = true
		return b, b.download()
	case "a":
		b.busy = true
		return b, b.exportAll()
	default:
		return b, nil
	}
	b.settings = b.editor.Settings()
	return b.withRefresh()
}

func (b Browser) handleInput(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "esc":
		b.field, b.buffer = inputNone, ""
		return b, nil
	case "backspace":
		if len(b.buffer) > 0 {
			b.buffer = b.buffer[:len(b.buffer)-1]
		}
		return b, nil
	case "enter":
		field := b.field
		b.field = inputNone
		v, err := strconv.Atoi(b.buffer)
		b.buffer = ""
		if err != nil || v <= 0 {
			b.setError(fmt.Errorf("enter a positive number of pixels"))
			return b, nil
		}
		if field == inputWidth {
			b.editor.SetWidth(v)
		} else {
			b.editor.SetHeight(v)
		}
		b.settings = b.editor.Settings()
		return b.withRefresh()
	}
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' && len(b.buffer) < 5 {
		b.buffer += key
	}
	return b, nil
}

func (b Browser) navigate(move func(context.Context) error) (tea.Model, tea.Cmd) {
	b.busy = true
	ctx := b.ctx
	editor := b.editor
	return b, func() tea.Msg {
		err := move(ctx)
		return navigatedMsg{settings: editor.Settings(), err: err}
	}
}

func (b Browser) withRefresh() (tea.Model, tea.Cmd) {
	b.busy = true
	return b, previewCmd(b.editor)
}

func previewCmd(editor *session.Editor) tea.Cmd {
	return func() tea.Msg {
		p, err := editor.Preview()
		return previewMsg{preview: p, settings: editor.Settings(), err: err}
	}
}

func (b Browser) download() tea.Cmd {
	editor, saver := b.editor, b.saver
	return func() tea.Msg {
		out, err := editor.Download()
		if err != nil {
			return savedMsg{err: err}
		}
		path, err := saver.Save(out)
		return savedMsg{path: path, err: err}
	}
}

func (b Browser) exportAll() tea.Cmd {
	ctx, editor, saver := b.ctx, b.editor, b.saver
	return func() tea.Msg {
		results, err := editor.ExportAll(ctx)
		if err != nil {
			return exportedMsg{err: err}
		}
		var msg exportedMsg
		for _, res := range results {
			if res.Err != nil {
				msg.failed++
				continue
			}
			if _, err := saver.Save(res.Output); err != nil {
				msg.failed++
				continue
			}
			msg.saved++
		}
		return msg
	}
}

func (b *Browser) setStatus(s string) {
	b.status, b.statusErr = s, false
}

func (b *Browser) setError(err error) {
	b.status, b.statusErr = err.Error(), true
}

func (b Browser) View() string {
	if b.quitting {
		return ""
	}

	s := b.settings
	lines := []string{titleStyle.Render("rescale")}

	if b.hasPreview {
		p := b.preview
		lines = append(lines,
			dimStyle.Render(p.Label())+"  "+labelStyle.Render(p.Name),
			row("Original", fmt.Sprintf("%d × %d", p.SourceWidth, p.SourceHeight)),
			row("Output", fmt.Sprintf("%d × %d", p.OutWidth, p.OutHeight)),
			row("Estimated", scaler.FormatBytes(p.EstimatedBytes)),
		)
	} else {
		lines = append(lines, dimStyle.Render("loading…"))
	}

	lock := "off"
	if s.LockAspect {
		lock = "on"
	}
	lines = append(lines,
		"",
		row("Width", b.fieldValue(inputWidth, s.Width)),
		row("Height", b.fieldValue(inputHeight, s.Height)),
		row("Lock aspect", lock),
		row("Scale", fmt.Sprintf("%.0f%%", s.ScalePercent)),
		row("Format", s.Format.Extension()),
		row("Quality", fmt.Sprintf("%.0f", s.Quality*100)),
	)

	if b.status != "" {
		style := okStyle
		if b.statusErr {
			style = errorStyle
		}
		lines = append(lines, "", style.Render(b.status))
	}

	lines = append(lines, "", helpLine())
	return panelStyle.Render(strings.Join(lines, "\n"))
}

func (b Browser) fieldValue(field inputField, v int) string {
	if b.field == field {
		return b.buffer + "▏"
	}
	return strconv.Itoa(v)
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(value)
}

func helpLine() string {
	keys := []struct{ key, action string }{
		{"←/→", "image"},
		{"w/h", "size"},
		{"+/-", "scale"},
		{"[/]", "quality"},
		{"f", "format"},
		{"l", "lock"},
		{"r", "reset"},
		{"d", "save"},
		{"a", "save all"},
		{"q", "quit"},
	}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, keyStyle.Render(k.key)+" "+dimStyle.Render(k.action))
	}
	return strings.Join(parts, "  ")
}

func nextFormat(f scaler.Format) scaler.Format {
	for i, candidate := range scaler.Formats {
		if candidate == f {
			return scaler.Formats[(i+1)%len(scaler.Formats)]
		}
	}
	return scaler.Formats[0]
}
