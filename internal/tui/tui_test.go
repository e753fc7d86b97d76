package tui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"rescale/internal/scaler"
	"rescale/internal/session"
)

type memorySaver struct {
	saved []scaler.Output
}

func (s *memorySaver) Save(out scaler.Output) (string, error) {
	s.saved = append(s.saved, out)
	return "/tmp/" + out.Filename, nil
}

func pngInput(t *testing.T, name string, w, h int) scaler.Input {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 3), G: uint8(y * 5), B: 90, A: 0xff})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return scaler.BytesInput(name, "image/png", buf.Bytes())
}

func key(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "right":
		return tea.KeyMsg{Type: tea.KeyRight}
	case "left":
		return tea.KeyMsg{Type: tea.KeyLeft}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// drive runs cmd and every follow-up command synchronously.
func drive(m tea.Model, cmd tea.Cmd) tea.Model {
	for cmd != nil {
		msg := cmd()
		if _, ok := msg.(tea.QuitMsg); ok {
			return m
		}
		m, cmd = m.Update(msg)
	}
	return m
}

func press(m tea.Model, keys ...string) tea.Model {
	for _, k := range keys {
		var cmd tea.Cmd
		m, cmd = m.Update(key(k))
		m = drive(m, cmd)
	}
	return m
}

func openBrowser(t *testing.T, inputs ...scaler.Input) (tea.Model, *session.Editor, *memorySaver) {
	t.Helper()

	e := session.New()
	require.NoError(t, e.Open(context.Background(), inputs))
	saver := &memorySaver{}
	b := NewBrowser(context.Background(), e, saver)
	return drive(b, b.Init()), e, saver
}

func TestBrowserResizeAndSave(t *testing.T) {
	m, e, saver := openBrowser(t, pngInput(t, "beach.png", 1200, 800))
	require.Contains(t, m.View(), "1200 × 800")

	m = press(m, "w", "6", "0", "0", "enter")
	require.Equal(t, 600, e.Settings().Width)
	require.Equal(t, 400, e.Settings().Height)
	require.Contains(t, m.View(), "600 × 400")

	m = press(m, "-", "-", "-", "-", "-")
	require.Equal(t, 50.0, e.Settings().ScalePercent)
	require.Contains(t, m.View(), "300 × 200")

	m = press(m, "f")
	require.Equal(t, scaler.FormatPNG, e.Settings().Format)

	m = press(m, "d")
	require.Len(t, saver.saved, 1)
	require.Equal(t, "beach-resized.png", saver.saved[0].Filename)
	require.Contains(t, m.View(), "saved /tmp/beach-resized.png")
}

func TestBrowserHeightInputAndCancel(t *testing.T) {
	m, e, _ := openBrowser(t, pngInput(t, "a.png", 300, 200))

	m = press(m, "h", "1", "0", "0", "enter")
	require.Equal(t, 150, e.Settings().Width)

	m = press(m, "w", "9", "backspace", "esc")
	require.Equal(t, 150, e.Settings().Width)

	m = press(m, "w", "enter")
	require.Contains(t, m.View(), "enter a positive number of pixels")
}

func TestBrowserNavigationAndExportAll(t *testing.T) {
	m, e, saver := openBrowser(t,
		pngInput(t, "one.png", 40, 20),
		pngInput(t, "two.png", 20, 40),
	)
	require.Contains(t, m.View(), "Image 1 of 2")

	m = press(m, "right")
	require.Equal(t, "two", e.Current().NameBase())
	require.Contains(t, m.View(), "Image 2 of 2")

	m = press(m, "right")
	require.Equal(t, "one", e.Current().NameBase())

	m = press(m, "left")
	require.Equal(t, "two", e.Current().NameBase())

	m = press(m, "a")
	require.Len(t, saver.saved, 2)
	require.Equal(t, "one-resized.jpg", saver.saved[0].Filename)
	require.Equal(t, "two-resized.jpg", saver.saved[1].Filename)
	require.Contains(t, m.View(), "exported 2, failed 0")
}

func TestBrowserViewDuringNavigation(t *testing.T) {
	m, e, _ := openBrowser(t,
		pngInput(t, "one.png", 40, 20),
		pngInput(t, "two.png", 20, 40),
	)

	m, cmd := m.Update(key("right"))
	require.NotNil(t, cmd)

	msgs := make(chan tea.Msg, 1)
	go func() {
		msgs <- cmd()
	}()
	for i := 0; i < 200; i++ {
		_ = m.View()
	}

	m = drive(m, func() tea.Msg { return <-msgs })
	require.Equal(t, "two", e.Current().NameBase())
	require.Contains(t, m.View(), "20 × 40")
}

func TestBrowserSettingsKeys(t *testing.T) {
	m, e, _ := openBrowser(t, pngInput(t, "a.png", 30, 30))

	m = press(m, "l")
	require.False(t, e.Settings().LockAspect)

	m = press(m, "[", "[")
	require.InDelta(t, 0.8, e.Settings().Quality, 1e-9)

	m = press(m, "+", "+", "r")
	require.Equal(t, scaler.DefaultSettings(30, 30), e.Settings())

	press(m, "q")
}

func TestBrowserIgnoresKeysWhileBusy(t *testing.T) {
	e := session.New()
	require.NoError(t, e.Open(context.Background(), []scaler.Input{pngInput(t, "a.png", 10, 10)}))

	b := NewBrowser(context.Background(), e, &memorySaver{})
	m, cmd := b.Update(key("+"))
	require.Nil(t, cmd)
	require.Equal(t, 100.0, e.Settings().ScalePercent)
	require.Contains(t, m.View(), "loading")
}

func TestProgressModel(t *testing.T) {
	updates := make(chan scaler.ProgressUpdate)
	var m tea.Model = NewModel(updates)

	m, _ = m.Update(updateMsg{TotalDelta: 3})
	m, _ = m.Update(updateMsg{ProcessedDelta: 1, BytesDelta: 2048})
	m, _ = m.Update(updateMsg{ProcessedDelta: 1, ErrorDelta: 1})

	view := m.View()
	require.Contains(t, view, "Images: 2/3")
	require.Contains(t, view, "errors:1")
	require.Contains(t, view, "2.0 KB")

	close(updates)
	msg := listenForUpdates(updates)()
	require.Equal(t, doneMsg{}, msg)

	m, cmd := m.Update(msg)
	require.NotNil(t, cmd)
	require.Empty(t, m.View())
}

func TestRenderBar(t *testing.T) {
	require.Equal(t, "[==  ]", renderBar(4, 0.5))
	require.Equal(t, "[====]", renderBar(4, 2))
	require.Equal(t, "[    ]", renderBar(4, -1))
}

func TestResultRows(t *testing.T) {
	rows := ResultRows([]scaler.Result{
		{Name: "a.png", Width: 10, Height: 5, Output: scaler.Output{Filename: "a-resized.png", Data: make([]byte, 2048)}},
		{Name: "b.png", Err: errors.New("boom")},
	})
	require.Len(t, rows, 2)
	require.Equal(t, "a-resized.png  10x5  2.0 KB", rows[0].Value)
	require.Contains(t, rows[1].Value, "failed: boom")

	table := RenderSummary(rows)
	lines := strings.Split(table, "\n")
	require.Len(t, lines, 4)
	require.Equal(t, lines[0], lines[3])
}
