package systems

import (
	"image/color"
	"sort"

	cfg "github.com/automoto/doomerang-audio/config"
	"github.com/automoto/doomerang-audio/fonts"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text" //nolint:staticcheck // TODO: migrate to text/v2
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font"
)

const (
	hudMargin     = 8
	hudLineHeight = 18
	hudLabelGap   = 12
)

var hudBackground = color.RGBA{40, 40, 40, 255}

// CategoryToggle is one category as shown on the HUD.
type CategoryToggle struct {
	Key     string
	Enabled bool
}

type hudLabel struct {
	text string
	x    int
	clr  color.Color
}

// layoutToggles places one label per category, sorted by key, left to right.
func layoutToggles(face font.Face, toggles []CategoryToggle) []hudLabel {
	sorted := append([]CategoryToggle(nil), toggles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Key < sorted[j].Key })

	labels := make([]hudLabel, 0, len(sorted))
	x := hudMargin
	for _, toggle := range sorted {
		label := hudLabel{text: toggle.Key + " on", x: x, clr: cfg.Green}
		if !toggle.Enabled {
			label.text = toggle.Key + " off"
			label.clr = cfg.Red
		}
		labels = append(labels, label)
		x += font.MeasureString(face, label.text).Ceil() + hudLabelGap
	}
	return labels
}

// DrawStatus renders the connection line and the category toggles in the
// top-left corner.
func DrawStatus(screen *ebiten.Image, status string, statusColor color.Color, toggles []CategoryToggle) {
	if !fonts.Loaded(fonts.Regular) {
		return
	}
	face := fonts.Regular.Get()

	vector.FillRect(screen,
		0, 0,
		float32(screen.Bounds().Dx()), float32(hudMargin+2*hudLineHeight),
		hudBackground, false)

	text.Draw(screen, status, face, hudMargin, hudLineHeight, statusColor)
	for _, label := range layoutToggles(face, toggles) {
		text.Draw(screen, label.text, face, label.x, 2*hudLineHeight, label.clr)
	}
}

// DrawDebugLine renders a small monospace line at row y.
func DrawDebugLine(screen *ebiten.Image, line string, y int) {
	if !fonts.Loaded(fonts.Mono) {
		return
	}
	text.Draw(screen, line, fonts.Mono.Get(), hudMargin, y, cfg.Yellow)
}
