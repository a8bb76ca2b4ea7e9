package obj

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// Input holds the per-frame input state the game cares about.
type Input struct {
	// MouseX/Y are the cursor position in world pixels (the view is fixed,
	// so screen coordinates are world coordinates).
	MouseX float64
	MouseY float64
	// MouseLeftPressed is true on the frame the left button went down.
	MouseLeftPressed bool
	// MouseLeftHeld is true while the left button is down.
	MouseLeftHeld bool
	// PausePressed is true on the frame Escape was pressed.
	PausePressed bool
	// ReloadPressed is true on the frame R was pressed.
	ReloadPressed bool
}

func NewInput() *Input {
	return &Input{}
}

// Update polls the mouse and keyboard.
func (i *Input) Update() {
	if i == nil {
		return
	}
	mx, my := ebiten.CursorPosition()
	i.MouseX = float64(mx)
	i.MouseY = float64(my)

	i.MouseLeftPressed = inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft)
	i.MouseLeftHeld = ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)

	i.PausePressed = inpututil.IsKeyJustPressed(ebiten.KeyEscape)
	i.ReloadPressed = inpututil.IsKeyJustPressed(ebiten.KeyR)
}
