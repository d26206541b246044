package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/gustpath/ecs/component"
)

const stickDeadzone = 0.2

// pollInput samples keyboard and the first gamepad into one input snapshot.
func pollInput() component.Input {
	left := ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft)
	right := ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight)
	jump := ebiten.IsKeyPressed(ebiten.KeySpace) || ebiten.IsKeyPressed(ebiten.KeyW) || ebiten.IsKeyPressed(ebiten.KeyArrowUp)
	freeze := ebiten.IsKeyPressed(ebiten.KeyShiftLeft) || ebiten.IsKeyPressed(ebiten.KeyF)

	moveX := 0.0
	if left {
		moveX -= 1
	}
	if right {
		moveX += 1
	}

	if gamepads := ebiten.AppendGamepadIDs(nil); len(gamepads) > 0 {
		id := gamepads[0]
		leftX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if math.Abs(leftX) > stickDeadzone {
			moveX = leftX
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftLeft) {
			moveX = -1
		}
		if ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonLeftRight) {
			moveX = 1
		}
		jump = jump || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
		freeze = freeze || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonFrontBottomLeft)
	}

	return component.Input{MoveX: moveX, Jump: jump, Freeze: freeze}
}

type menuAction int

const (
	menuNone menuAction = iota
	menuPause
	menuRestart
	menuNextLevel
	menuToggleSensors
	menuToggleWind
	menuToggleFans
)

// pollMenu reports the first menu key pressed this frame.
func pollMenu() menuAction {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape), inpututil.IsKeyJustPressed(ebiten.KeyP):
		return menuPause
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		return menuRestart
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		return menuNextLevel
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		return menuToggleSensors
	case inpututil.IsKeyJustPressed(ebiten.KeyF2):
		return menuToggleWind
	case inpututil.IsKeyJustPressed(ebiten.KeyF3):
		return menuToggleFans
	}

	if gamepads := ebiten.AppendGamepadIDs(nil); len(gamepads) > 0 {
		id := gamepads[0]
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterRight) {
			return menuPause
		}
		if inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterLeft) {
			return menuRestart
		}
	}
	return menuNone
}
