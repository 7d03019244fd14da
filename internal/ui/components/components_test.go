// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/treehole-tui/internal/localmodel"
	"github.com/jeranaias/treehole-tui/internal/store"
	"github.com/jeranaias/treehole-tui/internal/ui/styles"
)

func TestPinPadUnlockFlow(t *testing.T) {
	pad := NewPinPad("树洞 1", true)
	if pad.Mode != PinModeUnlock {
		t.Fatalf("mode = %v, want unlock", pad.Mode)
	}

	for _, r := range "1234" {
		pad.TypeRune(r)
	}
	pad.Backspace()
	pad.TypeRune('5')

	entered, ok := pad.Submit()
	if !ok {
		t.Fatal("Submit should return entry in unlock mode")
	}
	if entered != "1235" {
		t.Errorf("entered = %q, want 1235", entered)
	}
	if pad.Value() != "" {
		t.Error("value should clear after submit")
	}
}

func TestPinPadSetupConfirmMatch(t *testing.T) {
	pad := NewPinPad("树洞 2", false)
	if pad.Mode != PinModeSetup {
		t.Fatalf("mode = %v, want setup", pad.Mode)
	}

	for _, r := range "秘密" {
		pad.TypeRune(r)
	}
	if entered, ok := pad.Submit(); ok || entered != "" {
		t.Fatal("setup submit should not return a password yet")
	}
	if pad.Mode != PinModeConfirm {
		t.Fatalf("mode = %v, want confirm", pad.Mode)
	}

	for _, r := range "秘密" {
		pad.TypeRune(r)
	}
	entered, ok := pad.Submit()
	if !ok || entered != "秘密" {
		t.Errorf("confirm submit = (%q, %v), want (秘密, true)", entered, ok)
	}
}

func TestPinPadSetupConfirmMismatchRestarts(t *testing.T) {
	pad := NewPinPad("树洞 3", false)

	for _, r := range "abc" {
		pad.TypeRune(r)
	}
	pad.Submit()
	for _, r := range "xyz" {
		pad.TypeRune(r)
	}

	if _, ok := pad.Submit(); ok {
		t.Fatal("mismatched confirmation should not succeed")
	}
	if pad.Mode != PinModeSetup {
		t.Errorf("mode = %v, want setup restart", pad.Mode)
	}
	if !pad.HasError() {
		t.Error("mismatch should show an error")
	}
}

func TestPinPadErrorFreezesAndExpires(t *testing.T) {
	pad := NewPinPad("树洞 4", true)
	pad.SetError("密码不对")

	pad.TypeRune('1')
	if pad.Value() != "" {
		t.Error("input should be ignored while error is showing")
	}
	if _, ok := pad.Submit(); ok {
		t.Error("submit should be ignored while error is showing")
	}

	if pad.ClearExpiredError(time.Now()) {
		t.Error("error should not clear before the reset delay")
	}
	if !pad.ClearExpiredError(time.Now().Add(ErrorResetDelay + time.Millisecond)) {
		t.Error("error should clear after the reset delay")
	}
	if pad.HasError() {
		t.Error("error still set after clearing")
	}
}

func TestPinPadRenderShowsMaskedDots(t *testing.T) {
	theme := styles.NewTheme()
	pad := NewPinPad("树洞 5", true)
	pad.TypeRune('1')
	pad.TypeRune('2')

	out := pad.Render(theme, 80)
	if !strings.Contains(out, "●●") {
		t.Error("render should mask the entry with dots")
	}
	if strings.Contains(out, "12") {
		t.Error("render must not leak the raw entry")
	}
}

func TestStorageGaugeRender(t *testing.T) {
	theme := styles.NewTheme()
	g := NewStorageGauge(store.Usage{
		Bytes:    store.StorageBudgetBytes / 2,
		Budget:   store.StorageBudgetBytes,
		Fraction: 0.5,
	})

	out := g.Render(theme)
	if !strings.Contains(out, "2.5 MiB") || !strings.Contains(out, "5.0 MiB") {
		t.Errorf("gauge missing byte counts: %q", out)
	}
	if strings.Contains(out, "空间快满了") {
		t.Error("half-full gauge should not warn")
	}
}

func TestStorageGaugeWarnsNearLimit(t *testing.T) {
	theme := styles.NewTheme()
	g := NewStorageGauge(store.Usage{
		Bytes:    store.StorageBudgetBytes - 1024,
		Budget:   store.StorageBudgetBytes,
		Fraction: 0.99,
	})

	if out := g.Render(theme); !strings.Contains(out, "空间快满了") {
		t.Error("near-limit gauge should warn")
	}
}

func TestStatusBarEngineLabels(t *testing.T) {
	theme := styles.NewTheme()

	tests := []struct {
		name string
		bar  StatusBar
		want string
	}{
		{"template mode", StatusBar{ModelBacked: false, Width: 80}, "模板回应"},
		{"model ready", StatusBar{ModelBacked: true, ModelState: localmodel.StateReady, Width: 80}, "本地模型"},
		{"model loading", StatusBar{ModelBacked: true, ModelState: localmodel.StateLoading, ModelProgress: 40, Width: 80}, "40%"},
		{"model not started", StatusBar{ModelBacked: true, ModelState: localmodel.StateNotStarted, Width: 80}, "模板回应"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if out := tt.bar.Render(theme); !strings.Contains(out, tt.want) {
				t.Errorf("status bar missing %q: %q", tt.want, out)
			}
		})
	}
}

func TestStatusBarLockCountdown(t *testing.T) {
	theme := styles.NewTheme()
	bar := StatusBar{
		HoleTitle:     "树洞 1",
		LockRemaining: 90 * time.Second,
		Width:         80,
	}

	out := bar.Render(theme)
	if !strings.Contains(out, "1m 30s") {
		t.Errorf("status bar missing lock countdown: %q", out)
	}
}
