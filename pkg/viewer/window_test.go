package viewer

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/taigrr/sloth/pkg/scene"
)

func TestReadInput(t *testing.T) {
	tests := []struct {
		name string
		keys []ebiten.Key
		want scene.Input
	}{
		{"nothing held", nil, scene.Input{}},
		{"arrow left", []ebiten.Key{ebiten.KeyArrowLeft}, scene.Input{Yaw: -1}},
		{"letter and arrow count once", []ebiten.Key{ebiten.KeyD, ebiten.KeyArrowRight}, scene.Input{Yaw: 1}},
		{"opposites cancel", []ebiten.Key{ebiten.KeyW, ebiten.KeyS}, scene.Input{}},
		{"zoom and rise", []ebiten.Key{ebiten.KeyEqual, ebiten.KeyE}, scene.Input{Zoom: 1, Up: 1}},
		{"pitch down", []ebiten.Key{ebiten.KeyArrowDown}, scene.Input{Pitch: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			held := make(map[ebiten.Key]bool)
			for _, k := range tt.keys {
				held[k] = true
			}
			got := readInput(func(k ebiten.Key) bool { return held[k] })
			if got != tt.want {
				t.Errorf("readInput() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
