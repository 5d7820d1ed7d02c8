package gen

import (
	"errors"
	"testing"

	"github.com/OCharnyshevich/voxel-terrain/internal/world"
)

func TestModeUnmarshalText(t *testing.T) {
	for in, want := range map[string]Mode{
		"solid":  ModeSolid,
		"SUB":    ModeSub,
		" Sub\n": ModeSub,
		"":       "",
	} {
		var m Mode
		if err := m.UnmarshalText([]byte(in)); err != nil {
			t.Errorf("UnmarshalText(%q): %v", in, err)
			continue
		}
		if m != want {
			t.Errorf("UnmarshalText(%q) = %q, want %q", in, m, want)
		}
	}

	m := ModeSub
	if err := m.UnmarshalText([]byte("hollow")); !errors.Is(err, world.ErrInvalidConfiguration) {
		t.Errorf("UnmarshalText(hollow) error = %v, want ErrInvalidConfiguration", err)
	}
	if m != ModeSub {
		t.Errorf("failed UnmarshalText changed the mode to %q", m)
	}
}

func TestModeMarshalText(t *testing.T) {
	text, err := ModeSub.MarshalText()
	if err != nil {
		t.Fatal(err)
	}
	var back Mode
	if err := back.UnmarshalText(text); err != nil || back != ModeSub {
		t.Errorf("round trip of %q gave %q, %v", text, back, err)
	}
}
