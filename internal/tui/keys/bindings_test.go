package keys

import (
	"testing"

	"github.com/gdamore/tcell/v2"
)

func TestDispatchPrefersViewBindings(t *testing.T) {
	r := NewRegistry()
	var got []string
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'f', Handler: func() { got = append(got, "global") }})
	r.AddView("musicians", &Action{Key: tcell.KeyRune, Rune: 'f', Handler: func() { got = append(got, "follow") }})

	if !r.Dispatch("musicians", tcell.KeyRune, 'f') {
		t.Fatal("no handler matched in musicians")
	}
	if !r.Dispatch("gigs", tcell.KeyRune, 'f') {
		t.Fatal("no handler matched in gigs")
	}
	if len(got) != 2 || got[0] != "follow" || got[1] != "global" {
		t.Errorf("handlers ran = %v, want [follow global]", got)
	}
	if r.Dispatch("gigs", tcell.KeyRune, 'z') {
		t.Error("unbound rune matched")
	}
}

func TestDispatchSpecialKeys(t *testing.T) {
	r := NewRegistry()
	called := false
	r.AddGlobal(&Action{Key: tcell.KeyEscape, Handler: func() { called = true }})

	if r.Dispatch("any", tcell.KeyRune, 0x1b) {
		t.Error("rune event matched a special key binding")
	}
	if !r.Dispatch("any", tcell.KeyEscape, 0) || !called {
		t.Error("Esc binding not dispatched")
	}
}

func TestHintsOrder(t *testing.T) {
	r := NewRegistry()
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'q', Description: "Quit", Visible: true})
	r.AddGlobal(&Action{Key: tcell.KeyRune, Rune: 'x', Description: "Hidden"})
	r.AddView("notifications", &Action{Key: tcell.KeyRune, Rune: 'a', Description: "Mark all read", Visible: true})
	r.AddView("notifications", &Action{Key: tcell.KeyEnter, Description: "Mark read", Visible: true})

	hints := r.Hints("notifications")
	want := []string{"a", "Enter", "q"}
	if len(hints) != len(want) {
		t.Fatalf("Hints() = %+v", hints)
	}
	for i, k := range want {
		if hints[i].Key != k {
			t.Errorf("hint %d key = %q, want %q", i, hints[i].Key, k)
		}
	}
}
