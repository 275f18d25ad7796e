package slug

import "testing"

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"simple", "Pizza Hut", "pizza-hut"},
		{"accents", "Café Crème", "cafe-creme"},
		{"punctuation", "Joe's  Diner!!", "joes-diner"},
		{"hyphens collapse", "a - - b", "a-b"},
		{"trims", "  --Taco Bell--  ", "taco-bell"},
		{"non latin dropped", "寿司 Sushi", "sushi"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.in); got != tt.want {
				t.Errorf("Make(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestWithID(t *testing.T) {
	if got := WithID("Burger King", 42); got != "burger-king-42" {
		t.Errorf("WithID() = %q", got)
	}
	if got := WithID("!!!", 7); got != "7" {
		t.Errorf("WithID() with empty base = %q", got)
	}
	if WithID("Same Name", 1) == WithID("Same Name", 2) {
		t.Error("WithID() should differ for different ids")
	}
}
