package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain tag untouched", "Weapon", "Weapon"},
		{"dotted path untouched", "Items.sword", "Items.sword"},
		{"forbidden characters", `a<b>c:d"e/f\g|h?i*j`, "a_b_c_d_e_f_g_h_i_j"},
		{"whitespace run collapses", "Big   Bad\tWolf", "Big_Bad_Wolf"},
		{"mixed", `Spell / "Fire  Ball"`, "Spell___Fire_Ball_"},
		{"empty stays empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeName(tt.input))
		})
	}
}
