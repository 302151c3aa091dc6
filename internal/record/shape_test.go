package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsCandidate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"dotted path", "Items.Sword", true},
		{"deep dotted path", "Quests.Chapter1.Intro", true},
		{"dotted with hyphen", "Items.long-sword", true},
		{"generated prefix gd_", "gd_WeaponTable", true},
		{"generated prefix tpl_", "tpl_enemy_base", true},
		{"generated suffix GameData", "SwordGameData", true},
		{"generated suffix Template", "EnemyTemplate", true},
		{"prose with spaces", "not a reference, just text", false},
		{"too short", "A.", false},
		{"two chars", "ab", false},
		{"single word", "Sword", false},
		{"empty", "", false},
		{"whitespace in path", "Items. Sword", false},
		{"tab in string", "Items.\tSword", false},
		{"trailing dot", "Items.", false},
		{"leading dot", ".Sword", false},
		{"double dot", "Items..Sword", false},
		{"prefix alone", "gd_", false},
		{"suffix alone", "Template", false},
		{"url-ish", "http://example.com/x", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsCandidate(tt.input), "input %q", tt.input)
		})
	}
}

func TestIsDottedPath(t *testing.T) {
	assert.True(t, IsDottedPath("A.one"))
	assert.True(t, IsDottedPath("ns.sub.name"))
	assert.True(t, IsDottedPath("_private.name"))
	assert.False(t, IsDottedPath("plainword"))
	assert.False(t, IsDottedPath("has space.name"))
	assert.False(t, IsDottedPath("-leading.hyphen"))
}

func TestGeneratedNames(t *testing.T) {
	assert.True(t, HasGeneratedPrefix("gd_anything"))
	assert.True(t, HasGeneratedPrefix("tpl_anything"))
	assert.False(t, HasGeneratedPrefix("gda_anything"))
	assert.False(t, HasGeneratedPrefix("gd_"))

	assert.True(t, HasGeneratedSuffix("WeaponGameData"))
	assert.True(t, HasGeneratedSuffix("BaseTemplate"))
	assert.False(t, HasGeneratedSuffix("GameData"))
	assert.False(t, HasGeneratedSuffix("GameDataX"))
}

func TestIsBareToken(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"Items.Sword", true},         // identifier shape
		{"gd_WeaponTable", true},      // generated prefix
		{"3.14", true},                // numeric literal
		{"-12", true},                 // negative numeric literal
		{"1e6", true},                 // exponent form
		{"plain words here", false},   // prose
		{"short", false},              // single word, no shape match
		{"", false},                   // empty needs the explicit marker
		{"quote\"inside", false},      // must be quoted and escaped
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, IsBareToken(tt.input), "input %q", tt.input)
		})
	}
}
