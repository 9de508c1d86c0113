package quality_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sevigo/lltranslate/quality"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name        string
		translation string
		original    string
		want        float64
	}{
		{name: "empty translation", translation: "", original: "hello", want: 0},
		{name: "thai of similar length", translation: "สวัสดีครับ", original: "Hello sir!", want: 1},
		{name: "untranslated copy", translation: "Hello sir!", original: "Hello sir!", want: 0.5},
		{name: "thai but twice as long", translation: strings.Repeat("ก", 20), original: strings.Repeat("a", 10), want: 0.5},
		{name: "half thai", translation: "กขคงabcd", original: "abcdefgh", want: 1},
		{name: "empty original", translation: "กขค", original: "", want: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, quality.Score(tt.translation, tt.original), 1e-9)
		})
	}
}

func TestLengthScore(t *testing.T) {
	assert.InDelta(t, 1.0, quality.LengthScore(strings.Repeat("x", 8), strings.Repeat("y", 10)), 1e-9)
	assert.InDelta(t, 1.0, quality.LengthScore(strings.Repeat("x", 12), strings.Repeat("y", 10)), 1e-9)
	assert.InDelta(t, 0.5, quality.LengthScore(strings.Repeat("x", 5), strings.Repeat("y", 10)), 1e-9)
	assert.InDelta(t, 0.0, quality.LengthScore(strings.Repeat("x", 30), strings.Repeat("y", 10)), 1e-9)
}

func TestThaiRatio(t *testing.T) {
	assert.Zero(t, quality.ThaiRatio(""))
	assert.InDelta(t, 0.5, quality.ThaiRatio("กa"), 1e-9)
	assert.True(t, quality.IsThai('๙'))
	assert.False(t, quality.IsThai('a'))
}

func TestMarkdownStructure(t *testing.T) {
	src := "# Chapter 1\n\nIntro paragraph.\n\n## Scene\n\n- one\n- two\n\n```\ncode\n```\n"

	s := quality.MarkdownStructure(src)
	assert.Equal(t, []int{1, 2}, s.Headings)
	assert.Equal(t, 2, s.ListItems)
	assert.Equal(t, 1, s.CodeBlocks)
	assert.Equal(t, 1, s.Paragraphs)
}

func TestStructurePreserved(t *testing.T) {
	original := "# Chapter 1\n\nThe elder spoke.\n\n- Qi\n- Dantian\n"

	assert.True(t, quality.StructurePreserved(original, "# บทที่ 1\n\nผู้อาวุโสกล่าว\n\n- ชี่\n- ต้านเถียน\n"))
	assert.False(t, quality.StructurePreserved(original, "บทที่ 1\n\nผู้อาวุโสกล่าว\n\n- ชี่\n- ต้านเถียน\n"))
	assert.False(t, quality.StructurePreserved(original, "# บทที่ 1\n\nผู้อาวุโสกล่าว ชี่ ต้านเถียน\n"))
}
