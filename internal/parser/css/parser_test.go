package css_test

import (
	"testing"

	"bennypowers.dev/sitecheck/internal/parser/css"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, source string) *css.ParseResult {
	t.Helper()
	parser := css.AcquireParser()
	defer css.ReleaseParser(parser)
	result, err := parser.Parse(source)
	require.NoError(t, err, "Parsing should not error")
	require.NotNil(t, result)
	return result
}

func TestParseTopLevelRuleSet(t *testing.T) {
	result := parse(t, `.mil-partner-frame {
  width: 120px;
  opacity: .5;
}`)

	require.Len(t, result.Rules, 1)
	assert.Empty(t, result.MediaBlocks)

	rule := result.Rules[0]
	assert.Equal(t, []string{".mil-partner-frame"}, rule.Selectors)
	require.Len(t, rule.Declarations, 2)
	assert.Equal(t, "width", rule.Declarations[0].Property)
	assert.Equal(t, "120px", rule.Declarations[0].Value)
	assert.False(t, rule.Declarations[0].Important)
	assert.Equal(t, uint32(1), rule.Declarations[0].Range.Start.Line, "declaration should be on line 1 (0-indexed)")
}

func TestParseMediaStatement(t *testing.T) {
	result := parse(t, `.mil-partner-frame {
  width: 120px;
}

@media screen and (max-width: 390px) {
  .mil-partner-frame {
    width: 70px !important;
  }

  .mil-partner-frame img {
    width: 100%;
    margin: 0 300px !important;
  }
}
`)

	require.Len(t, result.Rules, 1, "rules inside @media are not top-level")
	require.Len(t, result.MediaBlocks, 1)

	media := result.MediaBlocks[0]
	assert.Equal(t, "screen and (max-width:390px)", media.Condition)
	assert.Equal(t, []string{"screen"}, media.MediaTypes)
	assert.True(t, media.HasMediaType("screen"))
	assert.Equal(t, uint32(4), media.Range.Start.Line)

	width, ok := media.MaxWidth()
	require.True(t, ok)
	assert.Equal(t, 390, width)

	assert.Contains(t, media.Body, ".mil-partner-frame img")
	require.Len(t, media.Rules, 2)

	frame := css.Effective(media.Declarations(".mil-partner-frame", "width"))
	require.NotNil(t, frame)
	assert.Equal(t, "70px", frame.Value)
	assert.True(t, frame.Important)

	img := css.Effective(media.Declarations(".mil-partner-frame   img", "margin"))
	require.NotNil(t, img)
	assert.Equal(t, "0 300px", img.Value)
	assert.True(t, img.Important)

	imgWidth := css.Effective(media.Declarations(".mil-partner-frame img", "width"))
	require.NotNil(t, imgWidth)
	assert.Equal(t, "100%", imgWidth.Value)
	assert.False(t, imgWidth.Important)
}

func TestParseMinifiedMediaStatement(t *testing.T) {
	result := parse(t, `@media screen and (max-width:390px){.mil-partner-frame{width:70px!important}.mil-partner-frame img{width:100%;margin:0 300px!important}}`)

	require.Len(t, result.MediaBlocks, 1)
	media := result.MediaBlocks[0]

	width, ok := media.MaxWidth()
	require.True(t, ok)
	assert.Equal(t, 390, width)

	frame := css.Effective(media.Declarations(".mil-partner-frame", "width"))
	require.NotNil(t, frame, "last declaration without semicolon should still parse")
	assert.Equal(t, "70px", frame.Value)
	assert.True(t, frame.Important)

	margin := css.Effective(media.Declarations(".mil-partner-frame img", "margin"))
	require.NotNil(t, margin)
	assert.Equal(t, "0 300px", margin.Value)
	assert.True(t, margin.Important)
}

func TestParseSelectorList(t *testing.T) {
	result := parse(t, `h1, .title > span,
  .mil-partner-frame img { color: red; }`)

	require.Len(t, result.Rules, 1)
	rule := result.Rules[0]
	assert.Equal(t, []string{"h1", ".title>span", ".mil-partner-frame img"}, rule.Selectors)
	assert.True(t, rule.Matches(".title > span"))
	assert.True(t, rule.Matches("h1"))
	assert.False(t, rule.Matches(".mil-partner-frame"))
}

func TestParseMultipleMediaBlocks(t *testing.T) {
	result := parse(t, `@media screen and (max-width: 992px) {
  .a { width: 1px; }
}
@media screen and (max-width: 390px) {
  .a { width: 2px; }
}
@media screen and (max-width: 390px) {
  .a { width: 3px; }
}
`)

	require.Len(t, result.MediaBlocks, 3)
	widths := []int{}
	for _, m := range result.MediaBlocks {
		w, ok := m.MaxWidth()
		require.True(t, ok)
		widths = append(widths, w)
	}
	assert.Equal(t, []int{992, 390, 390}, widths, "blocks are kept in source order")
}

func TestEffectiveDeclaration(t *testing.T) {
	result := parse(t, `.a { width: 1px !important; width: 2px; }
.a { width: 3px; }`)

	require.Len(t, result.Rules, 2)

	var decls []*css.Declaration
	for _, r := range result.Rules {
		decls = append(decls, r.Declarations...)
	}
	eff := css.Effective(decls)
	require.NotNil(t, eff)
	assert.Equal(t, "1px", eff.Value, "an important declaration beats later normal ones")

	assert.Nil(t, css.Effective(nil))
}

func TestParseEmptySource(t *testing.T) {
	result := parse(t, "")
	assert.Empty(t, result.Rules)
	assert.Empty(t, result.MediaBlocks)
}

func TestParseImportantSpellings(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"upper case with semicolon", ".a { width: 70px !IMPORTANT; }"},
		{"mixed case without semicolon", ".a { width: 70px !Important }"},
		{"space after bang", ".a { width: 70px ! important; }"},
		{"minified upper case", ".a{WIDTH:70px !IMPORTANT}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parse(t, tt.source)
			require.Len(t, result.Rules, 1)

			decl := css.Effective(result.Rules[0].Declarations)
			require.NotNil(t, decl)
			assert.Equal(t, "width", decl.Property)
			assert.Equal(t, "70px", decl.Value)
			assert.True(t, decl.Important)
		})
	}
}

func TestParseImportantKeepsPositions(t *testing.T) {
	result := parse(t, ".a {\n  width: 1px ! IMPORTANT;\n  height: 2px;\n}")

	require.Len(t, result.Rules, 1)
	require.Len(t, result.Rules[0].Declarations, 2)
	height := result.Rules[0].Declarations[1]
	assert.Equal(t, "height", height.Property)
	assert.Equal(t, uint32(2), height.Range.Start.Line)
	assert.Equal(t, uint32(2), height.Range.Start.Character)
}

func TestParseUnterminatedMedia(t *testing.T) {
	tests := []string{
		"@media screen and (max-width: 390px) {",
		"@media screen and (max-width: 390px) {\n  .mil-partner-frame { width: 70px !important; }\n",
		".a { width: 1px; }\n@media screen and (max-width: 390px) {",
	}

	for _, source := range tests {
		assert.NotPanics(t, func() {
			result := parse(t, source)
			assert.Empty(t, result.MediaBlocks, "an unterminated block is not a balanced block")
		}, "source %q", source)
	}
}

func TestParseNegatedMedia(t *testing.T) {
	result := parse(t, `@media not screen and (max-width: 390px) { .a { width: 1px; } }
@media only screen and (max-width: 390px) { .a { width: 2px; } }`)

	require.Len(t, result.MediaBlocks, 2)

	negated := result.MediaBlocks[0]
	assert.True(t, negated.Negated)
	assert.Equal(t, []string{"screen"}, negated.MediaTypes)
	assert.False(t, negated.HasMediaType("screen"))

	only := result.MediaBlocks[1]
	assert.False(t, only.Negated)
	assert.True(t, only.HasMediaType("screen"))
}
