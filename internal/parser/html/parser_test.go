package html_test

import (
	"testing"

	"bennypowers.dev/sitecheck/internal/parser/html"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegions(t *testing.T) {
	source := `<!DOCTYPE html>
<html>
<head>
  <style>
@media screen and (max-width: 390px) {
  .mil-partner-frame { width: 70px !important; }
}
  </style>
</head>
<body>
  <div class="mil-infinite-show"></div>
  <script>new Swiper('.mil-infinite-show', { slidesPerView: 4 });</script>
</body>
</html>`

	parser := html.AcquireParser()
	defer html.ReleaseParser(parser)

	regions := parser.ParseRegions(source)
	require.Len(t, regions, 2)

	styles := html.Regions(regions, html.StyleTag)
	require.Len(t, styles, 1)
	assert.Contains(t, styles[0].Content, "max-width: 390px")
	assert.Equal(t, uint(3), styles[0].StartLine)

	scripts := html.Regions(regions, html.ScriptTag)
	require.Len(t, scripts, 1)
	assert.Equal(t, "new Swiper('.mil-infinite-show', { slidesPerView: 4 });", scripts[0].Content)
	assert.Equal(t, uint(11), scripts[0].StartLine)
	assert.Equal(t, uint(10), scripts[0].StartCol)
}

func TestParseRegionsWithoutEmbeddedSource(t *testing.T) {
	parser := html.AcquireParser()
	defer html.ReleaseParser(parser)

	assert.Empty(t, parser.ParseRegions(`<p>plain</p>`))
}
