package expect_test

import (
	"errors"
	"testing"
	"testing/fstest"

	"bennypowers.dev/sitecheck/internal/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const yamlSuite = `name: partner slider
stylesheet:
  path: ../css/style.css
  media:
    - maxWidth: 390
      rules:
        - selector: .mil-partner-frame
          declarations:
            - property: width
              value: 70px !important
script:
  path: js/main.js
  widgets:
    - selector: .mil-infinite-show
      defaults:
        slidesPerView: 4
      breakpoints:
        390:
          slidesPerView: 2
        660:
          slidesPerView: 3
      coOccur: true
`

const jsoncSuite = `{
  // same expectations, JSON flavored
  "stylesheet": {
    "path": "css/style.css",
    "media": [{ "maxWidth": 390, "mediaType": "*", "unique": true, "rules": [] }]
  },
  "script": {
    "path": "js/main.js",
    "widgets": [{
      "constructor": "Carousel",
      "selector": ".mil-infinite-show",
      "breakpoints": { "660": { "slidesPerView": 3 } },
    }]
  }
}`

func TestDecodeYAML(t *testing.T) {
	suite, err := expect.Decode("__tests__/slider.test.yaml", []byte(yamlSuite))
	require.NoError(t, err)

	assert.Equal(t, "partner slider", suite.Name)
	assert.Equal(t, "__tests__/slider.test.yaml", suite.Path)

	require.NotNil(t, suite.Stylesheet)
	require.Len(t, suite.Stylesheet.Media, 1)
	media := suite.Stylesheet.Media[0]
	assert.Equal(t, 390, media.MaxWidth)
	assert.Equal(t, expect.DefaultMediaType, media.MediaType, "media type defaults to screen")
	assert.Equal(t, "70px !important", media.Rules[0].Declarations[0].Value)

	require.NotNil(t, suite.Script)
	widget := suite.Script.Widgets[0]
	assert.Equal(t, expect.DefaultConstructor, widget.Constructor)
	assert.Equal(t, map[string]float64{"slidesPerView": 4}, widget.Defaults)
	assert.Equal(t, []int{660, 390}, widget.Thresholds(), "thresholds are ordered widest first")
	assert.True(t, widget.CoOccur)
}

func TestDecodeJSONC(t *testing.T) {
	suite, err := expect.Decode("__tests__/slider.test.jsonc", []byte(jsoncSuite))
	require.NoError(t, err)

	assert.Equal(t, "slider.test", suite.Name, "name defaults to the file name")
	assert.Equal(t, expect.AnyMediaType, suite.Stylesheet.Media[0].MediaType)
	assert.True(t, suite.Stylesheet.Media[0].Unique)
	assert.Equal(t, "Carousel", suite.Script.Widgets[0].Constructor)
	assert.Equal(t, map[int]map[string]float64{660: {"slidesPerView": 3}}, suite.Script.Widgets[0].Breakpoints)
}

func TestDecodeRejectsInvalidSuites(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
	}{
		{"empty", "a.test.yaml", ""},
		{"unknown field", "a.test.yaml", "stylesheet:\n  path: a.css\n  colour: red\n"},
		{"missing stylesheet path", "a.test.yaml", "stylesheet:\n  media: []\n"},
		{"non-positive width", "a.test.yaml", "stylesheet:\n  path: a.css\n  media:\n    - maxWidth: 0\n"},
		{"missing selector", "a.test.yaml", "stylesheet:\n  path: a.css\n  media:\n    - maxWidth: 390\n      rules:\n        - declarations: []\n"},
		{"missing property", "a.test.yaml", "stylesheet:\n  path: a.css\n  media:\n    - maxWidth: 390\n      rules:\n        - selector: .a\n          declarations:\n            - value: 1px\n"},
		{"missing widget selector", "a.test.json", `{"script": {"path": "a.js", "widgets": [{}]}}`},
		{"coOccur with one breakpoint", "a.test.json", `{"script": {"path": "a.js", "widgets": [{"selector": ".a", "coOccur": true, "breakpoints": {"390": {"slidesPerView": 2}}}]}}`},
		{"malformed json", "a.test.json", `{"script": `},
		{"unsupported extension", "a.test.toml", `name = "x"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := expect.Decode(tt.file, []byte(tt.data))
			require.Error(t, err)
			assert.True(t, errors.Is(err, expect.ErrInvalidSuite), "error should wrap ErrInvalidSuite: %v", err)

			var suiteErr *expect.SuiteError
			require.ErrorAs(t, err, &suiteErr)
			assert.Equal(t, tt.file, suiteErr.Path)
		})
	}
}

func TestLoadFromFS(t *testing.T) {
	fsys := fstest.MapFS{
		"__tests__/slider.test.yaml": {Data: []byte(yamlSuite)},
	}

	suite, err := expect.Load(fsys, "__tests__/slider.test.yaml")
	require.NoError(t, err)
	assert.Equal(t, "partner slider", suite.Name)

	_, err = expect.Load(fsys, "__tests__/missing.test.yaml")
	assert.Error(t, err)
}

func TestResolve(t *testing.T) {
	suite := &expect.Suite{Path: "__tests__/slider.test.yaml"}

	tests := []struct {
		artifact string
		want     string
	}{
		{"css/style.css", "css/style.css"},
		{"../css/style.css", "css/style.css"},
		{"./fixtures/style.css", "__tests__/fixtures/style.css"},
	}
	for _, tt := range tests {
		t.Run(tt.artifact, func(t *testing.T) {
			got, err := suite.Resolve(tt.artifact)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := suite.Resolve("../../outside.css")
	assert.ErrorIs(t, err, expect.ErrInvalidSuite)
}
