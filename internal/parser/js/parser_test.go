package js_test

import (
	"testing"

	"bennypowers.dev/sitecheck/internal/parser/js"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseWidgets(t *testing.T, source string) []*js.WidgetCall {
	t.Helper()
	parser := js.AcquireParser()
	defer js.ReleaseParser(parser)
	calls, err := parser.ParseWidgets(source, "Swiper")
	require.NoError(t, err)
	return calls
}

func TestParseWidgetsFindsConfiguration(t *testing.T) {
	calls := parseWidgets(t, `$(function () {
  // partners
  var partners = new Swiper('.mil-infinite-show', {
    slidesPerView: 4,
    spaceBetween: 30,
    loop: true,
    speed: 5000,
    autoplay: {
      delay: 0,
    },
    breakpoints: {
      660: {
        slidesPerView: 3,
      },
      390: {
        slidesPerView: 2,
      },
    },
  });
});`)

	require.Len(t, calls, 1)
	call := calls[0]
	assert.Equal(t, "Swiper", call.Constructor)
	assert.Equal(t, ".mil-infinite-show", call.Selector)
	assert.Equal(t, uint32(2), call.Range.Start.Line)
	assert.Contains(t, call.Body, "breakpoints")
	require.NotNil(t, call.Config)

	perView, ok := call.Config.Number("slidesPerView")
	require.True(t, ok)
	assert.Equal(t, float64(4), perView)

	loop, ok := call.Config.Get("loop")
	require.True(t, ok)
	assert.Equal(t, js.BoolValue, loop.Kind)
	assert.True(t, loop.Bool)

	breakpoints, ok := call.Config.Nested("breakpoints")
	require.True(t, ok)

	at660, ok := breakpoints.Nested("660")
	require.True(t, ok)
	n, ok := at660.Number("slidesPerView")
	require.True(t, ok)
	assert.Equal(t, float64(3), n)

	at390, ok := breakpoints.Nested("390")
	require.True(t, ok)
	n, ok = at390.Number("slidesPerView")
	require.True(t, ok)
	assert.Equal(t, float64(2), n)
}

func TestParseWidgetsMinified(t *testing.T) {
	calls := parseWidgets(t, `new Swiper('.mil-infinite-show',{slidesPerView:4,breakpoints:{660:{slidesPerView:3},390:{slidesPerView:2}}})`)

	require.Len(t, calls, 1)
	breakpoints, ok := calls[0].Config.Nested("breakpoints")
	require.True(t, ok)
	assert.Equal(t, []string{"660", "390"}, keys(breakpoints))
}

func TestParseWidgetsSourceOrderAndFiltering(t *testing.T) {
	calls := parseWidgets(t, `
const a = new Swiper(".mil-reviews-slider", { slidesPerView: 1 });
const b = new Carousel('.mil-infinite-show', { slidesPerView: 9 });
const c = new Swiper('.mil-infinite-show', { slidesPerView: 4 });
const d = new Swiper('.mil-infinite-show', options);
`)

	require.Len(t, calls, 3, "only Swiper constructions are returned")
	assert.Equal(t, ".mil-reviews-slider", calls[0].Selector)
	assert.Equal(t, ".mil-infinite-show", calls[1].Selector)
	assert.Equal(t, ".mil-infinite-show", calls[2].Selector)
	assert.Nil(t, calls[2].Config, "identifier arguments carry no literal configuration")
	assert.Empty(t, calls[2].Body)
}

func TestParseWidgetsKeyForms(t *testing.T) {
	calls := parseWidgets(t, `new Swiper('.x', {
  'slidesPerView': 4,
  breakpoints: { '660': { slidesPerView: 3 }, 390.0: { slidesPerView: -1 } },
  slidesPerView: 5,
});`)

	require.Len(t, calls, 1)
	cfg := calls[0].Config

	perView, ok := cfg.Number("slidesPerView")
	require.True(t, ok)
	assert.Equal(t, float64(5), perView, "the last duplicate key wins")

	breakpoints, ok := cfg.Nested("breakpoints")
	require.True(t, ok)
	assert.Equal(t, []string{"660", "390"}, keys(breakpoints))

	at390, ok := breakpoints.Nested("390")
	require.True(t, ok)
	n, ok := at390.Number("slidesPerView")
	require.True(t, ok)
	assert.Equal(t, float64(-1), n)
}

func TestParseWidgetsNone(t *testing.T) {
	assert.Empty(t, parseWidgets(t, `console.log("no sliders here");`))
	assert.Empty(t, parseWidgets(t, ``))
}

func TestObjectAccessorsOnMissing(t *testing.T) {
	var obj *js.Object
	_, ok := obj.Get("slidesPerView")
	assert.False(t, ok)

	calls := parseWidgets(t, `new Swiper('.x', { slidesPerView: 'auto', breakpoints: 3 })`)
	require.Len(t, calls, 1)

	_, ok = calls[0].Config.Number("slidesPerView")
	assert.False(t, ok, "string values are not numbers")
	v, _ := calls[0].Config.Get("slidesPerView")
	assert.Equal(t, js.StringValue, v.Kind)
	assert.Equal(t, "auto", v.Text)

	_, ok = calls[0].Config.Nested("breakpoints")
	assert.False(t, ok, "numbers are not objects")
}

func keys(o *js.Object) []string {
	out := make([]string, 0, len(o.Properties))
	for _, p := range o.Properties {
		out = append(out, p.Key)
	}
	return out
}

func TestParseWidgetsTruncatedSource(t *testing.T) {
	tests := []string{
		"new Swiper('.mil-infinite-show', {",
		"new Swiper('.mil-infinite-show', { slidesPerView: 4",
		"new Swiper('.mil-infinite-show', { breakpoints: { 660: {",
	}

	for _, source := range tests {
		assert.NotPanics(t, func() {
			parser := js.AcquireParser()
			defer js.ReleaseParser(parser)
			_, err := parser.ParseWidgets(source, "Swiper")
			assert.NoError(t, err)
		}, "source %q", source)
	}
}
