// Package site holds the static site artifacts checked by sitecheck and the
// suites that describe them.
package site

import "embed"

// FS holds the stylesheet, the script entry point and the __tests__ suites
//
//go:embed css js all:__tests__
var FS embed.FS
