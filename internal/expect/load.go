package expect

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"bennypowers.dev/sitecheck/internal/log"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Load reads and validates a suite file from fsys. YAML (.yaml, .yml) and
// JSON with comments (.json, .jsonc) are supported.
func Load(fsys fs.FS, name string) (*Suite, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, fmt.Errorf("failed to read suite %s: %w", name, err)
	}
	return Decode(name, data)
}

// Decode parses suite data, choosing the format from name's extension
func Decode(name string, data []byte) (*Suite, error) {
	var suite Suite

	switch strings.ToLower(path.Ext(name)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&suite); err != nil && !errors.Is(err, io.EOF) {
			return nil, NewSuiteError(name, err.Error())
		}
	case ".json", ".jsonc":
		dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&suite); err != nil {
			return nil, NewSuiteError(name, err.Error())
		}
	default:
		return nil, NewSuiteError(name, fmt.Sprintf("unsupported extension %q", path.Ext(name)))
	}

	suite.Path = name
	if suite.Name == "" {
		suite.Name = strings.TrimSuffix(path.Base(name), path.Ext(name))
	}
	suite.applyDefaults()
	if err := suite.Validate(); err != nil {
		return nil, err
	}

	log.Debug("loaded suite %q from %s", suite.Name, name)
	return &suite, nil
}

func (s *Suite) applyDefaults() {
	if s.Stylesheet != nil {
		for i := range s.Stylesheet.Media {
			if s.Stylesheet.Media[i].MediaType == "" {
				s.Stylesheet.Media[i].MediaType = DefaultMediaType
			}
		}
	}
	if s.Script != nil {
		for i := range s.Script.Widgets {
			if s.Script.Widgets[i].Constructor == "" {
				s.Script.Widgets[i].Constructor = DefaultConstructor
			}
		}
	}
}

// Validate reports the first structural problem in the suite
func (s *Suite) Validate() error {
	if s.Stylesheet == nil && s.Script == nil {
		return NewSuiteError(s.Path, "suite checks neither a stylesheet nor a script")
	}

	if ss := s.Stylesheet; ss != nil {
		if ss.Path == "" {
			return NewSuiteError(s.Path, "stylesheet.path is required")
		}
		for i, m := range ss.Media {
			if m.MaxWidth <= 0 {
				return NewSuiteError(s.Path, fmt.Sprintf("stylesheet.media[%d].maxWidth must be positive", i))
			}
			for j, r := range m.Rules {
				if strings.TrimSpace(r.Selector) == "" {
					return NewSuiteError(s.Path, fmt.Sprintf("stylesheet.media[%d].rules[%d].selector is required", i, j))
				}
				for k, d := range r.Declarations {
					if strings.TrimSpace(d.Property) == "" {
						return NewSuiteError(s.Path, fmt.Sprintf("stylesheet.media[%d].rules[%d].declarations[%d].property is required", i, j, k))
					}
				}
			}
		}
	}

	if sc := s.Script; sc != nil {
		if sc.Path == "" {
			return NewSuiteError(s.Path, "script.path is required")
		}
		for i, w := range sc.Widgets {
			if strings.TrimSpace(w.Selector) == "" {
				return NewSuiteError(s.Path, fmt.Sprintf("script.widgets[%d].selector is required", i))
			}
			if w.CoOccur && len(w.Breakpoints) < 2 {
				return NewSuiteError(s.Path, fmt.Sprintf("script.widgets[%d].coOccur needs at least two breakpoints", i))
			}
		}
	}

	return nil
}

// Resolve maps an artifact path from the suite to a path in the site root.
// Paths starting with ./ or ../ are relative to the suite file's directory.
func (s *Suite) Resolve(artifact string) (string, error) {
	p := artifact
	if strings.HasPrefix(artifact, "./") || strings.HasPrefix(artifact, "../") {
		p = path.Join(path.Dir(s.Path), artifact)
	}
	p = path.Clean(p)
	if !fs.ValidPath(p) {
		return "", NewSuiteError(s.Path, fmt.Sprintf("artifact path %q escapes the site root", artifact))
	}
	return p, nil
}
