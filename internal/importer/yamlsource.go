package importer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/z26games/wof/internal/game/phrase"
)

var _ Source = (*YAMLSource)(nil)

// YAMLSource implements Source for single-file YAML phrase packs.
type YAMLSource struct{}

// NewYAMLSource constructs a YAMLSource.
func NewYAMLSource() *YAMLSource { return &YAMLSource{} }

// Load reads the pack at path, normalizes every phrase, and validates that
// the result is playable.
//
// Precondition: path must name a readable YAML file.
// Postcondition: returns a Pack whose phrases are normalized (uppercased,
// single-spaced) and contain at least one letter each, or a non-nil error.
func (s *YAMLSource) Load(path string) (*Pack, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading pack %s: %w", path, err)
	}

	var pack Pack
	if err := yaml.Unmarshal(data, &pack); err != nil {
		return nil, fmt.Errorf("parsing pack %s: %w", path, err)
	}

	if len(pack.Categories) == 0 {
		return nil, fmt.Errorf("pack %s defines no categories", path)
	}

	normalized := make(map[string][]string, len(pack.Categories))
	for category, texts := range pack.Categories {
		name := strings.TrimSpace(category)
		if name == "" {
			return nil, fmt.Errorf("pack %s has a category with an empty name", path)
		}
		if len(texts) == 0 {
			return nil, fmt.Errorf("category %q in pack %s has no phrases", name, path)
		}
		out := make([]string, 0, len(texts))
		for _, text := range texts {
			norm := phrase.Normalize(text)
			if norm == "" {
				return nil, fmt.Errorf("category %q in pack %s has an empty phrase", name, path)
			}
			if len(phrase.Letters(norm)) == 0 {
				return nil, fmt.Errorf("phrase %q in pack %s has no guessable letters", norm, path)
			}
			out = append(out, norm)
		}
		normalized[name] = out
	}

	return &Pack{Categories: normalized}, nil
}
