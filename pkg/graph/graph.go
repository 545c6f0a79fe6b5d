/*
Package graph loads and serves the immutable question graph.

The configuration is a single JSON document mapping section names to ordered
question records. It is parsed once at process start into resolved
domain.Question values; the stringly typed next_logic field is decoded into
its tagged form here so the routing engine never re-sniffs strings at
transition time. The loaded graph is read-only and safely shared across all
sessions without synchronization.
*/
package graph

import (
	"fmt"
	"os"
	"sort"

	"github.com/epharma/triage/pkg/domain"
)

// DefaultCanonicalLanguage is the language all answers are stored in.
const DefaultCanonicalLanguage = "en"

// Graph is the immutable catalog of sections and questions.
type Graph struct {
	canonical string
	sections  map[string][]*domain.Question
	index     map[string]map[string]int
	warnings  []string
}

// Option configures graph loading.
type Option func(*Graph)

// WithCanonicalLanguage overrides the canonical language code.
func WithCanonicalLanguage(lang string) Option {
	return func(g *Graph) {
		g.canonical = lang
	}
}

// Load reads and parses the configuration file. Malformed configuration is
// fatal; the process cannot start without a valid graph.
func Load(path string, opts ...Option) (*Graph, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read question graph %s: %w", path, err)
	}
	g, err := Parse(raw, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse question graph %s: %w", path, err)
	}
	return g, nil
}

// Canonical returns the canonical language code.
func (g *Graph) Canonical() string {
	return g.canonical
}

// Sections returns all section names in deterministic order.
func (g *Graph) Sections() []string {
	names := make([]string, 0, len(g.sections))
	for name := range g.sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HasSection reports whether the named section exists.
func (g *Graph) HasSection(name string) bool {
	_, ok := g.sections[name]
	return ok
}

// Section returns the ordered questions of the named section.
func (g *Graph) Section(name string) ([]*domain.Question, error) {
	qs, ok := g.sections[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSectionNotFound, name)
	}
	return qs, nil
}

// Question returns the question with the given id within a section.
func (g *Graph) Question(section, id string) (*domain.Question, error) {
	idx, ok := g.index[section]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSectionNotFound, section)
	}
	i, ok := idx[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", domain.ErrQuestionNotFound, section, id)
	}
	return g.sections[section][i], nil
}

// First returns the first question of the named section.
func (g *Graph) First(section string) (*domain.Question, error) {
	qs, err := g.Section(section)
	if err != nil {
		return nil, err
	}
	if len(qs) == 0 {
		return nil, fmt.Errorf("%w: section %s is empty", domain.ErrQuestionNotFound, section)
	}
	return qs[0], nil
}

// IndexOf returns the position of a question within its section, or -1.
// Sequential fallback depends on this ordering.
func (g *Graph) IndexOf(section, id string) int {
	idx, ok := g.index[section]
	if !ok {
		return -1
	}
	i, ok := idx[id]
	if !ok {
		return -1
	}
	return i
}

// Warnings returns the soft validation findings collected at load time
// (dangling literal jumps, option array mismatches). These are tolerated at
// runtime by the sequential fallback but worth surfacing at startup.
func (g *Graph) Warnings() []string {
	return g.warnings
}
