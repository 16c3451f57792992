package solver

import (
	"fmt"
	"image"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/ironsheep/captcha-tools-mcp/internal/corpus"
	"github.com/ironsheep/captcha-tools-mcp/internal/detection"
)

// Classification methods reported in Match.Method.
const (
	MethodExact   = "exact"
	MethodSimilar = "similar"
)

// Match is the classification of one glyph fingerprint.
type Match struct {
	Char   rune    `json:"char"`
	Method string  `json:"method"`
	Score  float64 `json:"score"`
}

// GlyphResult describes one classified glyph of a resolved image.
type GlyphResult struct {
	Index  int     `json:"index"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	Char   string  `json:"char"`
	Method string  `json:"method"`
	Score  float64 `json:"score"`
}

// Result is the detailed outcome of resolving an image.
type Result struct {
	Text   string        `json:"text"`
	Merged bool          `json:"merged"`
	Glyphs []GlyphResult `json:"glyphs"`
}

// Solver resolves CAPTCHA images against a reference store.
type Solver struct {
	store  *corpus.Store
	logger *zap.Logger
}

// Option configures a Solver.
type Option func(*Solver)

// WithLogger sets the logger used for per-call debug output.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Solver) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New returns a Solver backed by store.
func New(store *corpus.Store, opts ...Option) (*Solver, error) {
	if store == nil {
		return nil, fmt.Errorf("solver: nil reference store")
	}

	s := &Solver{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// NewDefault returns a Solver backed by the embedded reference dataset.
// A corrupt dataset surfaces as a *corpus.LoadError.
func NewDefault(opts ...Option) (*Solver, error) {
	store, err := corpus.Default()
	if err != nil {
		return nil, err
	}
	return New(store, opts...)
}

// Store returns the reference store the solver classifies against.
func (s *Solver) Store() *corpus.Store {
	return s.store
}

// Classify resolves a single fingerprint. Exact matches skip scoring
// entirely and report a score of 1.
func (s *Solver) Classify(fingerprint string) Match {
	if ch, ok := s.store.Lookup(fingerprint); ok {
		return Match{Char: ch, Method: MethodExact, Score: 1}
	}

	ch, score := s.store.MostSimilar(fingerprint)
	return Match{Char: ch, Method: MethodSimilar, Score: score}
}

// Glyphs segments img and applies the wrapped-character repair. The boolean
// reports whether a merge happened.
func (s *Solver) Glyphs(img image.Image) ([]*image.Gray, bool) {
	return detection.MergeWrapped(detection.ExtractGlyphs(img))
}

// Resolve returns the lower-case text shown in img. It returns "" when the
// image contains no ink.
func (s *Solver) Resolve(img image.Image) string {
	return s.ResolveDetailed(img).Text
}

// ResolveDetailed is Resolve with per-glyph classification details.
func (s *Solver) ResolveDetailed(img image.Image) Result {
	glyphs, merged := s.Glyphs(img)

	// Caser carries state; one per call keeps Solver safe to share.
	lower := cases.Lower(language.Und)

	result := Result{
		Merged: merged,
		Glyphs: make([]GlyphResult, 0, len(glyphs)),
	}

	var sb strings.Builder
	for i, g := range glyphs {
		m := s.Classify(Fingerprint(g))
		sb.WriteRune(m.Char)

		if m.Method == MethodSimilar {
			s.logger.Debug("no exact match, used nearest reference",
				zap.Int("glyph", i),
				zap.String("char", string(m.Char)),
				zap.Float64("score", m.Score),
			)
		}

		result.Glyphs = append(result.Glyphs, GlyphResult{
			Index:  i,
			Width:  g.Bounds().Dx(),
			Height: g.Bounds().Dy(),
			Char:   lower.String(string(m.Char)),
			Method: m.Method,
			Score:  m.Score,
		})
	}

	result.Text = lower.String(sb.String())

	s.logger.Debug("resolved image",
		zap.String("text", result.Text),
		zap.Int("glyphs", len(glyphs)),
		zap.Bool("merged", merged),
	)

	return result
}
