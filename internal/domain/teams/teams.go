// Package teams maps club names to three-letter codes.
//
// Names are compared after folding: accents stripped, Unicode case folded and
// inner whitespace collapsed. When no alias matches exactly, the closest alias
// within a Levenshtein distance budget is used. Unknown names pass through.
package teams

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"

	"github.com/osvo/club-world-cup-tracker/internal/domain/model"
)

// ErrInvalidAliases is returned when an alias file cannot be used.
var ErrInvalidAliases = errors.New("invalid team aliases")

// DefaultMaxDistance is the fuzzy-match budget used by New.
const DefaultMaxDistance = 2

var validate = validator.New()

// Abbreviator resolves team names to codes. It is safe for concurrent use
// once built.
type Abbreviator struct {
	aliases     map[string]string // folded name -> code
	codes       map[string]struct{}
	maxDistance int
}

// Option configures an Abbreviator.
type Option func(*Abbreviator)

// WithAliases adds or overrides aliases on top of the built-in table.
func WithAliases(aliases map[string]string) Option {
	return func(a *Abbreviator) {
		for name, code := range aliases {
			a.add(name, code)
		}
	}
}

// WithMaxDistance sets the Levenshtein budget for fuzzy matches. Zero
// disables fuzzy matching.
func WithMaxDistance(d int) Option {
	return func(a *Abbreviator) {
		if d >= 0 {
			a.maxDistance = d
		}
	}
}

// New builds an Abbreviator seeded with the built-in alias table.
func New(opts ...Option) *Abbreviator {
	a := &Abbreviator{
		aliases:     make(map[string]string, len(builtin)),
		codes:       make(map[string]struct{}),
		maxDistance: DefaultMaxDistance,
	}
	for name, code := range builtin {
		a.add(name, code)
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Abbreviator) add(name, code string) {
	code = strings.ToUpper(strings.TrimSpace(code))
	key := Fold(name)
	if key == "" || code == "" {
		return
	}
	a.aliases[key] = code
	a.codes[code] = struct{}{}
}

// Abbreviate returns the code for name and whether one was found.
// Unknown names are returned trimmed but otherwise unchanged.
func (a *Abbreviator) Abbreviate(name string) (string, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return name, false
	}
	if _, ok := a.codes[strings.ToUpper(name)]; ok && len(name) == 3 {
		return strings.ToUpper(name), true
	}

	key := Fold(name)
	if code, ok := a.aliases[key]; ok {
		return code, true
	}
	if code, ok := a.nearest(key); ok {
		return code, true
	}
	return name, false
}

// nearest finds the single closest alias within budget. Only aliases with
// the same number of words are candidates. Two different codes at the same
// best distance count as no match.
func (a *Abbreviator) nearest(key string) (string, bool) {
	if a.maxDistance == 0 {
		return "", false
	}
	words := len(strings.Fields(key))
	best, bestCode, ambiguous := a.maxDistance+1, "", false
	for alias, code := range a.aliases {
		if len(strings.Fields(alias)) != words {
			continue
		}
		d := levenshtein.ComputeDistance(key, alias)
		switch {
		case d < best:
			best, bestCode, ambiguous = d, code, false
		case d == best && code != bestCode:
			ambiguous = true
		}
	}
	if bestCode == "" || ambiguous {
		return "", false
	}
	return bestCode, true
}

// Table returns a copy of t with the home and away columns abbreviated.
// Unknown names are kept as they are.
func (a *Abbreviator) Table(t model.Table) model.Table {
	out := model.Table{Columns: t.Columns, Rows: make([]map[string]string, len(t.Rows))}
	var cols []string
	if len(t.Columns) > 2 {
		cols = t.Columns[1:3]
	}
	for i, row := range t.Rows {
		cp := make(map[string]string, len(row))
		for k, v := range row {
			cp[k] = v
		}
		for _, c := range cols {
			if v, ok := cp[c]; ok {
				cp[c], _ = a.Abbreviate(v)
			}
		}
		out.Rows[i] = cp
	}
	return out
}

// Fold normalizes a name for comparison.
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		stripped = s
	}
	return strings.Join(strings.Fields(cases.Fold().String(stripped)), " ")
}

type aliasFile struct {
	Aliases map[string]string `yaml:"aliases" validate:"required,dive,keys,required,endkeys,required,alpha,len=3"`
}

// LoadAliases reads alias overrides from YAML of the form:
//
//	aliases:
//	  "Al Hilal SFC": HIL
func LoadAliases(r io.Reader) (map[string]string, error) {
	var f aliasFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAliases, err)
	}
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAliases, err)
	}
	return f.Aliases, nil
}
