package casefile

import (
	"embed"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"strings"

	"github.com/myrjola/murderai/internal/errors"
)

//go:embed cases/*.yaml
var embeddedCases embed.FS

type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

var ErrUnknownDifficulty = errors.NewSentinel("unknown difficulty")

// caseFiles is the fixed difficulty to document mapping.
var caseFiles = map[Difficulty]string{
	Easy:   "coffee_shop.yaml",
	Medium: "silicon_valley.yaml",
	Hard:   "art_gallery.yaml",
}

// ParseDifficulty accepts easy, medium or hard in any case. The empty string means medium.
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if d == "" {
		return Medium, nil
	}
	if _, ok := caseFiles[d]; !ok {
		return "", errors.Wrap(ErrUnknownDifficulty, "parse difficulty", slog.String("difficulty", s))
	}
	return d, nil
}

// Library holds one validated case per difficulty.
type Library struct {
	cases map[Difficulty]*Case
}

// Embedded loads the cases shipped with the binary.
func Embedded() (*Library, error) {
	sub, err := fs.Sub(embeddedCases, "cases")
	if err != nil {
		return nil, errors.Wrap(err, "open embedded cases")
	}
	return Load(sub)
}

// Open loads the cases from dir, or the embedded ones when dir is empty.
func Open(dir string) (*Library, error) {
	if dir == "" {
		return Embedded()
	}
	return Load(os.DirFS(dir))
}

// Load reads the three case documents from the root of fsys.
func Load(fsys fs.FS) (*Library, error) {
	lib := Library{cases: make(map[Difficulty]*Case, len(caseFiles))}
	for difficulty, name := range caseFiles {
		c, err := LoadFile(fsys, name)
		if err != nil {
			return nil, errors.Wrap(err, "load case", slog.String("difficulty", string(difficulty)))
		}
		lib.cases[difficulty] = c
	}
	return &lib, nil
}

// LoadFile parses one case document. The case key is the file stem.
func LoadFile(fsys fs.FS, name string) (*Case, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return nil, errors.Wrap(err, "read case file", slog.String("file", name))
	}
	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrap(err, "parse case file", slog.String("file", name))
	}
	c.Key = strings.TrimSuffix(path.Base(name), path.Ext(name))
	return c, nil
}

// ValidateAll parses every *.yaml file in fsys and returns the failures keyed by file name.
func ValidateAll(fsys fs.FS) (map[string]error, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, errors.Wrap(err, "glob case files")
	}
	failures := map[string]error{}
	for _, name := range names {
		if _, err = LoadFile(fsys, name); err != nil {
			failures[name] = err
		}
	}
	return failures, nil
}

// Case returns the document for a difficulty tier.
func (l *Library) Case(d Difficulty) *Case {
	return l.cases[d]
}

// All returns the cases ordered easy, medium, hard.
func (l *Library) All() []*Case {
	return []*Case{l.cases[Easy], l.cases[Medium], l.cases[Hard]}
}

// EmbeddedFS exposes the shipped case documents, e.g. for validation tooling.
func EmbeddedFS() fs.FS {
	sub, _ := fs.Sub(embeddedCases, "cases")
	return sub
}
