// Package names generates the anonymous display names assigned to chat users.
package names

import (
	"embed"
	"math/rand/v2"
	"strings"
	"sync"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed words/*.txt
var wordsFS embed.FS

var (
	adjectives = mustLoad("words/adjectives.txt")
	colors     = mustLoad("words/colors.txt")
	animals    = mustLoad("words/animals.txt")
)

func mustLoad(path string) []string {
	data, err := wordsFS.ReadFile(path)
	if err != nil {
		panic("names: missing word list " + path)
	}
	var words []string
	for _, line := range strings.Split(string(data), "\n") {
		if w := strings.TrimSpace(line); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// Generator produces display names of the form "Adjective Color Animal".
// Names are not guaranteed to be unique.
type Generator struct {
	mu    sync.Mutex
	rng   *rand.Rand
	title cases.Caser
}

// NewGenerator returns a generator seeded from the runtime's random source.
func NewGenerator() *Generator {
	return NewGeneratorWithRand(rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
}

// NewGeneratorWithRand returns a generator using rng, which makes output
// reproducible in tests.
func NewGeneratorWithRand(rng *rand.Rand) *Generator {
	return &Generator{
		rng:   rng,
		title: cases.Title(language.English),
	}
}

// Generate returns a new random display name.
func (g *Generator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	parts := []string{
		adjectives[g.rng.IntN(len(adjectives))],
		colors[g.rng.IntN(len(colors))],
		animals[g.rng.IntN(len(animals))],
	}
	return g.title.String(strings.Join(parts, " "))
}
