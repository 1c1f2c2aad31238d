package lobby

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
)

const codeLetters = "abcdefghijklmnopqrstuvwxyz"

// CodeGenerator mints codes in the format "IIII-xxxx-xxxx", where IIII is a
// per-generator rolling counter (0000-9999, wrapping) and each group of x is
// four random lowercase letters. It is a plain value, not a package-level
// singleton; a Replica owns one instance.
type CodeGenerator struct {
	mu  sync.Mutex
	cnt int
}

// NewCodeGenerator returns a ready-to-use generator starting its counter at 0.
func NewCodeGenerator() *CodeGenerator {
	return &CodeGenerator{}
}

// Next advances the counter and returns the new code. The first code minted
// carries counter value 0001, matching the original's GetNewCode.
func (g *CodeGenerator) Next() string {
	g.mu.Lock()
	if g.cnt < 9999 {
		g.cnt++
	} else {
		g.cnt = 0
	}
	n := g.cnt
	g.mu.Unlock()

	return fmt.Sprintf("%04d-%s-%s", n, randomLetters(4), randomLetters(4))
}

func randomLetters(n int) string {
	var b strings.Builder
	b.Grow(n)
	for i := 0; i < n; i++ {
		b.WriteByte(codeLetters[rand.IntN(len(codeLetters))])
	}
	return b.String()
}
