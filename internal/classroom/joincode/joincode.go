// Package joincode generates and arbitrates classroom join codes.
package joincode

import (
	"context"
	"crypto/rand"
	"fmt"
	"strings"

	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/sentinel"
)

// Alphabet excludes the characters most often misread in print: 0, O, 1, I.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// Length of every generated code.
const Length = 6

// maxAttempts bounds the collision-retry loop so a saturated code space
// fails instead of spinning forever.
const maxAttempts = 64

// Normalize prepares user-typed codes for lookup: trim and uppercase.
func Normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Random draws one code uniformly from the alphabet.
func Random() (string, error) {
	buf := make([]byte, Length)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = Alphabet[int(b)%len(Alphabet)]
	}
	return string(buf), nil
}

// Checker reports whether a code already identifies a classroom.
type Checker interface {
	CodeInUse(ctx context.Context, code string) (bool, error)
}

// Arbiter serializes code claims across concurrent creators, closing the
// window between the registry check and the registry write. Optional: without
// one, generation degrades to plain check-then-write.
type Arbiter interface {
	Claim(ctx context.Context, code string) (bool, error)
}

// Generator allocates unused join codes by rejection sampling.
type Generator struct {
	checker Checker
	arbiter Arbiter
}

func New(checker Checker) *Generator {
	return &Generator{checker: checker}
}

// WithArbiter returns a copy of the generator that also claims each candidate
// code before handing it out.
func (g *Generator) WithArbiter(arbiter Arbiter) *Generator {
	return &Generator{checker: g.checker, arbiter: arbiter}
}

// Generate draws codes until one is unused (and claimed, when an arbiter is
// configured). Fails with sentinel.ErrExhausted after maxAttempts rejections.
func (g *Generator) Generate(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		code, err := Random()
		if err != nil {
			return "", err
		}

		inUse, err := g.checker.CodeInUse(ctx, code)
		if err != nil {
			return "", err
		}
		if inUse {
			continue
		}

		if g.arbiter != nil {
			claimed, err := g.arbiter.Claim(ctx, code)
			if err != nil {
				return "", err
			}
			if !claimed {
				continue
			}
		}

		return code, nil
	}
	return "", fmt.Errorf("no unused join code after %d attempts: %w", maxAttempts, sentinel.ErrExhausted)
}
