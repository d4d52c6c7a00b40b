package joincode

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahmadsobohhh/UnityPlatform/pkg/platform/sentinel"
)

type fakeChecker struct {
	inUse func(code string) bool
	calls int
}

func (c *fakeChecker) CodeInUse(_ context.Context, code string) (bool, error) {
	c.calls++
	if c.inUse == nil {
		return false, nil
	}
	return c.inUse(code), nil
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ABC234", Normalize("  abc234 "))
	assert.Equal(t, "ABC234", Normalize("ABC234"))
	assert.Equal(t, "", Normalize("   "))
}

func TestRandom(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := Random()
		require.NoError(t, err)
		assert.Len(t, code, Length)
		for _, r := range code {
			assert.Contains(t, Alphabet, string(r))
		}
	}
}

func TestRandom_AvoidsAmbiguousCharacters(t *testing.T) {
	for _, forbidden := range []string{"0", "O", "1", "I"} {
		assert.NotContains(t, Alphabet, forbidden)
	}
}

func TestGenerate_FirstDrawFree(t *testing.T) {
	checker := &fakeChecker{}
	code, err := New(checker).Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, Length)
	assert.Equal(t, 1, checker.calls)
}

func TestGenerate_RetriesOnCollision(t *testing.T) {
	rejections := 3
	checker := &fakeChecker{}
	checker.inUse = func(string) bool {
		return checker.calls <= rejections
	}

	code, err := New(checker).Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, Length)
	assert.Equal(t, rejections+1, checker.calls)
}

func TestGenerate_ExhaustedCodeSpace(t *testing.T) {
	checker := &fakeChecker{inUse: func(string) bool { return true }}

	_, err := New(checker).Generate(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, sentinel.ErrExhausted)
	assert.Equal(t, maxAttempts, checker.calls)
}

func TestGenerate_CheckerError(t *testing.T) {
	boom := errors.New("registry down")
	g := New(checkerFunc(func(context.Context, string) (bool, error) { return false, boom }))

	_, err := g.Generate(context.Background())
	assert.ErrorIs(t, err, boom)
}

type checkerFunc func(ctx context.Context, code string) (bool, error)

func (f checkerFunc) CodeInUse(ctx context.Context, code string) (bool, error) { return f(ctx, code) }

func TestGenerate_ArbiterRejectionRetries(t *testing.T) {
	checker := &fakeChecker{}
	first := true
	g := New(checker).WithArbiter(arbiterFunc(func(ctx context.Context, code string) (bool, error) {
		if first {
			first = false
			return false, nil
		}
		return true, nil
	}))

	code, err := g.Generate(context.Background())
	require.NoError(t, err)
	assert.Len(t, code, Length)
	assert.Equal(t, 2, checker.calls)
}

type arbiterFunc func(ctx context.Context, code string) (bool, error)

func (f arbiterFunc) Claim(ctx context.Context, code string) (bool, error) { return f(ctx, code) }

func TestGenerate_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(&fakeChecker{}).Generate(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
