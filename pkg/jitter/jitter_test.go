package jitter

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDuration_Range(t *testing.T) {
	base := time.Second

	for i := 0; i < 100; i++ {
		d := Duration(base, DefaultJitter)
		assert.GreaterOrEqual(t, d, base)
		assert.LessOrEqual(t, d, base+base/2)
	}
}

func TestDurationWithSeed_Deterministic(t *testing.T) {
	d1 := DurationWithSeed(time.Second, DefaultJitter, rand.New(rand.NewSource(42)))
	d2 := DurationWithSeed(time.Second, DefaultJitter, rand.New(rand.NewSource(42)))

	assert.Equal(t, d1, d2)
}

func TestExponentialBackoff_Growth(t *testing.T) {
	base := time.Second
	max := 30 * time.Second

	// без джиттера результат детерминирован
	assert.Equal(t, 1*time.Second, ExponentialBackoff(base, max, 0, 0))
	assert.Equal(t, 2*time.Second, ExponentialBackoff(base, max, 1, 0))
	assert.Equal(t, 4*time.Second, ExponentialBackoff(base, max, 2, 0))
	assert.Equal(t, 8*time.Second, ExponentialBackoff(base, max, 3, 0))
}

func TestExponentialBackoff_CappedAtMax(t *testing.T) {
	base := time.Second
	max := 5 * time.Second

	assert.Equal(t, max, ExponentialBackoff(base, max, 10, 0))
}
