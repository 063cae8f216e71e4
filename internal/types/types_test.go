package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateClone(t *testing.T) {
	c := NewCandidate([]int{32, 224})
	c.SetFitness(-4)

	clone := c.Clone()
	clone.Genes[0] = 64

	assert.Equal(t, []int{32, 224}, c.Genes)
	fitness, valid := clone.Fitness()
	assert.True(t, valid)
	assert.Equal(t, -4.0, fitness)

	clone.Invalidate()
	_, valid = clone.Fitness()
	assert.False(t, valid)
	_, valid = c.Fitness()
	assert.True(t, valid)
}

func TestErrorsMatchSentinels(t *testing.T) {
	err := fmt.Errorf("failed to load: %w", NewConfigurationError("height", "must be positive, got %d", 0))
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.False(t, errors.Is(err, ErrShapeMismatch))
	assert.Contains(t, err.Error(), "height: must be positive, got 0")

	var shapeErr error = &ShapeMismatchError{Got: 3, Want: 8}
	assert.True(t, errors.Is(shapeErr, ErrShapeMismatch))
	assert.Contains(t, shapeErr.Error(), "3 genes")
}
