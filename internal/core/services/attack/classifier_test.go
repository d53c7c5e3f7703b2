package attack

import (
	"testing"

	"github.com/ssmendon/sdnprobe/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	assert.Equal(t, domain.CategoryNoTimeout, Classify(0, 0))
	assert.Equal(t, domain.CategoryHardOnly, Classify(30, 0))
	assert.Equal(t, domain.CategoryIdleOnly, Classify(0, 10))
	assert.Equal(t, domain.CategoryBoth, Classify(30, 10))
}

func TestClassify_Totality(t *testing.T) {
	for a := 0; a < 5; a++ {
		for b := 0; b < 5; b++ {
			cat := Classify(a, b)
			assert.Contains(t, []domain.AttackCategory{
				domain.CategoryNoTimeout, domain.CategoryHardOnly,
				domain.CategoryIdleOnly, domain.CategoryBoth,
			}, cat)
		}
	}
}
