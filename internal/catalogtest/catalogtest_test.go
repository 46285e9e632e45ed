package catalogtest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/shelf/internal/memory"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// trackedCatalog counts Detach calls on top of a memory catalog.
type trackedCatalog struct {
	*memory.Catalog
	detached *int
}

func (c *trackedCatalog) Detach() error {
	*c.detached++
	return nil
}

func TestMatchesModelDetachesEachIteration(t *testing.T) {
	var built, detached int
	testMatchesModel(t, func(t *testing.T) types.Catalog {
		built++
		return &trackedCatalog{Catalog: memory.New(), detached: &detached}
	})

	assert.Positive(t, built)
	assert.Equal(t, built, detached)
}
