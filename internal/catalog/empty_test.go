package catalog

import (
	"context"
	"testing"

	"github.com/dukerupert/whiffwear/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestEmpty(t *testing.T) {
	ctx := context.Background()
	var c Empty

	products, err := c.ListActiveProducts(ctx)
	assert.NoError(t, err)
	assert.Empty(t, products)

	_, err = c.GetProductByID(ctx, "p1")
	assert.True(t, domain.IsCode(err, domain.ENOTFOUND))

	_, err = c.GetCategoryBySlug(ctx, "bags")
	assert.True(t, domain.IsCode(err, domain.ENOTFOUND))

	_, err = c.GetActiveHero(ctx)
	assert.True(t, domain.IsCode(err, domain.ENOTFOUND))
}
