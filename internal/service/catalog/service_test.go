package catalog_test

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/docstore"
	"github.com/vladislavdragonenkov/storefront/internal/docstore/memory"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/service/catalog"
)

func newService(t *testing.T) *catalog.Service {
	t.Helper()
	baseLogger := log.New()
	baseLogger.SetLevel(log.WarnLevel)
	return catalog.NewService(memory.NewStore(), baseLogger.WithField("component", "catalog-service-test"))
}

func TestCreateAndGet(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	discounted := 9.99
	id, err := svc.Create(ctx, domain.Product{
		Name:          "Mug",
		Description:   "Stoneware mug",
		Price:         12.5,
		DiscountPrice: &discounted,
		Categories:    []string{"kitchen"},
		Stock:         10,
		SKU:           "MUG-1",
		Attributes:    map[string]any{"color": "white"},
	})
	require.NoError(t, err)

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, "Mug", got.Name)
	require.NotNil(t, got.DiscountPrice)
	require.Equal(t, 9.99, *got.DiscountPrice)
	require.Equal(t, 9.99, got.EffectivePrice())
	require.Equal(t, "white", got.Attributes["color"])
	require.False(t, got.CreatedAt.IsZero())
}

func TestCreate_Invalid(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Product{Price: 10})
	require.ErrorIs(t, err, domain.ErrProductNameRequired)

	_, err = svc.Create(ctx, domain.Product{Name: "Mug", Price: -1})
	require.ErrorIs(t, err, domain.ErrPriceInvalid)

	_, err = svc.Create(ctx, domain.Product{Name: "Mug", Stock: -5})
	require.ErrorIs(t, err, domain.ErrStockNegative)
}

func TestGet_Missing(t *testing.T) {
	svc := newService(t)

	_, err := svc.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	require.True(t, domain.IsNotFound(err))
}

func TestUpdateAndDelete(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	id, err := svc.Create(ctx, domain.Product{Name: "Mug", Price: 12.5})
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, id, docstore.Document{"price": 11.0}))

	got, err := svc.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, 11.0, got.Price)

	require.NoError(t, svc.Delete(ctx, id))

	_, err = svc.Get(ctx, id)
	require.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestUpdateMissingProduct(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	err := svc.Update(ctx, "ghost", docstore.Document{"price": 11.0})
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	require.True(t, domain.IsNotFound(err))

	err = svc.Delete(ctx, "ghost")
	require.ErrorIs(t, err, domain.ErrProductNotFound)
	require.True(t, domain.IsNotFound(err))
}

func TestListByCategory(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	products := []domain.Product{
		{Name: "Mug", Price: 12.5, Categories: []string{"kitchen", "gifts"}},
		{Name: "Lamp", Price: 45.0, Categories: []string{"office"}},
		{Name: "Blanket", Price: 34.99, Categories: []string{"home", "gifts"}},
	}
	for _, p := range products {
		_, err := svc.Create(ctx, p)
		require.NoError(t, err)
	}

	page, err := svc.ListByCategory(ctx, "gifts", 10, "")
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.False(t, page.HasMore)
	for _, p := range page.Items {
		require.Contains(t, p.Categories, "gifts")
	}
}

func TestFeatured(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.Product{Name: "Mug", Featured: true})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.Product{Name: "Lamp"})
	require.NoError(t, err)

	featured, err := svc.Featured(ctx, 10)
	require.NoError(t, err)
	require.Len(t, featured, 1)
	require.Equal(t, "Mug", featured[0].Name)
}

func TestByPriceRange(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for _, p := range []domain.Product{
		{Name: "Cheap", Price: 5},
		{Name: "Middle", Price: 20},
		{Name: "Pricey", Price: 100},
	} {
		_, err := svc.Create(ctx, p)
		require.NoError(t, err)
	}

	got, err := svc.ByPriceRange(ctx, 10, 50)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Middle", got[0].Name)
}

func TestList_Paginated(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Create(ctx, domain.Product{Name: "p", Price: float64(i)})
		require.NoError(t, err)
	}

	first, err := svc.List(ctx, 2, "")
	require.NoError(t, err)
	require.Len(t, first.Items, 2)
	require.True(t, first.HasMore)

	second, err := svc.List(ctx, 2, first.LastCursor)
	require.NoError(t, err)
	require.Len(t, second.Items, 1)
	require.False(t, second.HasMore)
}
