package repositories_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"catalog/internal/models"
	"catalog/internal/repositories"
)

func strPtr(s string) *string { return &s }

func price(s string) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.RequireFromString(s))
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func seedCatalog(t *testing.T, repo repositories.ProductRepository) []models.Product {
	t.Helper()
	products := []models.Product{
		{Title: "Vortex 2 Leggings", Handle: strPtr("vortex-2-leggings"), Vendor: strPtr("FAMME"), Price: price("249.00")},
		{Title: "Seamless LEGGING", Vendor: strPtr("FAMME"), Price: price("15.50")},
		{Title: "Running Shorts", Vendor: strPtr("Nike"), Price: price("10")},
		{Title: "Sports Bra", Vendor: strPtr("Adidas"), Price: price("20")},
		{Title: "Socks", Vendor: strPtr("   "), Price: price("5")},
		{Title: "Mystery Box"},
	}
	for i := range products {
		require.NoError(t, repo.Create(context.Background(), &products[i]))
	}
	return products
}

func titles(products []models.Product) []string {
	out := make([]string, len(products))
	for i, p := range products {
		out[i] = p.Title
	}
	return out
}

func firstPage(size int) models.PageRequest {
	return models.PageRequest{Page: 0, Size: size}
}

// runProductRepositoryTests checks the behavior every ProductRepository shares.
func runProductRepositoryTests(t *testing.T, newRepo func(t *testing.T) repositories.ProductRepository) {
	ctx := context.Background()

	t.Run("CreateAssignsUniqueIDs", func(t *testing.T) {
		repo := newRepo(t)
		products := seedCatalog(t, repo)
		seen := map[int64]bool{}
		for _, p := range products {
			assert.NotZero(t, p.ID)
			assert.False(t, seen[p.ID], "duplicate id %d", p.ID)
			seen[p.ID] = true
		}
	})

	t.Run("GetByIDRoundTrip", func(t *testing.T) {
		repo := newRepo(t)
		in := models.Product{
			Title:    "Vortex 2 Leggings",
			Handle:   strPtr("vortex-2-leggings"),
			Vendor:   strPtr("FAMME"),
			Price:    price("249.00"),
			ImageSrc: strPtr("https://cdn.example.com/vortex.jpg"),
		}
		require.NoError(t, repo.Create(ctx, &in))

		got, err := repo.GetByID(ctx, in.ID)
		require.NoError(t, err)
		assert.Equal(t, in.ID, got.ID)
		assert.Equal(t, in.Title, got.Title)
		assert.Equal(t, in.Handle, got.Handle)
		assert.Equal(t, in.Vendor, got.Vendor)
		assert.Equal(t, in.ImageSrc, got.ImageSrc)
		require.True(t, got.Price.Valid)
		assert.True(t, in.Price.Decimal.Equal(got.Price.Decimal))
	})

	t.Run("GetByIDNotFound", func(t *testing.T) {
		repo := newRepo(t)
		_, err := repo.GetByID(ctx, 9999)
		assert.True(t, errors.Is(err, models.ErrProductNotFound))
	})

	t.Run("UpdateOverwritesAllFields", func(t *testing.T) {
		repo := newRepo(t)
		p := models.Product{Title: "Old", Handle: strPtr("old"), Vendor: strPtr("A"), Price: price("1")}
		require.NoError(t, repo.Create(ctx, &p))

		upd := models.Product{ID: p.ID, Title: "New", Vendor: strPtr("B")}
		require.NoError(t, repo.Update(ctx, &upd))
		assert.Equal(t, p.ID, upd.ID)

		got, err := repo.GetByID(ctx, p.ID)
		require.NoError(t, err)
		assert.Equal(t, "New", got.Title)
		assert.Nil(t, got.Handle)
		assert.Equal(t, strPtr("B"), got.Vendor)
		assert.False(t, got.Price.Valid)
	})

	t.Run("UpdateMissingDoesNotCreate", func(t *testing.T) {
		repo := newRepo(t)
		seedCatalog(t, repo)
		before, err := repo.FindPage(ctx, models.ProductFilter{}, firstPage(100))
		require.NoError(t, err)

		err = repo.Update(ctx, &models.Product{ID: 9999, Title: "Ghost"})
		assert.True(t, errors.Is(err, models.ErrProductNotFound))

		after, err := repo.FindPage(ctx, models.ProductFilter{}, firstPage(100))
		require.NoError(t, err)
		assert.Equal(t, before.TotalElements, after.TotalElements)
		_, err = repo.GetByID(ctx, 9999)
		assert.True(t, errors.Is(err, models.ErrProductNotFound))
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		products := seedCatalog(t, repo)

		err := repo.Delete(ctx, 9999)
		assert.True(t, errors.Is(err, models.ErrProductNotFound))
		page, err := repo.FindPage(ctx, models.ProductFilter{}, firstPage(100))
		require.NoError(t, err)
		assert.Equal(t, int64(len(products)), page.TotalElements)

		require.NoError(t, repo.Delete(ctx, products[0].ID))
		_, err = repo.GetByID(ctx, products[0].ID)
		assert.True(t, errors.Is(err, models.ErrProductNotFound))
		err = repo.Delete(ctx, products[0].ID)
		assert.True(t, errors.Is(err, models.ErrProductNotFound))
	})

	t.Run("FindPageUnfilteredDefaultOrder", func(t *testing.T) {
		repo := newRepo(t)
		products := seedCatalog(t, repo)

		page, err := repo.FindPage(ctx, models.ProductFilter{}, firstPage(4))
		require.NoError(t, err)
		assert.Equal(t, int64(6), page.TotalElements)
		assert.Equal(t, 2, page.TotalPages())
		assert.Equal(t, titles(products[:4]), titles(page.Content))

		page, err = repo.FindPage(ctx, models.ProductFilter{}, models.PageRequest{Page: 1, Size: 4})
		require.NoError(t, err)
		assert.Equal(t, titles(products[4:]), titles(page.Content))

		page, err = repo.FindPage(ctx, models.ProductFilter{}, models.PageRequest{Page: 5, Size: 4})
		require.NoError(t, err)
		assert.Empty(t, page.Content)
		assert.Equal(t, int64(6), page.TotalElements)
	})

	t.Run("StoredRowsDoNotShareCallerStrings", func(t *testing.T) {
		repo := newRepo(t)

		vendor, handle := "FAMME", "vortex"
		product := &models.Product{Title: "Vortex 2 Leggings", Vendor: &vendor, Handle: &handle}
		require.NoError(t, repo.Create(ctx, product))
		vendor = "Changed after create"

		got, err := repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, got.Vendor)
		assert.Equal(t, "FAMME", *got.Vendor)

		*got.Vendor = "Changed after read"
		again, err := repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "FAMME", *again.Vendor)

		newHandle := "vortex-2"
		update := &models.Product{ID: product.ID, Title: "Vortex 2 Leggings", Handle: &newHandle}
		require.NoError(t, repo.Update(ctx, update))
		newHandle = "changed after update"

		again, err = repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		require.NotNil(t, again.Handle)
		assert.Equal(t, "vortex-2", *again.Handle)

		page, err := repo.FindPage(ctx, models.ProductFilter{}, firstPage(10))
		require.NoError(t, err)
		require.Len(t, page.Content, 1)
		*page.Content[0].Handle = "changed via page"
		again, err = repo.GetByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "vortex-2", *again.Handle)
	})

	t.Run("FindPagePastAddressableRangeIsEmpty", func(t *testing.T) {
		repo := newRepo(t)
		seedCatalog(t, repo)

		for _, req := range []models.PageRequest{
			{Page: math.MaxInt, Size: 10},
			{Page: math.MaxInt / 10, Size: 10},
		} {
			page, err := repo.FindPage(ctx, models.ProductFilter{}, req)
			require.NoError(t, err)
			assert.Empty(t, page.Content, "page=%d", req.Page)
			assert.Equal(t, int64(6), page.TotalElements)
			assert.Equal(t, req.Page, page.Number)
		}
	})

	t.Run("FindPageSearchIsCaseInsensitive", func(t *testing.T) {
		repo := newRepo(t)
		seedCatalog(t, repo)

		for _, term := range []string{"legging", "LEGGING", "LeGgInG"} {
			page, err := repo.FindPage(ctx, models.ProductFilter{Search: term}, firstPage(10))
			require.NoError(t, err)
			assert.ElementsMatch(t, []string{"Vortex 2 Leggings", "Seamless LEGGING"}, titles(page.Content), term)
		}

		// Case folding is not limited to ASCII.
		require.NoError(t, repo.Create(ctx, &models.Product{Title: "ÉCHARPE Légère"}))
		for _, term := range []string{"écharpe", "ÉCHARPE", "Écharpe LÉG", "légère"} {
			page, err := repo.FindPage(ctx, models.ProductFilter{Search: term}, firstPage(10))
			require.NoError(t, err)
			assert.Equal(t, []string{"ÉCHARPE Légère"}, titles(page.Content), term)
		}
	})

	t.Run("FindPageVendorExact", func(t *testing.T) {
		repo := newRepo(t)
		seedCatalog(t, repo)

		page, err := repo.FindPage(ctx, models.ProductFilter{Vendor: "FAMME"}, firstPage(10))
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.TotalElements)

		page, err = repo.FindPage(ctx, models.ProductFilter{Vendor: "famme"}, firstPage(10))
		require.NoError(t, err)
		assert.Zero(t, page.TotalElements)
	})

	t.Run("FindPagePriceRange", func(t *testing.T) {
		repo := newRepo(t)
		seedCatalog(t, repo)

		page, err := repo.FindPage(ctx, models.ProductFilter{MinPrice: decPtr("10"), MaxPrice: decPtr("20")}, firstPage(10))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Seamless LEGGING", "Running Shorts", "Sports Bra"}, titles(page.Content))
		for _, p := range page.Content {
			assert.True(t, p.Price.Decimal.GreaterThanOrEqual(decimal.NewFromInt(10)))
			assert.True(t, p.Price.Decimal.LessThanOrEqual(decimal.NewFromInt(20)))
		}

		page, err = repo.FindPage(ctx, models.ProductFilter{MinPrice: decPtr("10")}, firstPage(10))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Vortex 2 Leggings", "Seamless LEGGING", "Running Shorts", "Sports Bra"}, titles(page.Content))

		page, err = repo.FindPage(ctx, models.ProductFilter{MaxPrice: decPtr("10")}, firstPage(10))
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"Running Shorts", "Socks"}, titles(page.Content))

		page, err = repo.FindPage(ctx, models.ProductFilter{MinPrice: decPtr("50"), MaxPrice: decPtr("1")}, firstPage(10))
		require.NoError(t, err)
		assert.Empty(t, page.Content)
	})

	t.Run("FindPageCombinedFiltersAndSort", func(t *testing.T) {
		repo := newRepo(t)
		seedCatalog(t, repo)

		page, err := repo.FindPage(ctx,
			models.ProductFilter{Search: "leg", Vendor: "FAMME", MinPrice: decPtr("100")},
			firstPage(10))
		require.NoError(t, err)
		assert.Equal(t, []string{"Vortex 2 Leggings"}, titles(page.Content))

		// Blank strings count as absent; NULL prices are excluded by the bound.
		page, err = repo.FindPage(ctx, models.ProductFilter{Search: "   ", Vendor: "", MinPrice: decPtr("0")}, models.PageRequest{
			Size: 3,
			Sort: []models.Sort{{Column: "price", Direction: models.Desc}},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(5), page.TotalElements)
		assert.Equal(t, []string{"Vortex 2 Leggings", "Sports Bra", "Seamless LEGGING"}, titles(page.Content))

		page, err = repo.FindPage(ctx, models.ProductFilter{}, models.PageRequest{
			Size: 10,
			Sort: []models.Sort{{Column: "title", Direction: models.Asc}},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Mystery Box", "Running Shorts", "Seamless LEGGING", "Socks", "Sports Bra", "Vortex 2 Leggings"}, titles(page.Content))
	})

	t.Run("DistinctVendors", func(t *testing.T) {
		repo := newRepo(t)
		seedCatalog(t, repo)
		require.NoError(t, repo.Create(ctx, &models.Product{Title: "Empty vendor", Vendor: strPtr("")}))

		vendors, err := repo.DistinctVendors(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"Adidas", "FAMME", "Nike"}, vendors)
	})

	t.Run("DistinctVendorsEmpty", func(t *testing.T) {
		repo := newRepo(t)
		vendors, err := repo.DistinctVendors(ctx)
		require.NoError(t, err)
		assert.NotNil(t, vendors)
		assert.Empty(t, vendors)
	})
}
