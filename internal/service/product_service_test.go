package service

import (
	"testing"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newProductService(f *fixture) ProductService {
	return NewProductService(f.products, f.stocks, f.pub, nil)
}

func TestCreateProductKeepsAvailabilityAndIngredients(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newProductService(f)

	p := &model.Product{
		Name:        "  Seasonal Tart ",
		Price:       dec("120"),
		IsAvailable: false,
		Ingredients: []model.Ingredient{ingredient("Butter", "50", "g"), ingredient("Cream", "0.5", "cup")},
	}
	require.NoError(t, svc.CreateProduct(f.ctx, p, "manager-1"))
	require.Equal(t, "Seasonal Tart", p.Name)

	stored, err := svc.GetProduct(f.ctx, p.ID)
	require.NoError(t, err)
	require.False(t, stored.IsAvailable)
	require.Len(t, stored.Ingredients, 2)

	available, err := svc.ListProducts(f.ctx, true)
	require.NoError(t, err)
	require.Empty(t, available)

	byName, err := svc.FindByNameWithIngredients(f.ctx, "seasonal tart")
	require.NoError(t, err)
	require.Equal(t, p.ID, byName.ID)
}

func TestCreateProductValidation(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newProductService(f)
	f.seedProduct(t, "Pancake", "50")

	err := svc.CreateProduct(f.ctx, &model.Product{Name: "PANCAKE", Price: dec("10")}, "m")
	require.ErrorIs(t, err, ErrDuplicateName)

	err = svc.CreateProduct(f.ctx, &model.Product{Name: "", Price: dec("10")}, "m")
	require.ErrorIs(t, err, ErrValidation)

	err = svc.CreateProduct(f.ctx, &model.Product{
		Name:        "Toast",
		Price:       dec("10"),
		Ingredients: []model.Ingredient{ingredient("Bread", "0", "pcs")},
	}, "m")
	require.ErrorIs(t, err, ErrValidation)
}

func TestUpdateProductReplacesIngredients(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newProductService(f)
	p := f.seedProduct(t, "Pancake", "50", ingredient("Flour", "200", "g"), ingredient("Egg", "1", "pcs"))

	updated, err := svc.UpdateProduct(f.ctx, p.ID, &model.Product{
		Name:        "Pancake",
		Price:       dec("55"),
		IsAvailable: true,
		Ingredients: []model.Ingredient{ingredient("Flour", "250", "g")},
	}, "manager-1")
	require.NoError(t, err)
	requireDecimal(t, "55", updated.Price)

	stored, err := svc.GetProduct(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, stored.Ingredients, 1)
	requireDecimal(t, "250", stored.Ingredients[0].Quantity)

	_, err = svc.UpdateProduct(f.ctx, uuid.New(), &model.Product{Name: "Ghost", Price: dec("1")}, "m")
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestMatchIngredientsPrefersLink(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newProductService(f)
	allPurpose := f.seedStock(t, "All Purpose Flour", "1000", "g", "0")
	rice := f.seedStock(t, "Rice Flour", "1000", "g", "0")
	p := f.seedProduct(t, "Pancake", "50", ingredient("Flour", "200", "g"), ingredient("Saffron", "1", "g"))

	matches, err := svc.MatchIngredients(f.ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	byName := map[string]IngredientMatch{}
	for _, m := range matches {
		byName[m.Ingredient.Name] = m
	}
	require.NotNil(t, byName["Flour"].Resolved)
	require.Equal(t, allPurpose.ID, byName["Flour"].Resolved.ID)
	require.Len(t, byName["Flour"].Similar, 2)
	require.Nil(t, byName["Saffron"].Resolved)

	flourID := byName["Flour"].Ingredient.ID
	require.NoError(t, svc.LinkIngredientStock(f.ctx, flourID, &rice.ID, "manager-1"))

	matches, err = svc.MatchIngredients(f.ctx, p.ID)
	require.NoError(t, err)
	for _, m := range matches {
		if m.Ingredient.Name == "Flour" {
			require.Equal(t, rice.ID, m.Resolved.ID)
		}
	}

	missing := uuid.New()
	require.ErrorIs(t, svc.LinkIngredientStock(f.ctx, flourID, &missing, "m"), ErrStockNotFound)
	require.ErrorIs(t, svc.LinkIngredientStock(f.ctx, uuid.New(), nil, "m"), ErrIngredientNotFound)
}

func TestDeleteProduct(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newProductService(f)
	p := f.seedProduct(t, "Pancake", "50", ingredient("Flour", "200", "g"))

	require.NoError(t, svc.DeleteProduct(f.ctx, p.ID, "manager-1"))
	_, err := svc.GetProduct(f.ctx, p.ID)
	require.ErrorIs(t, err, ErrProductNotFound)
	require.ErrorIs(t, svc.DeleteProduct(f.ctx, p.ID, "manager-1"), ErrProductNotFound)
}

func TestRecreateDeletedProductName(t *testing.T) {
	t.Parallel()
	f := newFixture(t)
	svc := newProductService(f)

	first := &model.Product{Name: "Pancake", Price: dec("50"), IsAvailable: true}
	require.NoError(t, svc.CreateProduct(f.ctx, first, "manager-1"))
	require.NoError(t, svc.DeleteProduct(f.ctx, first.ID, "manager-1"))

	second := &model.Product{Name: "Pancake", Price: dec("55"), IsAvailable: true}
	require.NoError(t, svc.CreateProduct(f.ctx, second, "manager-1"))
	require.NotEqual(t, first.ID, second.ID)

	found, err := svc.FindByNameWithIngredients(f.ctx, "pancake")
	require.NoError(t, err)
	require.Equal(t, second.ID, found.ID)

	err = svc.CreateProduct(f.ctx, &model.Product{Name: "Pancake", Price: dec("1")}, "manager-1")
	require.ErrorIs(t, err, ErrDuplicateName)
}
