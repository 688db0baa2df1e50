package repository

import (
	"context"

	"go-pos-ws/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	WithTx(tx *gorm.DB) ProductRepository
	Create(ctx context.Context, product *model.Product) error
	FindAll(ctx context.Context, onlyAvailable bool) ([]model.Product, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByName(ctx context.Context, name string) (*model.Product, error)
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID, deletedBy string) error
	FindIngredient(ctx context.Context, id uuid.UUID) (*model.Ingredient, error)
	LinkIngredientStock(ctx context.Context, ingredientID uuid.UUID, stockID *uuid.UUID, updatedBy string) error
}

type productRepo struct {
	db *gorm.DB
}

func NewProductRepo(db *gorm.DB) ProductRepository {
	return &productRepo{db}
}

func (r *productRepo) WithTx(tx *gorm.DB) ProductRepository {
	return &productRepo{tx}
}

// Create inserts the product with its ingredients. is_available has a column
// default, so an unavailable product needs a second write.
func (r *productRepo) Create(ctx context.Context, product *model.Product) error {
	available := product.IsAvailable
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		if available {
			return nil
		}
		product.IsAvailable = false
		return tx.Model(product).Update("is_available", false).Error
	})
}

func (r *productRepo) FindAll(ctx context.Context, onlyAvailable bool) ([]model.Product, error) {
	var products []model.Product
	q := r.db.WithContext(ctx).Preload("Ingredients").Order("name ASC")
	if onlyAvailable {
		q = q.Where("is_available = ?", true)
	}
	err := q.Find(&products).Error
	return products, err
}

func (r *productRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).Preload("Ingredients").First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// FindByName matches the product name case-insensitively, the way orders
// refer to products by their name snapshot.
func (r *productRepo) FindByName(ctx context.Context, name string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).
		Preload("Ingredients").
		Where("LOWER(name) = LOWER(?)", name).
		First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// Update saves the product fields and replaces its ingredient list.
func (r *productRepo) Update(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Ingredients").Save(product).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("product_id = ?", product.ID).Delete(&model.Ingredient{}).Error; err != nil {
			return err
		}
		for i := range product.Ingredients {
			product.Ingredients[i].ID = uuid.Nil
			product.Ingredients[i].ProductID = product.ID
			product.Ingredients[i].CreatedBy = product.UpdatedBy
			product.Ingredients[i].UpdatedBy = product.UpdatedBy
		}
		if len(product.Ingredients) == 0 {
			return nil
		}
		return tx.Create(&product.Ingredients).Error
	})
}

func (r *productRepo) Delete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Product{}).Where("id = ?", id).Update("deleted_by", deletedBy).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&model.Ingredient{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Product{}, "id = ?", id).Error
	})
}

func (r *productRepo) FindIngredient(ctx context.Context, id uuid.UUID) (*model.Ingredient, error) {
	var ingredient model.Ingredient
	if err := r.db.WithContext(ctx).First(&ingredient, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ingredient, nil
}

func (r *productRepo) LinkIngredientStock(ctx context.Context, ingredientID uuid.UUID, stockID *uuid.UUID, updatedBy string) error {
	res := r.db.WithContext(ctx).Model(&model.Ingredient{}).
		Where("id = ?", ingredientID).
		Updates(map[string]interface{}{"stock_id": stockID, "updated_by": updatedBy})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
