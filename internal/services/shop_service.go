package services

import (
	"database/sql"
	"fmt"

	"github.com/nvaldr/shopstack-be/internal/apperrors"
	"github.com/nvaldr/shopstack-be/internal/models"
)

// ShopServiceProvider defines the interface for shop services.
type ShopServiceProvider interface {
	GetShopByName(name string) (models.Shop, error)
	GetShopByID(id string) (models.Shop, error)
	ShopExists(name string) (bool, error)
}

// ShopService provides business logic for shop lookups.
type ShopService struct {
	db *sql.DB
}

// NewShopService creates a new ShopService.
func NewShopService(db *sql.DB) *ShopService {
	return &ShopService{db: db}
}

const shopSelect = `
	SELECT s.id, s.name, s.owner_id, u.username, s.created_at
	FROM shops s
	LEFT JOIN users u ON u.id = s.owner_id`

// GetShopByName retrieves a shop by its name. Names match case-sensitively.
func (s *ShopService) GetShopByName(name string) (models.Shop, error) {
	return s.scanShop(s.db.QueryRow(shopSelect+" WHERE s.name = ?", name),
		fmt.Sprintf("Shop with name '%s' not found", name))
}

// GetShopByID retrieves a shop by its ID.
func (s *ShopService) GetShopByID(id string) (models.Shop, error) {
	return s.scanShop(s.db.QueryRow(shopSelect+" WHERE s.id = ?", id),
		fmt.Sprintf("Shop with id '%s' not found", id))
}

// ShopExists reports whether a shop with the given name exists.
func (s *ShopService) ShopExists(name string) (bool, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(1) FROM shops WHERE name = ?", name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ShopService) scanShop(row *sql.Row, notFoundMsg string) (models.Shop, error) {
	var shop models.Shop
	var ownerUsername sql.NullString
	err := row.Scan(&shop.ID, &shop.Name, &shop.OwnerID, &ownerUsername, &shop.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Shop{}, apperrors.NotFound(notFoundMsg)
		}
		return models.Shop{}, err
	}
	shop.OwnerUsername = ownerUsername.String
	return shop, nil
}
