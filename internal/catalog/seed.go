package catalog

import (
	"github.com/shopspring/decimal"

	"github.com/kieracarman/bakery-storefront/internal/models"
)

// Seed returns the default catalog used when nothing has been persisted yet
func Seed() []models.Product {
	return []models.Product{
		{
			ID:          "1",
			Name:        "Bolo de Chocolate Gourmet",
			Description: "Delicioso bolo de chocolate com cobertura cremosa e decoração especial",
			Price:       decimal.RequireFromString("45.90"),
			Image:       "https://images.pexels.com/photos/291528/pexels-photo-291528.jpeg?auto=compress&cs=tinysrgb&w=400",
		},
		{
			ID:          "2",
			Name:        "Torta de Morango",
			Description: "Torta artesanal com morangos frescos e chantilly",
			Price:       decimal.RequireFromString("52.90"),
			Image:       "https://images.pexels.com/photos/1126359/pexels-photo-1126359.jpeg?auto=compress&cs=tinysrgb&w=400",
		},
		{
			ID:          "3",
			Name:        "Cupcakes Sortidos",
			Description: "Kit com 6 cupcakes de sabores variados com cobertura especial",
			Price:       decimal.RequireFromString("28.90"),
			Image:       "https://images.pexels.com/photos/1055272/pexels-photo-1055272.jpeg?auto=compress&cs=tinysrgb&w=400",
		},
		{
			ID:          "4",
			Name:        "Bolo Red Velvet",
			Description: "Clássico bolo red velvet com cream cheese e decoração elegante",
			Price:       decimal.RequireFromString("48.90"),
			Image:       "https://images.pexels.com/photos/1721932/pexels-photo-1721932.jpeg?auto=compress&cs=tinysrgb&w=400",
		},
		{
			ID:          "5",
			Name:        "Brownie Premium",
			Description: "Brownie artesanal com chocolate belga e nozes",
			Price:       decimal.RequireFromString("15.90"),
			Image:       "https://images.pexels.com/photos/2373520/pexels-photo-2373520.jpeg?auto=compress&cs=tinysrgb&w=400",
		},
		{
			ID:          "6",
			Name:        "Torta de Limão",
			Description: "Refrescante torta de limão com merengue dourado",
			Price:       decimal.RequireFromString("38.90"),
			Image:       "https://images.pexels.com/photos/1414234/pexels-photo-1414234.jpeg?auto=compress&cs=tinysrgb&w=400",
		},
	}
}
