package models

import "time"

// Resource kinds accepted by the tracker API (`type` query/body parameter).
const (
	ResourceWeight   = "weight"
	ResourceProduct  = "product"
	ResourceFood     = "food"
	ResourceFavorite = "favorite"
)

// WeightEntry is one body-weight measurement.
type WeightEntry struct {
	ID     string  `json:"id"`
	Date   string  `json:"date"`
	Weight float64 `json:"weight"`
	Note   string  `json:"note,omitempty"`
}

// Product is a food product with macros per 100 g.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Barcode  string  `json:"barcode,omitempty"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
}

// FoodEntry is one food-diary row referencing a product.
type FoodEntry struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"`
	Meal      string  `json:"meal"`
	ProductID string  `json:"productId"`
	Grams     float64 `json:"grams"`
}

// Favorite marks a product as frequently used.
type Favorite struct {
	ID        string    `json:"id"`
	ProductID string    `json:"productId"`
	AddedAt   time.Time `json:"addedAt"`
}
