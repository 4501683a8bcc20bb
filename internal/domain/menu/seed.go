package menu

import "github.com/shopspring/decimal"

func pct(v int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(v))
}

// DefaultItems returns the sample menu the service starts with.
func DefaultItems() []Item {
	return []Item{
		{
			ID:              "1",
			Name:            "Tasty Vegetable Salad Healthy Diet",
			Description:     "Fresh mixed greens with seasonal vegetables and house dressing",
			Price:           decimal.RequireFromString("17.99"),
			Discount:        pct(20),
			Category:        "salads",
			Image:           "/images/menu/1.jpg",
			Type:            Veg,
			Available:       true,
			PreparationTime: 10,
			Ingredients:     []string{"Mixed greens", "Tomatoes", "Cucumbers", "Carrots", "House dressing"},
		},
		{
			ID:              "2",
			Name:            "Original Chess Meat Burger With Chips",
			Description:     "Juicy beef patty with cheese, lettuce, tomato and crispy fries",
			Price:           decimal.RequireFromString("23.99"),
			Category:        "burgers",
			Image:           "/images/menu/2.jpg",
			Type:            NonVeg,
			Available:       true,
			PreparationTime: 15,
			Ingredients:     []string{"Beef patty", "Cheese", "Lettuce", "Tomato", "Fries"},
		},
		{
			ID:              "3",
			Name:            "Tacos Salsa With Chickens Grilled",
			Description:     "Grilled chicken tacos with fresh salsa and guacamole",
			Price:           decimal.RequireFromString("14.99"),
			Category:        "mains",
			Image:           "/images/menu/3.jpg",
			Type:            NonVeg,
			Available:       true,
			PreparationTime: 12,
			Ingredients:     []string{"Grilled chicken", "Corn tortillas", "Salsa", "Guacamole"},
		},
		{
			ID:              "4",
			Name:            "Fresh Orange Juice With Basil Seed",
			Description:     "Freshly squeezed orange juice with basil seeds for extra nutrition",
			Price:           decimal.RequireFromString("12.99"),
			Category:        "beverages",
			Image:           "/images/menu/4.jpg",
			Type:            Veg,
			Available:       true,
			PreparationTime: 5,
			Ingredients:     []string{"Fresh oranges", "Basil seeds", "Ice"},
		},
		{
			ID:              "5",
			Name:            "Meat Sushi Maki With Tuna, Ship And Other",
			Description:     "Fresh sushi rolls with tuna and assorted seafood",
			Price:           decimal.RequireFromString("9.99"),
			Category:        "appetizers",
			Image:           "/images/menu/5.jpg",
			Type:            NonVeg,
			Available:       true,
			PreparationTime: 8,
			Ingredients:     []string{"Sushi rice", "Tuna", "Nori", "Wasabi", "Soy sauce"},
		},
		{
			ID:              "6",
			Name:            "Original Chess Burger With French Fries",
			Description:     "Classic vegetarian burger with crispy french fries",
			Price:           decimal.RequireFromString("10.59"),
			Discount:        pct(20),
			Category:        "burgers",
			Image:           "/images/menu/6.jpg",
			Type:            Veg,
			Available:       true,
			PreparationTime: 12,
			Ingredients:     []string{"Veggie patty", "Cheese", "Lettuce", "Tomato", "French fries"},
		},
		{
			ID:              "7",
			Name:            "Margherita Pizza",
			Description:     "Classic pizza with tomato sauce, mozzarella and fresh basil",
			Price:           decimal.RequireFromString("18.99"),
			Category:        "pizzas",
			Image:           "/images/menu/7.jpg",
			Type:            Veg,
			Available:       true,
			PreparationTime: 18,
			Ingredients:     []string{"Pizza dough", "Tomato sauce", "Mozzarella", "Fresh basil"},
		},
		{
			ID:              "8",
			Name:            "Chocolate Lava Cake",
			Description:     "Warm chocolate cake with molten center served with vanilla ice cream",
			Price:           decimal.RequireFromString("8.99"),
			Category:        "desserts",
			Image:           "/images/menu/8.jpg",
			Type:            Veg,
			Available:       true,
			PreparationTime: 15,
			Ingredients:     []string{"Dark chocolate", "Butter", "Eggs", "Flour", "Vanilla ice cream"},
		},
	}
}
