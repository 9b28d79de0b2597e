package database

import "pocketledger/internal/models"

type defaultCategory struct {
	name string
	typ  models.CategoryType
	icon string
}

// defaultCategories is seeded whenever the category collection is empty.
var defaultCategories = []defaultCategory{
	{"Food", models.CategoryTypeExpense, "🍔"},
	{"Shopping", models.CategoryTypeExpense, "🛍️"},
	{"Transport", models.CategoryTypeExpense, "🚗"},
	{"Entertainment", models.CategoryTypeExpense, "🎮"},
	{"Medical", models.CategoryTypeExpense, "💊"},
	{"Education", models.CategoryTypeExpense, "📚"},
	{"Housing", models.CategoryTypeExpense, "🏠"},
	{"Communication", models.CategoryTypeExpense, "📱"},
	{"Other Expense", models.CategoryTypeExpense, "💸"},
	{"Salary", models.CategoryTypeIncome, "💰"},
	{"Bonus", models.CategoryTypeIncome, "🎁"},
	{"Investment Income", models.CategoryTypeIncome, "📈"},
	{"Part-time", models.CategoryTypeIncome, "💼"},
	{"Other Income", models.CategoryTypeIncome, "💵"},
}

// seedCategories fills an empty category collection. Caller holds s.mu and persists.
func (s *Store) seedCategories() (bool, error) {
	if len(s.data.Categories) > 0 {
		return false, nil
	}
	for _, d := range defaultCategories {
		c, err := models.NewCategory(d.name, d.typ, d.icon, "")
		if err != nil {
			return false, err
		}
		if err := put(s.data.Categories, c.ID, c.Record()); err != nil {
			return false, err
		}
	}
	s.log.Infow("seeded default categories", "count", len(defaultCategories))
	return true, nil
}
