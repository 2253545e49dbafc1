package core

// DefaultCategories returns the starter categories written into a new store.
// The slice is freshly allocated on every call.
func DefaultCategories() []Category {
	return []Category{
		{Name: "Salary", Type: Income, Color: "#22C55E", Icon: "briefcase"},
		{Name: "Freelance", Type: Income, Color: "#0EA5E9", Icon: "laptop"},
		{Name: "Investments", Type: Income, Color: "#6366F1", Icon: "trending-up"},
		{Name: "Gifts", Type: Income, Color: "#EC4899", Icon: "gift"},
		{Name: "Food & Dining", Type: Expense, Color: "#F97316", Icon: "utensils"},
		{Name: "Housing", Type: Expense, Color: "#8B5CF6", Icon: "home"},
		{Name: "Transportation", Type: Expense, Color: "#EF4444", Icon: "car"},
		{Name: "Entertainment", Type: Expense, Color: "#EC4899", Icon: "film"},
		{Name: "Shopping", Type: Expense, Color: "#06B6D4", Icon: "shopping-bag"},
		{Name: "Healthcare", Type: Expense, Color: "#10B981", Icon: "activity"},
		{Name: "Education", Type: Expense, Color: "#0EA5E9", Icon: "book-open"},
		{Name: "Bills & Utilities", Type: Expense, Color: "#6366F1", Icon: "file-text"},
	}
}
