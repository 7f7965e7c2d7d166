package entity

// Category is one of the fixed safe-search content categories. The set is
// closed; the classifier always reports all five.
type Category string

const (
	CategoryAdult    Category = "adult"
	CategorySpoof    Category = "spoof"
	CategoryMedical  Category = "medical"
	CategoryViolence Category = "violence"
	CategoryRacy     Category = "racy"
)

// Categories returns every category in canonical report order.
func Categories() []Category {
	return []Category{
		CategoryAdult,
		CategorySpoof,
		CategoryMedical,
		CategoryViolence,
		CategoryRacy,
	}
}

// FlaggableCategories are the categories whose likelihood alone can flag a
// frame for review. medical and spoof are tracked in the maxima only.
func FlaggableCategories() []Category {
	return []Category{
		CategoryAdult,
		CategoryViolence,
		CategoryRacy,
	}
}
