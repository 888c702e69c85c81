package tracker

// Category is one selectable spending category. GroupID/GroupName are filled
// in the flat listings only.
type Category struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	GroupID   string `json:"group_id,omitempty"`
	GroupName string `json:"group_name,omitempty"`
}

// CategoryGroup is a named group of categories, in display order.
type CategoryGroup struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Icon          string     `json:"icon"`
	Subcategories []Category `json:"subcategories"`
}

// BillCategoryGroups is the fixed catalog of bill categories.
var BillCategoryGroups = []CategoryGroup{
	{
		ID:   "bills",
		Name: "Faturalar",
		Icon: "receipt",
		Subcategories: []Category{
			{ID: "electricity", Name: "Elektrik", Icon: "flash"},
			{ID: "water", Name: "Su", Icon: "water"},
			{ID: "internet", Name: "İnternet", Icon: "wifi"},
			{ID: "gas", Name: "Doğalgaz", Icon: "flame"},
			{ID: "phone", Name: "Telefon", Icon: "call"},
		},
	},
	{
		ID:   "expenses",
		Name: "Giderler",
		Icon: "wallet",
		Subcategories: []Category{
			{ID: "rent", Name: "Kira", Icon: "home"},
			{ID: "market", Name: "Market", Icon: "cart"},
			{ID: "subscriptions", Name: "Abonelikler", Icon: "card"},
		},
	},
}

// ReceiptCategoryGroups is the fixed catalog of receipt categories.
var ReceiptCategoryGroups = []CategoryGroup{
	{
		ID:   "shopping",
		Name: "Alışveriş",
		Icon: "bag",
		Subcategories: []Category{
			{ID: "market", Name: "Market", Icon: "cart"},
			{ID: "clothing", Name: "Giyim", Icon: "shirt"},
			{ID: "electronics", Name: "Elektronik", Icon: "phone-portrait"},
		},
	},
	{
		ID:   "food",
		Name: "Yeme-İçme",
		Icon: "restaurant",
		Subcategories: []Category{
			{ID: "restaurant", Name: "Restoran", Icon: "restaurant"},
			{ID: "cafe", Name: "Kafe", Icon: "cafe"},
			{ID: "fastfood", Name: "Fast Food", Icon: "fast-food"},
		},
	},
	{
		ID:   "other",
		Name: "Diğer",
		Icon: "ellipsis-horizontal",
		Subcategories: []Category{
			{ID: "pharmacy", Name: "Eczane", Icon: "medkit"},
			{ID: "fuel", Name: "Akaryakıt", Icon: "car"},
			{ID: "other", Name: "Diğer", Icon: "pricetag"},
		},
	},
}

// FlattenCategories expands grouped categories into a flat list that carries
// group metadata on each entry.
func FlattenCategories(groups []CategoryGroup) []Category {
	flat := make([]Category, 0)
	for _, group := range groups {
		for _, sub := range group.Subcategories {
			sub.GroupID = group.ID
			sub.GroupName = group.Name
			flat = append(flat, sub)
		}
	}
	return flat
}
