package catalog

import (
	"github.com/picklemart/internal/constants"
	"github.com/picklemart/internal/models"
)

// DefaultCategory 未记录浏览分类时使用的默认分类
const DefaultCategory = constants.CategoryVegPickles

// Product 目录中展示的商品
type Product struct {
	Name        string
	Price       models.Money
	Description string
}

// Category 商品分类及其静态商品列表
type Category struct {
	Slug     string
	Title    string
	Template string
	Products []Product
}

var categories = []Category{
	{
		Slug:     constants.CategoryVegPickles,
		Title:    "Veg Pickles",
		Template: "veg_pickles.html",
		Products: []Product{
			{Name: "Mango Pickle", Price: models.NewMoneyFromInt(150), Description: "Raw mango in mustard oil and red chilli."},
			{Name: "Lemon Pickle", Price: models.NewMoneyFromInt(120), Description: "Sun-cured lemons with a sweet and sour masala."},
			{Name: "Garlic Pickle", Price: models.NewMoneyFromInt(140), Description: "Whole garlic cloves in a tangy tamarind base."},
			{Name: "Gongura Pickle", Price: models.NewMoneyFromInt(160), Description: "Sorrel leaves ground with roasted chillies."},
			{Name: "Mixed Veg Pickle", Price: models.NewMoneyFromInt(130), Description: "Carrot, cauliflower and green chilli."},
		},
	},
	{
		Slug:     constants.CategoryNonVegPickles,
		Title:    "Non-Veg Pickles",
		Template: "non_veg_pickles.html",
		Products: []Product{
			{Name: "Chicken Pickle", Price: models.NewMoneyFromInt(350), Description: "Boneless chicken slow cooked in spices."},
			{Name: "Mutton Pickle", Price: models.NewMoneyFromInt(450), Description: "Tender mutton pieces in a fiery masala."},
			{Name: "Fish Pickle", Price: models.NewMoneyFromInt(400), Description: "Seer fish fried and preserved in gingelly oil."},
			{Name: "Prawn Pickle", Price: models.NewMoneyFromInt(420), Description: "Coastal style prawns with curry leaves."},
		},
	},
	{
		Slug:     constants.CategorySnacks,
		Title:    "Snacks",
		Template: "snacks.html",
		Products: []Product{
			{Name: "Banana Chips", Price: models.NewMoneyFromInt(100), Description: "Thin Kerala banana chips fried in coconut oil."},
			{Name: "Murukku", Price: models.NewMoneyFromInt(90), Description: "Crunchy rice flour spirals."},
			{Name: "Mixture", Price: models.NewMoneyFromInt(80), Description: "Spiced sev, peanuts and curry leaves."},
			{Name: "Chekkalu", Price: models.NewMoneyFromInt(110), Description: "Rice crackers with chana dal and chilli."},
		},
	},
}

// Categories 返回全部分类（副本）
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// Lookup 按 slug 查找分类
func Lookup(slug string) (Category, bool) {
	for _, c := range categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return Category{}, false
}

// IsCategory 判断 slug 是否为已知分类
func IsCategory(slug string) bool {
	_, ok := Lookup(slug)
	return ok
}
