package model

import "strconv"

// ProductNameMaxLength bounds Product.Name.
const ProductNameMaxLength = 255

var productMeta = register(Meta{
	AppLabel:          "django_filter_pagination",
	ModelName:         "product",
	VerboseName:       "product",
	VerboseNamePlural: "products",
	Table:             "django_filter_pagination_product",
	Fields: []Field{
		{Name: "id", Label: "ID", Kind: KindAutoID},
		{Name: "name", Label: "Name", Kind: KindChar, Required: true, MaxLength: ProductNameMaxLength},
		{Name: "description", Label: "Description", Kind: KindText, Required: true},
		{Name: "release_date", Label: "Release date", Kind: KindDate, Required: true},
	},
})

// ProductMeta describes Product.
func ProductMeta() Meta { return productMeta }

// Product is a named item with a release date.
type Product struct {
	ID          int64  `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	ReleaseDate Date   `json:"release_date" yaml:"release_date"`
}

// Meta implements Instance.
func (p *Product) Meta() Meta { return productMeta }

// PK implements Instance.
func (p *Product) PK() int64 { return p.ID }

func (p *Product) String() string {
	return p.Name
}

func pkString(id int64) string {
	if id == 0 {
		return "None"
	}
	return strconv.FormatInt(id, 10)
}
