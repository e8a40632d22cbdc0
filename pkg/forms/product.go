package forms

import (
	"context"

	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/store"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// ProductForm edits a Product.
type ProductForm struct {
	*modelForm
	instance *model.Product
}

var _ Form = (*ProductForm)(nil)

// NewProductForm returns a form for p, or for a new Product when p is nil.
func NewProductForm(p *model.Product, opts Options) *ProductForm {
	if p == nil {
		p = &model.Product{}
	}
	initial := map[string]string{
		"name":         p.Name,
		"description":  p.Description,
		"release_date": p.ReleaseDate.String(),
	}
	return &ProductForm{modelForm: newModelForm(model.ProductMeta(), opts, initial), instance: p}
}

// IsValid cleans the bound data.
func (f *ProductForm) IsValid() bool {
	f.clean(func(cleaned map[string]any) field.ErrorList {
		f.instance.Name = cleaned["name"].(string)
		f.instance.Description = cleaned["description"].(string)
		f.instance.ReleaseDate = cleaned["release_date"].(model.Date)
		return nil
	})
	return f.valid()
}

// Instance returns the edited Product.
func (f *ProductForm) Instance() *model.Product {
	return f.instance
}

// Save writes the Product.
func (f *ProductForm) Save(ctx context.Context, s *store.Store) (*model.Product, error) {
	if !f.IsValid() {
		return nil, f.invalidError()
	}
	if err := s.Products().Save(ctx, f.instance); err != nil {
		return nil, f.integrityError(err)
	}
	return f.instance, nil
}

// SaveInstance implements Form.
func (f *ProductForm) SaveInstance(ctx context.Context, s *store.Store) (model.Instance, error) {
	p, err := f.Save(ctx, s)
	if err != nil {
		return nil, err
	}
	return p, nil
}
