package admin

import (
	"context"
	"fmt"

	"github.com/andri/pocs/pkg/forms"
	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/store"
)

// ModelAdmin describes how the site manages one model.
type ModelAdmin struct {
	Meta model.Meta

	// NewForm builds the add/change form. A nil instance means "add".
	NewForm func(inst model.Instance, opts forms.Options) forms.Form

	Get    func(ctx context.Context, s *store.Store, id int64) (model.Instance, error)
	List   func(ctx context.Context, s *store.Store, opts store.ListOptions) ([]model.Instance, error)
	Count  func(ctx context.Context, s *store.Store) (int, error)
	Delete func(ctx context.Context, s *store.Store, id int64) error
}

func (m ModelAdmin) validate() error {
	if m.Meta.AppLabel == "" || m.Meta.ModelName == "" {
		return fmt.Errorf("model admin has no model metadata")
	}
	if m.NewForm == nil || m.Get == nil || m.List == nil || m.Count == nil || m.Delete == nil {
		return fmt.Errorf("model admin for %s is incomplete", m.Meta.Label())
	}
	return nil
}

// PostAdmin manages Post with PostAdminForm.
func PostAdmin() ModelAdmin {
	return ModelAdmin{
		Meta: model.PostMeta(),
		NewForm: func(inst model.Instance, opts forms.Options) forms.Form {
			p, _ := inst.(*model.Post)
			return forms.NewPostAdminForm(p, opts)
		},
		Get: func(ctx context.Context, s *store.Store, id int64) (model.Instance, error) {
			return s.Posts().Get(ctx, id)
		},
		List: func(ctx context.Context, s *store.Store, opts store.ListOptions) ([]model.Instance, error) {
			posts, err := s.Posts().List(ctx, opts)
			return instances(posts, err)
		},
		Count: func(ctx context.Context, s *store.Store) (int, error) {
			return s.Posts().Count(ctx)
		},
		Delete: func(ctx context.Context, s *store.Store, id int64) error {
			return s.Posts().Delete(ctx, id)
		},
	}
}

// PostWithDefaultAdmin manages PostWithDefaultDateTime.
func PostWithDefaultAdmin() ModelAdmin {
	return ModelAdmin{
		Meta: model.PostWithDefaultMeta(),
		NewForm: func(inst model.Instance, opts forms.Options) forms.Form {
			p, _ := inst.(*model.PostWithDefaultDateTime)
			return forms.NewPostWithDefaultForm(p, opts)
		},
		Get: func(ctx context.Context, s *store.Store, id int64) (model.Instance, error) {
			return s.DefaultPosts().Get(ctx, id)
		},
		List: func(ctx context.Context, s *store.Store, opts store.ListOptions) ([]model.Instance, error) {
			posts, err := s.DefaultPosts().List(ctx, opts)
			return instances(posts, err)
		},
		Count: func(ctx context.Context, s *store.Store) (int, error) {
			return s.DefaultPosts().Count(ctx)
		},
		Delete: func(ctx context.Context, s *store.Store, id int64) error {
			return s.DefaultPosts().Delete(ctx, id)
		},
	}
}

// ProductAdmin manages Product.
func ProductAdmin() ModelAdmin {
	return ModelAdmin{
		Meta: model.ProductMeta(),
		NewForm: func(inst model.Instance, opts forms.Options) forms.Form {
			p, _ := inst.(*model.Product)
			return forms.NewProductForm(p, opts)
		},
		Get: func(ctx context.Context, s *store.Store, id int64) (model.Instance, error) {
			return s.Products().Get(ctx, id)
		},
		List: func(ctx context.Context, s *store.Store, opts store.ListOptions) ([]model.Instance, error) {
			products, err := s.Products().List(ctx, opts)
			return instances(products, err)
		},
		Count: func(ctx context.Context, s *store.Store) (int, error) {
			return s.Products().Count(ctx)
		},
		Delete: func(ctx context.Context, s *store.Store, id int64) error {
			return s.Products().Delete(ctx, id)
		},
	}
}

// instances converts a slice of model values to Instances. T's pointer
// must implement model.Instance.
func instances[T any, PT interface {
	*T
	model.Instance
}](items []T, err error) ([]model.Instance, error) {
	if err != nil {
		return nil, err
	}
	out := make([]model.Instance, len(items))
	for i := range items {
		out[i] = PT(&items[i])
	}
	return out, nil
}
