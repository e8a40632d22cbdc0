package forms

import (
	"context"
	"time"

	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/store"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// PostAdminForm edits a Post with all of its fields.
type PostAdminForm struct {
	*modelForm
	instance *model.Post
}

var _ Form = (*PostAdminForm)(nil)

// NewPostAdminForm returns a form for p, or for a new Post when p is nil.
func NewPostAdminForm(p *model.Post, opts Options) *PostAdminForm {
	opts = opts.withDefaults()
	if p == nil {
		p = &model.Post{}
	}
	initial := map[string]string{"datetime": formatDateTime(p.DateTime, opts.Location)}
	return &PostAdminForm{modelForm: newModelForm(model.PostMeta(), opts, initial), instance: p}
}

// IsValid cleans the bound data and reports whether it has no errors.
func (f *PostAdminForm) IsValid() bool {
	f.clean(func(cleaned map[string]any) field.ErrorList {
		f.instance.DateTime = cleaned["datetime"].(time.Time)
		f.instance.Clean(f.opts.Now)
		return nil
	})
	return f.valid()
}

// Instance returns the Post the form edits, updated with cleaned values
// once IsValid has succeeded.
func (f *PostAdminForm) Instance() *model.Post {
	return f.instance
}

// Save writes the Post. It returns ErrInvalidForm without touching the
// store when the form does not validate.
func (f *PostAdminForm) Save(ctx context.Context, s *store.Store) (*model.Post, error) {
	if !f.IsValid() {
		return nil, f.invalidError()
	}
	if err := s.Posts().Save(ctx, f.instance); err != nil {
		return nil, f.integrityError(err)
	}
	return f.instance, nil
}

// SaveInstance implements Form.
func (f *PostAdminForm) SaveInstance(ctx context.Context, s *store.Store) (model.Instance, error) {
	p, err := f.Save(ctx, s)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PostWithDefaultForm edits a PostWithDefaultDateTime. Its datetime may be
// left empty; the model default fills it in.
type PostWithDefaultForm struct {
	*modelForm
	instance *model.PostWithDefaultDateTime
}

var _ Form = (*PostWithDefaultForm)(nil)

// NewPostWithDefaultForm returns a form for p. For a new instance the
// initial datetime is the default, evaluated now.
func NewPostWithDefaultForm(p *model.PostWithDefaultDateTime, opts Options) *PostWithDefaultForm {
	opts = opts.withDefaults()
	if p == nil {
		p = model.NewPostWithDefaultDateTime(opts.Now)
	}
	initial := map[string]string{"datetime": formatDateTime(p.DateTime, opts.Location)}
	return &PostWithDefaultForm{modelForm: newModelForm(model.PostWithDefaultMeta(), opts, initial), instance: p}
}

// IsValid cleans the bound data, backfilling an empty datetime.
func (f *PostWithDefaultForm) IsValid() bool {
	f.clean(func(cleaned map[string]any) field.ErrorList {
		f.instance.DateTime = cleaned["datetime"].(time.Time)
		f.instance.Clean(f.opts.Now)
		return nil
	})
	return f.valid()
}

// Instance returns the edited instance.
func (f *PostWithDefaultForm) Instance() *model.PostWithDefaultDateTime {
	return f.instance
}

// Save writes the instance.
func (f *PostWithDefaultForm) Save(ctx context.Context, s *store.Store) (*model.PostWithDefaultDateTime, error) {
	if !f.IsValid() {
		return nil, f.invalidError()
	}
	if err := s.DefaultPosts().Save(ctx, f.instance); err != nil {
		return nil, f.integrityError(err)
	}
	return f.instance, nil
}

// SaveInstance implements Form.
func (f *PostWithDefaultForm) SaveInstance(ctx context.Context, s *store.Store) (model.Instance, error) {
	p, err := f.Save(ctx, s)
	if err != nil {
		return nil, err
	}
	return p, nil
}
