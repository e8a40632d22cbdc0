package model

import "time"

var postMeta = register(Meta{
	AppLabel:          "datetime_default_now",
	ModelName:         "post",
	VerboseName:       "post",
	VerboseNamePlural: "posts",
	Table:             "datetime_default_now_post",
	Fields: []Field{
		{Name: "id", Label: "ID", Kind: KindAutoID},
		{Name: "datetime", Label: "Datetime", Kind: KindDateTime, Required: true},
	},
})

var postWithDefaultMeta = register(Meta{
	AppLabel:          "datetime_default_now",
	ModelName:         "postwithdefaultdatetime",
	VerboseName:       "post with default date time",
	VerboseNamePlural: "post with default date times",
	Table:             "datetime_default_now_postwithdefaultdatetime",
	Fields: []Field{
		{Name: "id", Label: "ID", Kind: KindAutoID},
		{Name: "datetime", Label: "Datetime", Kind: KindDateTime, Required: true, HasDefault: true},
	},
})

// PostMeta describes Post.
func PostMeta() Meta { return postMeta }

// PostWithDefaultMeta describes PostWithDefaultDateTime.
func PostWithDefaultMeta() Meta { return postWithDefaultMeta }

// Post stores a single timestamp with no default. Saving a Post whose
// DateTime is zero fails.
type Post struct {
	ID       int64     `json:"id" yaml:"id"`
	DateTime time.Time `json:"datetime" yaml:"datetime"`
}

// Meta implements Instance.
func (p *Post) Meta() Meta { return postMeta }

// PK implements Instance.
func (p *Post) PK() int64 { return p.ID }

// Clean leaves an empty DateTime empty; the store rejects it.
func (p *Post) Clean(func() time.Time) {}

func (p *Post) String() string {
	return "Post object (" + pkString(p.ID) + ")"
}

// PostWithDefaultDateTime stores a timestamp that defaults to the
// timezone-aware current time.
type PostWithDefaultDateTime struct {
	ID       int64     `json:"id" yaml:"id"`
	DateTime time.Time `json:"datetime" yaml:"datetime"`
}

// NewPostWithDefaultDateTime returns an unsaved instance whose DateTime is
// already populated from now, the way a field default applies at
// construction time.
func NewPostWithDefaultDateTime(now func() time.Time) *PostWithDefaultDateTime {
	return &PostWithDefaultDateTime{DateTime: now()}
}

// Meta implements Instance.
func (p *PostWithDefaultDateTime) Meta() Meta { return postWithDefaultMeta }

// PK implements Instance.
func (p *PostWithDefaultDateTime) PK() int64 { return p.ID }

// Clean backfills an empty DateTime with now(). A value that is already
// set is kept.
func (p *PostWithDefaultDateTime) Clean(now func() time.Time) {
	if p.DateTime.IsZero() {
		p.DateTime = now()
	}
}

func (p *PostWithDefaultDateTime) String() string {
	return "PostWithDefaultDateTime object (" + pkString(p.ID) + ")"
}
