package output

import (
	"time"

	"github.com/andri/pocs/pkg/model"
	"github.com/andri/pocs/pkg/store"
)

// Data is everything a list command may print. Empty sections are
// skipped.
type Data struct {
	Products   *ProductSection          `json:"products,omitempty" yaml:"products,omitempty"`
	Posts      []PostSection            `json:"posts,omitempty" yaml:"posts,omitempty"`
	Migrations []store.AppliedMigration `json:"migrations,omitempty" yaml:"migrations,omitempty"`
}

// ProductSection is one page of a product listing.
type ProductSection struct {
	Count    int                 `json:"count" yaml:"count"`
	Page     int                 `json:"page" yaml:"page"`
	NumPages int                 `json:"num_pages" yaml:"num_pages"`
	Filters  map[string]string   `json:"filters,omitempty" yaml:"filters,omitempty"`
	Errors   map[string][]string `json:"errors,omitempty" yaml:"errors,omitempty"`
	Items    []model.Product     `json:"results" yaml:"results"`
}

// PostSection lists the rows of one post model.
type PostSection struct {
	Model string    `json:"model" yaml:"model"`
	Items []PostRow `json:"results" yaml:"results"`
}

// PostRow is a post of either kind.
type PostRow struct {
	ID       int64     `json:"id" yaml:"id"`
	DateTime time.Time `json:"datetime" yaml:"datetime"`
}

// PostRows converts Posts.
func PostRows(posts []model.Post) []PostRow {
	rows := make([]PostRow, len(posts))
	for i, p := range posts {
		rows[i] = PostRow{ID: p.ID, DateTime: p.DateTime}
	}
	return rows
}

// DefaultPostRows converts PostWithDefaultDateTimes.
func DefaultPostRows(posts []model.PostWithDefaultDateTime) []PostRow {
	rows := make([]PostRow, len(posts))
	for i, p := range posts {
		rows[i] = PostRow{ID: p.ID, DateTime: p.DateTime}
	}
	return rows
}
