// Package model defines the persisted record shapes: Post and
// PostWithDefaultDateTime (app "datetime_default_now") and Product
// (app "django_filter_pagination").
//
// Each model carries a Meta describing its fields. Forms, the admin site
// and fixtures are driven by that metadata.
package model
