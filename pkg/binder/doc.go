// Package binder decodes request values into tagged structs.
//
//	type onboardingForm struct {
//		Profession  string `form:"profession"`
//		CompanyName string `form:"company_name"`
//		Redirect    string `query:"redirect"`
//	}
//
// Form reads urlencoded and multipart bodies; Query reads the URL query.
// Fields without a tag use their lowercased name; `-` skips a field.
// Supported field types are strings, integers, floats, bools, pointers to
// those and slices of those.
package binder
