// Package bean converts jobs to and from the JSON transfer envelope.
//
// A JobBean holds an ordered list of jobs. Extract produces a document of the
// form
//
//	{"version": 1, "jobs": [ {...}, ... ]}
//
// whether it holds one job or many, and Restore reads the same shape back.
// Input values are written with their type tag so that a receiver without
// schema knowledge can rebuild them; a receiver with a SchemaSource binds
// wire values onto the connector's config skeletons by position, checking
// input names and types along the way.
//
// Sensitive input values are written as null unless the caller asks for
// them explicitly.
package bean
