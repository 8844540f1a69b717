package db

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FilterBuilder helps build MongoDB filters fluently
type FilterBuilder struct {
	filter bson.M
}

// NewFilter creates a new FilterBuilder
func NewFilter() *FilterBuilder {
	return &FilterBuilder{filter: bson.M{}}
}

// Eq adds an equality condition
func (f *FilterBuilder) Eq(field string, value interface{}) *FilterBuilder {
	f.filter[field] = value
	return f
}

// Ne adds a not-equal condition
func (f *FilterBuilder) Ne(field string, value interface{}) *FilterBuilder {
	f.filter[field] = bson.M{"$ne": value}
	return f
}

// In adds a membership condition
func (f *FilterBuilder) In(field string, values interface{}) *FilterBuilder {
	f.filter[field] = bson.M{"$in": values}
	return f
}

// ObjectID adds an equality condition on a hex ObjectID field. An invalid
// hex string produces the zero ObjectID, which matches nothing.
func (f *FilterBuilder) ObjectID(field string, hex string) *FilterBuilder {
	objectID, err := primitive.ObjectIDFromHex(hex)
	if err != nil {
		objectID = primitive.NilObjectID
	}
	f.filter[field] = objectID
	return f
}

// Build returns the assembled filter
func (f *FilterBuilder) Build() bson.M {
	return f.filter
}
