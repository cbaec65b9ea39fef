// Package db provides list filter building functionality.
//
// Filters are explicit values implementing SQL()/Args()/Valid(), assembled
// by a FilterBuilder into a WHERE fragment. Invalid filters are dropped at
// add time, so a builder never produces malformed SQL.
package db

import (
	"strings"

	"github.com/plantry/core/internal/models"
)

// Filter represents a single list filter condition.
type Filter interface {
	// SQL returns the SQL fragment for this filter
	SQL() string

	// Args returns the arguments for this filter
	Args() []interface{}

	// Valid checks if the filter is valid
	Valid() bool
}

// FieldFilter filters by equality on a single column.
type FieldFilter struct {
	Column string
	Value  interface{}
}

// Valid checks that a column name is present.
func (f *FieldFilter) Valid() bool {
	return f.Column != ""
}

// SQL returns the SQL fragment for field equality.
func (f *FieldFilter) SQL() string {
	return f.Column + " = ?"
}

// Args returns the arguments for field equality.
func (f *FieldFilter) Args() []interface{} {
	return []interface{}{f.Value}
}

// TaskTypeFilter filters care tasks by category.
type TaskTypeFilter struct {
	TaskType models.TaskType
}

// Valid checks if the task type is a known category.
func (f *TaskTypeFilter) Valid() bool {
	return f.TaskType.Valid()
}

// SQL returns the SQL fragment for task type filtering.
func (f *TaskTypeFilter) SQL() string {
	return "task_type = ?"
}

// Args returns the arguments for task type filtering.
func (f *TaskTypeFilter) Args() []interface{} {
	return []interface{}{f.TaskType}
}

// TagsFilter filters plants by tag membership against the plant_tags
// table. A plant matches when it carries any of the given tags.
type TagsFilter struct {
	Tags []string
}

// Valid checks that at least one non-blank tag is present.
func (f *TagsFilter) Valid() bool {
	if len(f.Tags) == 0 {
		return false
	}
	for _, tag := range f.Tags {
		if strings.TrimSpace(tag) == "" {
			return false
		}
	}
	return true
}

// SQL returns the tag-membership subquery.
func (f *TagsFilter) SQL() string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(f.Tags)), ", ")
	return "EXISTS (SELECT 1 FROM plant_tags pt WHERE pt.plant_id = plants.id AND pt.tag IN (" + placeholders + "))"
}

// Args returns the arguments for tag filtering.
func (f *TagsFilter) Args() []interface{} {
	args := make([]interface{}, 0, len(f.Tags))
	for _, tag := range f.Tags {
		args = append(args, strings.TrimSpace(tag))
	}
	return args
}

// FilterBuilder builds a SQL WHERE clause from multiple filters.
type FilterBuilder struct {
	filters []Filter
}

// NewFilterBuilder creates a new FilterBuilder.
func NewFilterBuilder() *FilterBuilder {
	return &FilterBuilder{
		filters: make([]Filter, 0),
	}
}

// Add appends any filter, dropping invalid ones.
func (fb *FilterBuilder) Add(f Filter) *FilterBuilder {
	if f.Valid() {
		fb.filters = append(fb.filters, f)
	}
	return fb
}

// Field adds an equality filter on a column.
func (fb *FilterBuilder) Field(column string, value interface{}) *FilterBuilder {
	return fb.Add(&FieldFilter{Column: column, Value: value})
}

// TaskType adds a task category filter.
func (fb *FilterBuilder) TaskType(t models.TaskType) *FilterBuilder {
	return fb.Add(&TaskTypeFilter{TaskType: t})
}

// Tags adds a tag-membership filter.
func (fb *FilterBuilder) Tags(tags ...string) *FilterBuilder {
	return fb.Add(&TagsFilter{Tags: tags})
}

// ActiveOnly excludes soft-deleted rows.
func (fb *FilterBuilder) ActiveOnly() *FilterBuilder {
	fb.filters = append(fb.filters, activeFilter{})
	return fb
}

// HasFilters returns true if any filters have been added.
func (fb *FilterBuilder) HasFilters() bool {
	return len(fb.filters) > 0
}

// Count returns the number of filters.
func (fb *FilterBuilder) Count() int {
	return len(fb.filters)
}

// Build builds the SQL WHERE clause (without the WHERE keyword) and
// returns the arguments.
func (fb *FilterBuilder) Build() (string, []interface{}) {
	if !fb.HasFilters() {
		return "", nil
	}

	var sqlParts []string
	var args []interface{}

	for _, filter := range fb.filters {
		sqlParts = append(sqlParts, filter.SQL())
		args = append(args, filter.Args()...)
	}

	return strings.Join(sqlParts, " AND "), args
}

// whereClause prefixes the built fragment with WHERE when non-empty.
func (fb *FilterBuilder) whereClause() (string, []interface{}) {
	clause, args := fb.Build()
	if clause == "" {
		return "", nil
	}
	return " WHERE " + clause, args
}

// activeFilter excludes tombstoned rows.
type activeFilter struct{}

func (activeFilter) SQL() string         { return "deleted_at IS NULL" }
func (activeFilter) Args() []interface{} { return nil }
func (activeFilter) Valid() bool         { return true }
