// Package types defines the record families tracked by lifelog, the
// interfaces shared by the stores and engines, and the standard errors
// used across the module.
//
// Every tracked record belongs to exactly one Family (expense, income,
// sleep, daily, diary, reading, music). Families differ in their field
// schema, their per-day cardinality, and whether records may carry an
// image attachment; the Family descriptor captures those differences so
// the stores and the import/export engine can stay generic.
package types
