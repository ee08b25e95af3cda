// Package types holds the data structures shared by the service, storage
// and HTTP layers. Keeping them here avoids import cycles between those
// packages.
package types

// Student is a single student record.
//
// ID is assigned by the storage backend when the record is first saved and
// never changes afterwards. The validate tags are only enforced at the HTTP
// edge; the service layer accepts any values.
type Student struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"   validate:"required"`
	Email  string `json:"email"  validate:"required,email"`
	Course string `json:"course" validate:"required"`
}
