// Package types defines the Book record, the Catalog interface, the
// configuration struct, and the standard error values shared by every
// catalog backend.
package types
