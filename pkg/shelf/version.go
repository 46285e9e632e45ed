// Package shelf holds module-level metadata for the shelf catalog tool.
package shelf

// Version is the current release of the shelf module.
const Version = "0.1.0"
