// Package domain contains entity without logic, just meta-data and the
// normalization rules every layer agrees on.
package domain
