// Package price turns a price sensor document into model price points and
// defines the sources the host reads those documents from.
package price
