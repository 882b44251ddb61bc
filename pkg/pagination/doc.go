// Package pagination computes the page-number navigation window shown
// beneath the gallery.
//
// The window is centred on the current page and always holds windowSize
// pages unless the whole range is shorter:
//
//	pagination.Window(1, 42, 5)  // 1, 5
//	pagination.Window(20, 42, 5) // 18, 22
//	pagination.Window(42, 42, 5) // 38, 42
package pagination
