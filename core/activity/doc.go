// Package activity manages the user-defined activities fed to the planner
// and their versioned persistence document.
package activity
