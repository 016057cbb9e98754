// Package terminal drives the controlling terminal for the editor: it switches the line
// discipline into raw mode and back, detects the window size and performs unbuffered reads and
// writes on the terminal file descriptors.
package terminal
