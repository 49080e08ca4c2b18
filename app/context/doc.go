// Package context contains the state shared by all commands: I/O, the
// filesystem, the loaded configuration and the open database.
//
// It's separate from the app package to avoid an import cycle with cli.
package context
