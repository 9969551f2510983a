// Package context holds the state shared by the application and its commands.
//
// It's separate from the app package so that the cli package can depend on it
// without importing app.
package context
