// Package resource bounds the background work an engine may run: how many
// backup or restore jobs run at once, how much memory they may stage and how
// fast they may move bytes.
package resource
