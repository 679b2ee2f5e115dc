// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for smart playlist generation:
//  1. [GeneratingView] : Watch rule evaluation progress against the library
//  2. [PreviewListView] : Browse the previewed track list
//  3. [ConfirmView] : Confirm playlist creation
//  4. [CreatingView] : Monitor creation progress
//  5. [ResultView] : Display the created playlist summary
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern.
// Progress updates flow through a channel from the generator, providing non-blocking status reporting during long runs.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
