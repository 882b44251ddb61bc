// Package tui is the terminal host shell for the gallery: a search box, a
// grid of character cards and the page-number window.
package tui

import (
	"context"

	"github.com/Sternrassler/character-gallery/pkg/controller"
)

// Gallery is the controller surface the TUI drives.
type Gallery interface {
	SetSearchText(ctx context.Context, text string) error
	SetPage(ctx context.Context, n int) error
	Previous(ctx context.Context) error
	Next(ctx context.Context) error
	FetchResults(ctx context.Context) error
	Snapshot() controller.View
}

// ViewMsg carries a controller snapshot. The controller observer sends one
// after every state change.
type ViewMsg struct {
	View controller.View
}

// eventDoneMsg reports that an input event's fetch finished. Its outcome is
// already reflected in the snapshots; only the op name is kept for tests.
type eventDoneMsg struct {
	Op  string
	Err error
}
