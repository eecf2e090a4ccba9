package graph

import "golang.org/x/xerrors"

var (
	// ErrNotFound is returned when a link or edge lookup fails.
	ErrNotFound = xerrors.New("not found")

	// ErrEmptyURL is returned when attempting to upsert a link or edge
	// without a URL.
	ErrEmptyURL = xerrors.New("link URL must not be empty")
)
