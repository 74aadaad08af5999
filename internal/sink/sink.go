// Package sink persists tournament records to the relational store and reads
// them back.
package sink

import (
	"context"

	"github.com/badmintongame/tournament-sync/internal/tournament"
)

// Sink accepts validated records one at a time. Each Insert is durable on
// return; there is no batching and no transaction spanning calls.
type Sink interface {
	Insert(ctx context.Context, rec tournament.Record) error
	Close(ctx context.Context) error
}

// Lister pages through stored tournaments.
type Lister interface {
	List(ctx context.Context, q Query) (*Page, error)
	Close(ctx context.Context) error
}
