package network

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/will-rowe/cdrnet/src/index"
	"github.com/will-rowe/cdrnet/src/seqio"
	"golang.org/x/sync/errgroup"
)

// Neighbours searches the index for one record and returns the edges it owns, in the order the search found the neighbours
// the index payloads must be offsets into records
func Neighbours(r *seqio.Record, records []*seqio.Record, idx *index.Index, constraint index.Constraint) ([]*Edge, error) {
	edges := []*Edge{}
	for _, neighbour := range idx.Neighbourhood(r.Seq, constraint) {
		if neighbour.Payload < 0 || neighbour.Payload >= len(records) {
			return nil, fmt.Errorf("index payload %d is not a record (have %d records)", neighbour.Payload, len(records))
		}
		c := records[neighbour.Payload]
		if !Owns(r, c) {
			continue
		}
		edges = append(edges, NewEdge(r, c, neighbour.Alignment.Mutations))
	}
	return edges, nil
}

// Build runs one search task per record on a pool of numProc workers and sends every owned edge to out
// the index must hold every record before Build is called and is only read from here on
// progress, if not nil, is called with the number of completed tasks after each task finishes (from the worker goroutines)
// the first failing task cancels the others and its error is returned; out is never closed by Build
func Build(ctx context.Context, records []*seqio.Record, idx *index.Index, constraint index.Constraint, numProc int, out chan<- *Edge, progress func(int)) error {
	if err := constraint.Validate(); err != nil {
		return err
	}
	if numProc < 1 {
		numProc = 1
	}
	var completed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(numProc)
	for _, record := range records {
		if gctx.Err() != nil {
			break
		}
		r := record
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			edges, err := Neighbours(r, records, idx, constraint)
			if err != nil {
				return err
			}
			for _, edge := range edges {
				select {
				case out <- edge:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			done := atomic.AddInt64(&completed, 1)
			if progress != nil {
				progress(int(done))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
