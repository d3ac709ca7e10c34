// batch.go: Concurrent parsing of independent token streams
//
// A parser is not reentrant, so each stream gets its own parser from the
// factory. Streams run concurrently; the first failure cancels the rest.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package argparse

import (
	"context"
	"fmt"

	"github.com/agilira/go-errors"
	"golang.org/x/sync/errgroup"
)

// StreamError reports which stream failed.
type StreamError struct {
	Stream int
	Err    error
}

func (e *StreamError) Error() string { return fmt.Sprintf("stream %d: %v", e.Stream, e.Err) }

// Unwrap returns the parse or factory error.
func (e *StreamError) Unwrap() error { return e.Err }

// ErrorCode forwards the code of the underlying error.
func (e *StreamError) ErrorCode() errors.ErrorCode {
	if ec, ok := e.Err.(errors.ErrorCoder); ok {
		return ec.ErrorCode()
	}
	return ErrCodeBatchFailure
}

// ParserFactory builds a fresh parser for one token stream.
type ParserFactory func() (*ArgumentParser, error)

// ParseConcurrently parses every stream with its own parser and returns the
// parsers in stream order. On failure the first error is returned as a
// *StreamError.
func ParseConcurrently(ctx context.Context, factory ParserFactory, streams [][]string) ([]*ArgumentParser, error) {
	parsers := make([]*ArgumentParser, len(streams))
	g, ctx := errgroup.WithContext(ctx)

	for i, tokens := range streams {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			p, err := factory()
			if err != nil {
				return &StreamError{Stream: i, Err: err}
			}
			if err := p.Parse(tokens); err != nil {
				return &StreamError{Stream: i, Err: err}
			}
			parsers[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return parsers, nil
}
