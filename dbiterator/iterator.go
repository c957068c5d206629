// Package dbiterator walks query results one row at a time. Iterators are forward
// only: once a row has been read they cannot be restarted.
package dbiterator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/georgysavva/scany/v2/sqlscan"
)

var (
	ErrExhausted = errors.New("dbiterator: iterator cannot be rewound")
	ErrQuery     = errors.New("dbiterator: query failed")
)

type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
	_ Querier = (*sql.Conn)(nil)
)

type rowScanner interface {
	Scan(dst any) error
}

// Iterator materializes one row of type T per Next call. T may be a struct (columns
// match `db` tags or snake_case field names), a map[string]any or a scalar for
// single column results.
type Iterator[T any] struct {
	rows    *sql.Rows
	scanner rowScanner
	current T
	count   int
	err     error
	done    bool
}

func New[T any](rows *sql.Rows) *Iterator[T] {
	var zero T

	return &Iterator[T]{
		rows:    rows,
		scanner: sqlscan.NewRowScanner(rows),
		current: zero,
		count:   0,
		err:     nil,
		done:    false,
	}
}

// Query runs query on db and returns an iterator over its rows.
func Query[T any](ctx context.Context, db Querier, query string, args ...any) (*Iterator[T], error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}

	return New[T](rows), nil
}

func (it *Iterator[T]) Next() bool {
	if it.done {
		return false
	}

	if !it.rows.Next() {
		it.finish(it.rows.Err())

		return false
	}

	var item T
	if err := it.scanner.Scan(&item); err != nil {
		it.finish(fmt.Errorf("dbiterator: scan row %d: %w", it.count, err))

		return false
	}

	it.current = item
	it.count++

	return true
}

func (it *Iterator[T]) finish(err error) {
	it.done = true

	var zero T
	it.current = zero

	if err != nil && it.err == nil {
		it.err = err
	}

	if closeErr := it.rows.Close(); closeErr != nil && it.err == nil {
		it.err = closeErr
	}
}

// Current returns the row read by the last successful Next.
func (it *Iterator[T]) Current() T {
	return it.current
}

// Key is the zero-based position of Current, or -1 before the first row and once
// the iterator is exhausted or closed.
func (it *Iterator[T]) Key() int {
	if it.done {
		return -1
	}

	return it.count - 1
}

// Count reports how many rows have been read so far.
func (it *Iterator[T]) Count() int {
	return it.count
}

func (it *Iterator[T]) Err() error {
	return it.err
}

// Rewind succeeds only while no row has been consumed.
func (it *Iterator[T]) Rewind() error {
	if it.count > 0 || it.done {
		return ErrExhausted
	}

	return nil
}

func (it *Iterator[T]) Close() error {
	if it.done {
		return nil
	}

	it.finish(nil)

	return it.err
}

// All ranges over the remaining rows. Check Err afterwards.
func (it *Iterator[T]) All() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		for it.Next() {
			if !yield(it.Key(), it.Current()) {
				_ = it.Close()

				return
			}
		}
	}
}

// Collect drains the iterator into a slice and closes it.
func Collect[T any](it *Iterator[T]) ([]T, error) {
	var items []T

	for _, item := range it.All() {
		items = append(items, item)
	}

	return items, it.Err()
}
