package store

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"regbot/model"
)

// Mirror writes to a primary store and any number of secondaries. Reads are
// served by the primary. A failed secondary write is logged and does not
// fail the call; only the primary's result is returned.
type Mirror struct {
	primary     Named
	secondaries []Named
}

// Named pairs a store with the backend name used in logs.
type Named struct {
	Name  string
	Store Store
}

func NewMirror(primary Named, secondaries ...Named) *Mirror {
	return &Mirror{primary: primary, secondaries: secondaries}
}

// each runs fn against every backend concurrently and returns the primary's error.
func (m *Mirror) each(op string, fn func(s Store) error) error {
	var g errgroup.Group
	var primaryErr error
	g.Go(func() error {
		primaryErr = fn(m.primary.Store)
		return nil
	})
	for _, sec := range m.secondaries {
		g.Go(func() error {
			if err := fn(sec.Store); err != nil {
				log.Printf("[store] mirror %s: %s failed: %v", sec.Name, op, err)
			}
			return nil
		})
	}
	_ = g.Wait()
	if primaryErr != nil {
		return fmt.Errorf("%s: %w", m.primary.Name, primaryErr)
	}
	return nil
}

func (m *Mirror) Upsert(ctx context.Context, userID string, fields model.SubmissionFields) error {
	return m.each("upsert", func(s Store) error {
		return s.Upsert(ctx, userID, fields)
	})
}

func (m *Mirror) Remove(ctx context.Context, userID string) (bool, error) {
	var removed bool
	err := m.each("remove", func(s Store) error {
		ok, err := s.Remove(ctx, userID)
		if s == m.primary.Store {
			removed = ok
		}
		return err
	})
	return removed, err
}

func (m *Mirror) Get(ctx context.Context, userID string) (*model.Submission, error) {
	return m.primary.Store.Get(ctx, userID)
}

func (m *Mirror) LoadConfirmedIDs(ctx context.Context) ([]string, error) {
	return m.primary.Store.LoadConfirmedIDs(ctx)
}

func (m *Mirror) Export(ctx context.Context) ([]byte, error) {
	return m.primary.Store.Export(ctx)
}

func (m *Mirror) Close() error {
	errs := []error{m.primary.Store.Close()}
	for _, sec := range m.secondaries {
		errs = append(errs, sec.Store.Close())
	}
	return errors.Join(errs...)
}
