package store

import "context"

// Purge replaces the document with an empty one.
func (s *Store) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backend.Save(ctx, emptyDatabase())
}

// Stats counts the records in each collection.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	err := s.view(ctx, func(db *Database) error {
		st = Stats{
			Users:      len(db.Users),
			Households: len(db.Households),
			Recipes:    len(db.Recipes),
			WeekPlans:  len(db.WeekPlans),
		}
		return nil
	})
	return st, err
}
