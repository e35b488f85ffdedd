package memory

import "context"

func (s *Store) NextSequenceValue(ctx context.Context, series string, period string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := series + "/" + period
	s.sequences[key]++
	return s.sequences[key], nil
}
