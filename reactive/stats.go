package reactive

// Stats summarises the work a reconciler has done since it was created.
type Stats struct {
	Bindings int
	Inserts  int64
	Updates  int64
	Moves    int64
	Deletes  int64
	Clears   int64
	Misses   int64
	Lookups  int64
	Probes   int64
}

// ProbesPerLookup is the mean number of identity matches per exact-slot
// lookup. 1 means every lookup hit its sorted slot.
func (s Stats) ProbesPerLookup() float64 {
	if s.Lookups == 0 {
		return 0
	}
	return float64(s.Probes) / float64(s.Lookups)
}

type reconcilerStats struct {
	inserts int64
	updates int64
	moves   int64
	deletes int64
	clears  int64
	misses  int64
}
