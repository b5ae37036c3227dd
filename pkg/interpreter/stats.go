package interpreter

// Stats holds the counters reported through --stats
type Stats struct {
	Instructions int // executed instructions
	MaxVars      int // peak number of simultaneously assigned variables
}

func (s *Stats) observe(frames *FrameStore) {
	s.Instructions++
	if n := frames.AssignedCount(); n > s.MaxVars {
		s.MaxVars = n
	}
}

// Stats returns the collected statistics; ok is false when collection is disabled
func (i *Interpreter) Stats() (Stats, bool) {
	if i.stats == nil {
		return Stats{}, false
	}
	return *i.stats, true
}
