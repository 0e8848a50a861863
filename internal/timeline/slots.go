package timeline

// Slot is a user-fillable anchor point tied to a 1-based position in the
// fixed sequence. The anchor never changes after construction; the clip may
// be empty, and holds at most one upload.
type Slot struct {
	Anchor int
	Clip   *Clip
}

// Merge splices filled slots into the fixed sequence: for each fixed position
// p it emits the fixed clip, then the clip of any slot anchored at p. The
// merged sequence is a pure function of its inputs and is rebuilt on demand,
// never stored.
func Merge(fixed []Clip, slots []Slot) Sequence {
	byAnchor := make(map[int]*Clip, len(slots))
	for _, slot := range slots {
		if slot.Clip != nil {
			byAnchor[slot.Anchor] = slot.Clip
		}
	}

	merged := make(Sequence, 0, len(fixed)+len(byAnchor))
	for i, c := range fixed {
		merged = append(merged, c)
		if upload, ok := byAnchor[i+1]; ok {
			merged = append(merged, *upload)
		}
	}
	return merged
}
