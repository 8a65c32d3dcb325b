package fraggen

// Probe is one addressing primer of the microarray, loaded once and
// read-only for the lifetime of a run.
type Probe struct {
	ID  string
	Seq string
}

// Assignment pairs each data object with one probe. The relation is fixed
// before generation starts; the validator only ever sees ProbeFor, so the
// cardinality can change without touching it.
type Assignment struct {
	probes []Probe
}

// AssignProbes builds the object->probe relation, one probe per object by
// index. A pool smaller than the object count wraps around (and is warned
// about: those objects share an address).
func AssignProbes(objectCount int, probes []Probe) (*Assignment, error) {
	if len(probes) == 0 {
		return nil, ErrProbePool.New("no probes loaded")
	}

	if objectCount != len(probes) {
		stderr.Printf("WARNING: objects (%d) != probes (%d)", objectCount, len(probes))
	}

	return &Assignment{probes: probes}, nil
}

// ProbeFor is the probe addressing the given object.
func (a *Assignment) ProbeFor(objectID int) Probe {
	return a.probes[objectID%len(a.probes)]
}

// Probes is the full read-only pool.
func (a *Assignment) Probes() []Probe {
	return a.probes
}
