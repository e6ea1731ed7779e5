package strand

// Dataset is an ordered, read-only sequence of samples. Insertion order
// decides between neighbors at equal distance.
type Dataset struct {
	samples []Sample
	vectors [][]float64
}

// NewDataset copies samples into a Dataset.
func NewDataset(samples []Sample) *Dataset {
	d := &Dataset{
		samples: make([]Sample, len(samples)),
		vectors: make([][]float64, len(samples)),
	}
	copy(d.samples, samples)
	for i, s := range d.samples {
		d.vectors[i] = s.scores.Vector()
	}
	return d
}

// Len returns the number of samples.
func (d *Dataset) Len() int { return len(d.samples) }

// At returns the i-th sample.
func (d *Dataset) At(i int) Sample { return d.samples[i] }

// Vector returns the coordinates of the i-th sample. Callers must not
// modify the returned slice.
func (d *Dataset) Vector(i int) []float64 { return d.vectors[i] }

// Samples returns a copy of the samples.
func (d *Dataset) Samples() []Sample {
	out := make([]Sample, len(d.samples))
	copy(out, d.samples)
	return out
}

// Subset returns a dataset holding the samples at the given indices, in
// the order given.
func (d *Dataset) Subset(indices []int) *Dataset {
	sub := &Dataset{
		samples: make([]Sample, len(indices)),
		vectors: make([][]float64, len(indices)),
	}
	for i, idx := range indices {
		sub.samples[i] = d.samples[idx]
		sub.vectors[i] = d.vectors[idx]
	}
	return sub
}

// IndicesByLabel groups sample indices by label, each group in insertion
// order.
func (d *Dataset) IndicesByLabel() map[Label][]int {
	out := make(map[Label][]int)
	for i, s := range d.samples {
		out[s.label] = append(out[s.label], i)
	}
	return out
}

// Counts returns the number of samples per label. All labels are present.
func (d *Dataset) Counts() map[Label]int {
	out := make(map[Label]int, 3)
	for _, l := range AllLabels() {
		out[l] = 0
	}
	for _, s := range d.samples {
		out[s.label]++
	}
	return out
}

// Labels returns the labels that occur in the dataset, in precedence order.
func (d *Dataset) Labels() []Label {
	counts := d.Counts()
	var out []Label
	for _, l := range AllLabels() {
		if counts[l] > 0 {
			out = append(out, l)
		}
	}
	return out
}
