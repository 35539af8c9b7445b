package feature

// Labels tracks a slice of features and their index locations that match up
// with the ordering of the coefficients assigned to each of these features.
type Labels struct {
	idx    map[string]int
	labels []Feature
}

func NewLabels(labels []Feature) *Labels {
	idx := make(map[string]int)
	for i := 0; i < len(labels); i++ {
		idx[labels[i].String()] = i
	}
	fl := &Labels{
		labels: labels,
		idx:    idx,
	}
	return fl
}

// ParseLabels builds Labels from their string form, keeping the order given
func ParseLabels(names []string) (*Labels, error) {
	labels := make([]Feature, 0, len(names))
	for _, name := range names {
		f, err := Parse(name)
		if err != nil {
			return nil, err
		}
		labels = append(labels, f)
	}
	return NewLabels(labels), nil
}

func (f *Labels) Len() int {
	return len(f.labels)
}

func (f *Labels) Labels() []Feature {
	labels := make([]Feature, len(f.labels))
	copy(labels, f.labels)
	return labels
}

func (f *Labels) Strings() []string {
	res := make([]string, len(f.labels))
	for i, label := range f.labels {
		res[i] = label.String()
	}
	return res
}

func (f *Labels) Index(label Feature) (int, bool) {
	if idx, exists := f.idx[label.String()]; exists {
		return idx, exists
	}
	return -1, false
}
