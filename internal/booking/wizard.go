package booking

// Wizard walks a client through the steps of one booking kind. It is a
// plain cursor over the descriptor's step list; collected answers are kept
// as opaque key/value pairs until submission.
type Wizard struct {
	descriptor Descriptor
	step       int
	answers    map[string]string
}

// NewWizard starts a wizard for the given kind.
func NewWizard(kind Kind) (*Wizard, error) {
	d, err := DescriptorFor(kind)
	if err != nil {
		return nil, err
	}
	return &Wizard{
		descriptor: d,
		answers:    make(map[string]string),
	}, nil
}

// Descriptor returns the descriptor the wizard was built from.
func (w *Wizard) Descriptor() Descriptor {
	return w.descriptor
}

// Current returns the name of the current step.
func (w *Wizard) Current() string {
	return w.descriptor.Steps[w.step]
}

// Done reports whether the wizard is on its final step.
func (w *Wizard) Done() bool {
	return w.step == len(w.descriptor.Steps)-1
}

// Next advances to the next step, staying on the last one once reached.
func (w *Wizard) Next() string {
	if w.step < len(w.descriptor.Steps)-1 {
		w.step++
	}
	return w.Current()
}

// Back returns to the previous step, staying on the first one.
func (w *Wizard) Back() string {
	if w.step > 0 {
		w.step--
	}
	return w.Current()
}

// Answer records a value for the current step.
func (w *Wizard) Answer(key, value string) {
	w.answers[key] = value
}

// Answers returns a copy of the collected answers.
func (w *Wizard) Answers() map[string]string {
	out := make(map[string]string, len(w.answers))
	for k, v := range w.answers {
		out[k] = v
	}
	return out
}
