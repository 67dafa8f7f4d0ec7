package imagepath

// Outcome of a single candidate attempt
type Outcome string

const (
	OutcomeLoaded      Outcome = "loaded"
	OutcomeFailed      Outcome = "failed"
	OutcomePlaceholder Outcome = "placeholder"
)

// Attempt records one candidate that was tried
type Attempt struct {
	Index   int
	URL     string
	Outcome Outcome
}

// Resolver walks a candidate list: advance on failure, stop on success or
// once the placeholder (always last) is current.
type Resolver struct {
	candidates []string
	index      int
	loaded     bool
	exhausted  bool
	attempts   []Attempt
}

// NewResolver creates a resolver for path
func NewResolver(path, placeholder string) *Resolver {
	return &Resolver{candidates: Candidates(path, placeholder)}
}

// Candidates returns a copy of the candidate list
func (r *Resolver) Candidates() []string {
	return append([]string(nil), r.candidates...)
}

// Current returns the URL currently bound
func (r *Resolver) Current() string {
	return r.candidates[r.index]
}

// Index returns the position of the current candidate
func (r *Resolver) Index() int {
	return r.index
}

// Terminal reports whether the placeholder is bound
func (r *Resolver) Terminal() bool {
	return r.index == len(r.candidates)-1
}

// Loaded reports whether a candidate loaded successfully
func (r *Resolver) Loaded() bool {
	return r.loaded
}

// Exhausted reports whether the placeholder itself failed
func (r *Resolver) Exhausted() bool {
	return r.exhausted
}

// Done reports whether no further attempts will be made
func (r *Resolver) Done() bool {
	return r.loaded || r.exhausted
}

// Succeed marks the current candidate as loaded
func (r *Resolver) Succeed() {
	if r.Done() {
		return
	}
	r.loaded = true
	r.record(OutcomeLoaded)
}

// Fail marks the current candidate as failed and advances.
// It returns the next URL and true, or the placeholder and false once the
// placeholder itself has failed; further failures are absorbed.
func (r *Resolver) Fail() (string, bool) {
	if r.Done() {
		return r.Current(), false
	}
	if r.Terminal() {
		r.record(OutcomePlaceholder)
		r.exhausted = true
		return r.Current(), false
	}
	r.record(OutcomeFailed)
	r.index++
	return r.Current(), true
}

// Attempts returns the recorded attempts in order
func (r *Resolver) Attempts() []Attempt {
	return append([]Attempt(nil), r.attempts...)
}

func (r *Resolver) record(o Outcome) {
	r.attempts = append(r.attempts, Attempt{Index: r.index, URL: r.Current(), Outcome: o})
}

// Binding is the src/alt pair for an image element
type Binding struct {
	Src        string   `json:"src"`
	Alt        string   `json:"alt"`
	Candidates []string `json:"candidates"`
}

// Bind returns the binding for the current state. A resolver without a
// declared path binds "No image available"; one that fell through to the
// placeholder binds "Image not available".
func (r *Resolver) Bind(alt string) Binding {
	b := Binding{Src: r.Current(), Alt: alt, Candidates: r.Candidates()}
	switch {
	case len(r.candidates) == 1:
		b.Alt = AltNoImage
	case r.Terminal():
		b.Alt = AltNotAvailable
	}
	return b
}

// Bind returns the initial binding for an image
func Bind(path, alt, placeholder string) Binding {
	return NewResolver(path, placeholder).Bind(alt)
}
