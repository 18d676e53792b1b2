package scheme

// StaticSource always reports the same scheme and never notifies. It is the
// fallback when no desktop portal is reachable (headless deployments).
type StaticSource struct { // implements Source
	scheme Scheme
}

func NewStaticSource(s Scheme) *StaticSource {
	return &StaticSource{scheme: s}
}

func (s *StaticSource) Current() Scheme {
	return s.scheme
}

func (s *StaticSource) Subscribe(fn func(Scheme)) (func(), error) {
	return func() {}, nil
}
