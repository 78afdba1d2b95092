package static

func WithUserHeader(val string) Option {
	return func(p *Provider) {
		p.userHeader = val
	}
}

// WithTokens accepts additional bearer tokens, e.g. during a rotation.
func WithTokens(tokens ...string) Option {
	return func(p *Provider) {
		for _, t := range tokens {
			if t != "" {
				p.tokens = append(p.tokens, t)
			}
		}
	}
}
