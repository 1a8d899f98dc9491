package buffer

// Option is a functional option for configuring Contents.
type Option func(*Contents)

// WithSlack sets the extra capacity allocated whenever the region grows.
// Negative values are ignored.
func WithSlack(n int) Option {
	return func(c *Contents) {
		if n >= 0 {
			c.slack = n
		}
	}
}
