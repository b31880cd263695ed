package withdefer

// Option configures a single coordinator invocation.
type Option func(*config)

type config struct {
	name     string
	observer Observer
}

func defaultConfig() config {
	return config{observer: NopObserver{}}
}

// WithName attaches a name to the scope. The name appears in reports, logs
// and traces; it has no effect on execution.
func WithName(name string) Option {
	return func(c *config) {
		c.name = name
	}
}

// WithObserver installs an observer for scope lifecycle events. A nil
// observer is ignored.
func WithObserver(o Observer) Option {
	return func(c *config) {
		if o != nil {
			c.observer = o
		}
	}
}
