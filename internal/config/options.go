package config

// Options controls a single verification pass.
type Options struct {
	// RequireSameFile rejects an original declared in a different source file
	// than its derivative.
	RequireSameFile bool

	// Workers is the number of goroutines verifying independent requests.
	// Values below 1 are treated as 1.
	Workers int
}

// DefaultOptions returns the options used when none are given.
func DefaultOptions() Options {
	return Options{
		RequireSameFile: true,
		Workers:         1,
	}
}

// WorkerCount returns the effective worker count.
func (o Options) WorkerCount() int {
	if o.Workers < 1 {
		return 1
	}
	return o.Workers
}
