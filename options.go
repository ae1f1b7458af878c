package stusb4500

import "time"

type config struct {
	// Maximum reads of FTP_CTRL_0 per NVM command. Zero means no limit.
	maxPolls int

	// Pause between polls, growing from min to max. Zero min means polls are
	// issued back to back.
	pollMin, pollMax time.Duration
}

// Option configures a Dev.
type Option func(*config)

// WithMaxPolls bounds the number of times FTP_CTRL_0 is read while waiting
// for an NVM command to finish. When the bound is hit the NVM operation fails
// with ErrPollTimeout. By default polling is unbounded and a device that never
// clears its busy bit blocks the caller forever.
func WithMaxPolls(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxPolls = n
		}
	}
}

// WithPollBackoff sleeps between polls of the NVM busy bit, starting at min
// and doubling up to max.
func WithPollBackoff(min, max time.Duration) Option {
	return func(c *config) {
		if max < min {
			max = min
		}
		c.pollMin, c.pollMax = min, max
	}
}
