package scm

// Configuration is the four-flag build policy deciding which pull request
// renditions get discovered and which may build with full privileges. The
// flags are independent; the zero value scans branches only, which is valid.
type Configuration struct {
	// BuildOriginPRHead builds the unmerged tip of pull requests from the
	// repository's own namespace.
	BuildOriginPRHead bool
	// BuildOriginPRMerge builds the synthetic merge of such pull requests.
	BuildOriginPRMerge bool
	// BuildForkPRHead builds the unmerged tip of pull requests from forks.
	BuildForkPRHead bool
	// BuildForkPRMerge builds the synthetic merge of fork pull requests.
	BuildForkPRMerge bool
}

// DefaultConfiguration builds the merge rendition of same-namespace pull
// requests and the head rendition of fork pull requests.
func DefaultConfiguration() Configuration {
	return Configuration{
		BuildOriginPRMerge: true,
		BuildForkPRHead:    true,
	}
}

// Enabled reports whether the flag for the given origin class and checkout
// strategy is set.
func (c Configuration) Enabled(origin Origin, strategy CheckoutStrategy) bool {
	switch {
	case origin == OriginDefault && strategy == CheckoutHead:
		return c.BuildOriginPRHead
	case origin == OriginDefault && strategy == CheckoutMerge:
		return c.BuildOriginPRMerge
	case origin == OriginFork && strategy == CheckoutHead:
		return c.BuildForkPRHead
	default:
		return c.BuildForkPRMerge
	}
}

// Strategies returns the enabled checkout strategies for an origin class,
// HEAD before MERGE. The order fixes candidate evaluation order within one
// pull request.
func (c Configuration) Strategies(origin Origin) []CheckoutStrategy {
	var strategies []CheckoutStrategy
	if c.Enabled(origin, CheckoutHead) {
		strategies = append(strategies, CheckoutHead)
	}
	if c.Enabled(origin, CheckoutMerge) {
		strategies = append(strategies, CheckoutMerge)
	}
	return strategies
}
