// Package classifier implements the URL risk classifier.
//
// The classifier turns a URL into a risk score in [0,100], a status tier
// (safe, warning, danger) and an ordered list of reasons. Scoring is a plain
// sum of rule penalties:
//
//   - every denylist pattern contained in the lowercase URL adds a fixed penalty
//   - a scheme other than https adds a fixed penalty
//   - a host ending in a suspicious top-level domain adds a fixed penalty
//
// followed by a uniformly random jitter and a clamp to [0,100]. When no rule
// fires, the placeholder positive reasons are reported instead.
//
// The rule data comes from config.Rules so that the lists can be replaced
// without touching the algorithm. The random source is injectable so that
// tests can pin the jitter.
//
// # Usage
//
//	c := classifier.New(config.DefaultRules())
//	outcome, err := c.Classify("http://verify-account.tk")
//	if errors.Is(err, classifier.ErrInvalidInput) {
//	    // tell the user to enter a valid URL
//	}
package classifier
