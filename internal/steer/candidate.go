package steer

// FindBetter searches ref's station's other observations, in insertion
// order, for one that is fresh, shares ref's node's SSID, is no older than
// maxAgeMs (0 means unbounded), and that Evaluate judges better than ref by
// at least one bit in required. It returns the first such candidate and
// the reasons it qualified, or (nil, 0) if none match.
//
// A required of 0 never matches anything: every candidate's reasons
// intersected with 0 is always 0, so the "any reason" sentinel is
// ReasonSetAll, not 0.
func FindBetter(cfg *Config, now int64, ref *Observation, required ReasonSet, maxAgeMs int64) (*Observation, ReasonSet) {
	for _, cand := range ref.Station.Observations() {
		if cand == ref {
			continue
		}
		if now-cand.Seen > cfg.SeenPolicyTimeout {
			continue
		}
		if cand.Node.SSID != ref.Node.SSID {
			continue
		}
		if maxAgeMs > 0 && now-cand.Seen > maxAgeMs {
			continue
		}
		reasons := Evaluate(cfg, ref, cand)
		if reasons == 0 {
			continue
		}
		if reasons&required == 0 {
			continue
		}
		return cand, reasons
	}
	return nil, 0
}
