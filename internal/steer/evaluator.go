package steer

// SNRToSignal converts an SNR threshold into an absolute signal level for
// node, relative to its noise floor (or the default noise floor if the
// node never reported one). A negative snr is returned unchanged, matching
// the original's treatment of already-absolute (negative dBm) thresholds.
func SNRToSignal(node *Node, snr int) int {
	if snr < 0 {
		return snr
	}
	return node.noiseOrDefault() + snr
}

// belowMaxAssoc reports whether cand's node still has room for another
// association.
func belowMaxAssoc(cand *Observation) bool {
	return cand.Node.MaxAssoc == 0 || cand.Node.NAssoc < cand.Node.MaxAssoc
}

// overMinSignal reports whether o's signal clears both the min_snr and
// roam_trigger_snr floors, when configured.
func overMinSignal(cfg *Config, o *Observation) bool {
	if cfg.MinSNR > 0 && o.Signal < SNRToSignal(o.Node, cfg.MinSNR) {
		return false
	}
	if cfg.RoamTriggerSNR > 0 && o.Signal < SNRToSignal(o.Node, cfg.RoamTriggerSNR) {
		return false
	}
	return true
}

// belowAssocThreshold reports whether new_'s (band- and load-balancing-
// adjusted) association count is still at or below cur's. cur plays the
// "reference" role and new_ the "candidate" role; is_better_candidate
// calls this twice with the roles swapped to get a strict asymmetric
// comparison.
func belowAssocThreshold(cfg *Config, cur, new_ *Observation) bool {
	nCur := cur.Node.NAssoc
	nNew := new_.Node.NAssoc

	switch {
	case cur.Node.Is5GHz() && !new_.Node.Is5GHz():
		nNew += cfg.BandSteeringThreshold
	case !cur.Node.Is5GHz() && new_.Node.Is5GHz():
		nCur += cfg.BandSteeringThreshold
	}
	nNew += cfg.LoadBalancingThreshold

	return nNew <= nCur
}

// betterSignalStrength reports whether cand's signal beats ref's by more
// than signal_diff_threshold. A zero threshold disables the check.
func betterSignalStrength(cfg *Config, ref, cand *Observation) bool {
	if cfg.SignalDiffThreshold == 0 {
		return false
	}
	return cand.Signal-ref.Signal > cfg.SignalDiffThreshold
}

// belowLoadThreshold reports whether o's node is both busy enough
// (load_kick_min_clients) and loaded enough (load_kick_threshold) to count
// against it as a candidate or for it as a kick target.
func belowLoadThreshold(cfg *Config, o *Observation) bool {
	return o.Node.NAssoc >= cfg.LoadKickMinClients && o.Node.Load > cfg.LoadKickThreshold
}

// hasBetterLoad reports whether ref's node is not over the load threshold
// while cand's node is, both as belowLoadThreshold defines it.
//
// The original C (original_source/policy.c) guards the LOAD reason bit
// with `has_better_load(cur, new) && !has_better_load(cur, new)`, which is
// always false — the bit can never be set. Per the resolved open question,
// this is treated as a bug in the source this was distilled from; the
// intended predicate, hasBetterLoad alone, is implemented here instead.
func hasBetterLoad(cfg *Config, ref, cand *Observation) bool {
	return !belowLoadThreshold(cfg, ref) && belowLoadThreshold(cfg, cand)
}

// Evaluate scores cand as a steering target relative to ref, the station's
// current node. It returns the empty ReasonSet if cand fails a hard filter
// (node full, or below a configured signal floor); otherwise it returns the
// union of every scoring reason that favors cand.
func Evaluate(cfg *Config, ref, cand *Observation) ReasonSet {
	if !belowMaxAssoc(cand) {
		return 0
	}
	if !overMinSignal(cfg, cand) {
		return 0
	}

	var reasons ReasonSet
	if belowAssocThreshold(cfg, ref, cand) && !belowAssocThreshold(cfg, cand, ref) {
		reasons = reasons.Union(ReasonNumAssoc)
	}
	if betterSignalStrength(cfg, ref, cand) {
		reasons = reasons.Union(ReasonSignal)
	}
	if hasBetterLoad(cfg, ref, cand) {
		reasons = reasons.Union(ReasonLoad)
	}
	return reasons
}
