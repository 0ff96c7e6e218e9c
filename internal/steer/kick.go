package steer

// Radio is the outbound half of the RPC bus collaborator (§6): the actions
// the core asks the driver to perform. internal/rpcbus supplies the real
// implementation; the core never calls a driver directly.
type Radio interface {
	TriggerClientScan(mac MAC)
	NotifyClientDisassoc(mac MAC)
	KickClient(mac MAC)
}

// KickController runs the per-local-node tick (§4.5): a roam sweep, then an
// SNR-floor kick, then load shedding — each phase only running if the one
// before it did not already kick a client this tick, so that at most one
// client is kicked per Tick call regardless of how many phases would
// otherwise have fired.
type KickController struct{}

// NewKickController returns a KickController. It holds no state of its own;
// every per-node counter it updates lives on the Node or Observation.
func NewKickController() *KickController {
	return &KickController{}
}

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func executeRoamActions(radio Radio, obs *Observation, actions []RoamAction) {
	for _, a := range actions {
		switch a {
		case RoamActionTriggerScan:
			radio.TriggerClientScan(obs.Station.MAC)
		case RoamActionNotifyDisassoc:
			radio.NotifyClientDisassoc(obs.Station.MAC)
		case RoamActionKick:
			radio.KickClient(obs.Station.MAC)
		}
	}
}

// Tick runs one pass of the node kick controller against node's current
// observations.
func (kc *KickController) Tick(cfg *Config, node *Node, now int64, sink EventSink, radio Radio) {
	if sink == nil {
		sink = NopEventSink
	}
	if kc.roamSweep(cfg, node, now, sink, radio) {
		return
	}
	if kc.snrFloorKick(cfg, node, now, sink, radio) {
		return
	}
	kc.loadShed(cfg, node, now, sink, radio)
}

// roamSweep is phase 1: for every connected station below the roam scan
// threshold that hasn't been kicked within roam_trigger_interval, drive its
// roam state machine forward; every other station is forced back to IDLE.
// The sweep stops at the first successful kick.
func (kc *KickController) roamSweep(cfg *Config, node *Node, now int64, sink EventSink, radio Radio) bool {
	if cfg.RoamScanSNR == 0 && cfg.RoamTriggerSNR == 0 {
		return false
	}
	snr := cfg.RoamScanSNR
	if snr == 0 {
		snr = cfg.RoamTriggerSNR
	}
	thr := SNRToSignal(node, snr)

	for _, obs := range node.Observations() {
		if obs.Connected != StaConnected || obs.Signal >= thr || now-obs.RoamKick < cfg.RoamTriggerInterval {
			if ev := transition(obs, RoamIdle, now); ev != nil {
				sink.Emit(*ev)
			}
			continue
		}

		step := applyRoam(cfg, obs, now)
		executeRoamActions(radio, obs, step.Actions)
		if step.Event != nil {
			sink.Emit(*step.Event)
		}
		if step.Kicked {
			obs.RoamKick = now
			return true
		}
	}
	return false
}

// snrFloorKick is phase 2: a hysteresis counter forces a kick once a
// connected station has stayed below min_snr for min_snr_kick_delay.
func (kc *KickController) snrFloorKick(cfg *Config, node *Node, now int64, sink EventSink, radio Radio) bool {
	if cfg.MinSNR == 0 {
		return false
	}
	thr := SNRToSignal(node, cfg.MinSNR)
	minCount := ceilDiv(cfg.MinSNRKickDelay, cfg.LocalStaUpdate)

	for _, obs := range node.Observations() {
		if obs.Connected != StaConnected {
			continue
		}
		if obs.Signal >= thr {
			obs.BelowMinSNR = 0
			continue
		}
		obs.BelowMinSNR++
		if int64(obs.BelowMinSNR) <= minCount {
			continue
		}

		obs.KickCount++
		ev := obs.baseEvent(now, EventSignalKick)
		ev.HasThreshold = true
		ev.ThresholdCur, ev.ThresholdRef = int64(obs.Signal), int64(thr)
		ev.Count = obs.KickCount
		sink.Emit(ev)
		radio.KickClient(obs.Station.MAC)
		return true
	}
	return false
}

// moreKickable reports whether new_ is at least as good a kick victim as
// cur: nil always loses, and otherwise new_ wins when it has no more prior
// kicks than cur and a strictly weaker signal.
func moreKickable(cur, new_ *Observation) bool {
	if cur == nil {
		return true
	}
	return new_.KickCount <= cur.KickCount && cur.Signal > new_.Signal
}

// loadShed is phase 3: once a node has stayed over load_kick_threshold for
// load_kick_delay, and has enough clients to spare one, the most kickable
// connected station (preferring one with an actual better-load candidate)
// is kicked.
func (kc *KickController) loadShed(cfg *Config, node *Node, now int64, sink EventSink, radio Radio) {
	if !cfg.LoadKickEnabled || cfg.LoadKickThreshold == 0 || cfg.LoadKickDelay == 0 {
		return
	}
	minCount := ceilDiv(cfg.LoadKickDelay, cfg.LocalStaUpdate)

	if node.Load < cfg.LoadKickThreshold {
		if node.LoadThrCount > 0 {
			node.LoadThrCount = 0
			ev := node.baseEvent(now, EventLoadKickReset)
			ev.HasThreshold = true
			ev.ThresholdCur, ev.ThresholdRef = int64(node.Load), int64(cfg.LoadKickThreshold)
			sink.Emit(ev)
		}
		return
	}

	node.LoadThrCount++
	if int64(node.LoadThrCount) <= minCount {
		if node.LoadThrCount == 1 {
			ev := node.baseEvent(now, EventLoadKickTrigger)
			ev.HasThreshold = true
			ev.ThresholdCur, ev.ThresholdRef = int64(node.Load), int64(cfg.LoadKickThreshold)
			sink.Emit(ev)
		}
		return
	}
	node.LoadThrCount = 0

	if node.NAssoc < cfg.LoadKickMinClients {
		ev := node.baseEvent(now, EventLoadKickMinClients)
		ev.HasThreshold = true
		ev.ThresholdCur, ev.ThresholdRef = int64(node.NAssoc), int64(cfg.LoadKickMinClients)
		sink.Emit(ev)
		return
	}

	var kick1, kick2, candidate *Observation
	for _, obs := range node.Observations() {
		if obs.Connected != StaConnected {
			continue
		}
		if moreKickable(kick1, obs) {
			kick1 = obs
		}
		if cand, _ := FindBetter(cfg, now, obs, ReasonLoad, 0); cand != nil {
			if moreKickable(kick2, obs) {
				kick2 = obs
				candidate = cand
			}
		}
	}

	if kick1 == nil {
		sink.Emit(node.baseEvent(now, EventLoadKickNoClient))
		return
	}

	victim := kick1
	if kick2 != nil {
		victim = kick2
	}
	victim.KickCount++

	ev := victim.baseEvent(now, EventLoadKickClient)
	if candidate != nil {
		ev.NodeTarget = candidate.Node.Name
	}
	ev.Count = victim.KickCount
	sink.Emit(ev)
	radio.KickClient(victim.Station.MAC)
}
