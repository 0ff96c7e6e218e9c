package steer

// RoamState is a station observation's position in the roam trigger state
// machine (§4.4).
type RoamState uint8

const (
	RoamIdle RoamState = iota
	RoamScan
	RoamScanDone
	RoamWaitKick
	RoamNotifyKick
	RoamKick
)

func (s RoamState) String() string {
	switch s {
	case RoamIdle:
		return "IDLE"
	case RoamScan:
		return "SCAN"
	case RoamScanDone:
		return "SCAN_DONE"
	case RoamWaitKick:
		return "WAIT_KICK"
	case RoamNotifyKick:
		return "NOTIFY_KICK"
	case RoamKick:
		return "KICK"
	default:
		return unknownStr
	}
}

// RoamAction is a side effect the roam trigger state machine asks its
// caller to perform against the Radio collaborator.
type RoamAction uint8

const (
	RoamActionTriggerScan RoamAction = iota
	RoamActionNotifyDisassoc
	RoamActionKick
)

func (a RoamAction) String() string {
	switch a {
	case RoamActionTriggerScan:
		return "TRIGGER_SCAN"
	case RoamActionNotifyDisassoc:
		return "NOTIFY_DISASSOC"
	case RoamActionKick:
		return "KICK"
	default:
		return unknownStr
	}
}

// roamStep is the result of one applyRoam call: the actions the caller must
// execute against a Radio, whether this step performed the kick, and the
// DecisionEvent to emit, if the state machine actually transitioned (a
// same-state IDLE "stay" records no event, matching usteer_roam_set_state).
type roamStep struct {
	Actions []RoamAction
	Kicked  bool
	Event   *DecisionEvent
}

// setRoamState records a transition into newState, mirroring
// usteer_roam_set_state: a same-state transition into anything but IDLE
// still counts as a retry (roam_tries increments); a same-state transition
// that stays IDLE resets tries and is silent — no event, no side effect.
func setRoamState(obs *Observation, newState RoamState, now int64) bool {
	obs.RoamEvent = now
	if obs.RoamState == newState {
		if obs.RoamState == RoamIdle {
			obs.RoamTries = 0
			return false
		}
		obs.RoamTries++
	} else {
		obs.RoamTries = 0
	}
	obs.RoamState = newState
	return true
}

// nextScanStartState decides whether a station coming out of IDLE (or
// cooling down after exhausting its scan tries) should start a fresh scan
// or stay idle, per the scan_start helper in §4.4.
func nextScanStartState(cfg *Config, obs *Observation, now int64) RoamState {
	if cfg.RoamScanTimeout == 0 || now > obs.RoamScanTimeoutStart+cfg.RoamScanTimeout {
		return RoamScan
	}
	return RoamIdle
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func transition(obs *Observation, newState RoamState, now int64) *DecisionEvent {
	if !setRoamState(obs, newState, now) {
		return nil
	}
	ev := obs.baseEvent(now, EventRoamTrigger)
	return &ev
}

// applyRoam advances obs's roam trigger state machine by one step. cfg's
// roam_trigger_snr, combined with the node's noise floor, is the minimum
// signal that the WAIT_KICK state compares against to decide whether the
// station still needs to move.
func applyRoam(cfg *Config, obs *Observation, now int64) roamStep {
	var step roamStep
	minSignal := SNRToSignal(obs.Node, cfg.RoamTriggerSNR)

	switch obs.RoamState {
	case RoamScan:
		if obs.RoamTries == 0 {
			obs.RoamScanStart = now
		}

		maxAge := minInt64(2*cfg.RoamScanInterval, now-obs.RoamScanStart)
		if cand, _ := FindBetter(cfg, now, obs, ReasonSignal, maxAge); cand != nil {
			step.Event = transition(obs, RoamScanDone, now)
			return step
		}

		if now-obs.RoamEvent < cfg.RoamScanInterval {
			return step
		}

		if cfg.RoamScanTries > 0 && obs.RoamTries >= cfg.RoamScanTries {
			if cfg.RoamScanTimeout == 0 {
				step.Event = transition(obs, RoamWaitKick, now)
			} else {
				obs.RoamScanTimeoutStart = now
				step.Event = transition(obs, RoamIdle, now)
			}
			return step
		}

		step.Actions = append(step.Actions, RoamActionTriggerScan)
		target := nextScanStartState(cfg, obs, now)
		step.Event = transition(obs, target, now)
		return step

	case RoamIdle:
		target := nextScanStartState(cfg, obs, now)
		step.Event = transition(obs, target, now)
		return step

	case RoamScanDone:
		if cand, _ := FindBetter(cfg, now, obs, ReasonSignal, 0); cand != nil {
			step.Event = transition(obs, RoamWaitKick, now)
			return step
		}
		target := nextScanStartState(cfg, obs, now)
		step.Event = transition(obs, target, now)
		return step

	case RoamWaitKick:
		if obs.Signal > minSignal {
			return step
		}
		step.Actions = append(step.Actions, RoamActionNotifyDisassoc)
		step.Event = transition(obs, RoamNotifyKick, now)
		return step

	case RoamNotifyKick:
		if now-obs.RoamEvent < cfg.RoamKickDelay*10 {
			return step
		}
		step.Event = transition(obs, RoamKick, now)
		return step

	case RoamKick:
		step.Actions = append(step.Actions, RoamActionKick)
		step.Event = transition(obs, RoamIdle, now)
		step.Kicked = true
		return step

	default:
		return step
	}
}
