package steer

// Filter is the request admission filter (§4.3): given a station's
// observation on the node it is talking to, and the kind of request, it
// decides whether to admit it. It is stateless beyond the Config and Clock
// it was built with; all per-request history lives on the Observation.
type Filter struct {
	cfg   *Config
	clock Clock
	sink  EventSink
}

// NewFilter builds a Filter over cfg, reading time from clock and emitting
// every decision to sink.
func NewFilter(cfg *Config, clock Clock, sink EventSink) *Filter {
	if sink == nil {
		sink = NopEventSink
	}
	return &Filter{cfg: cfg, clock: clock, sink: sink}
}

func acceptEventType(reqType RequestType, accept bool) EventType {
	var base EventType
	switch reqType {
	case RequestProbe:
		base = EventProbeAccept
	case RequestAssoc:
		base = EventAssocAccept
	case RequestAuth:
		base = EventAuthAccept
	}
	if !accept {
		base++
	}
	return base
}

// CheckRequest decides whether to admit reqType from the station behind
// obs, and emits exactly one DecisionEvent recording the outcome. Callers
// own updating obs.Stats[reqType] from the returned bool; CheckRequest only
// reads the BlockedCur counter already on obs to decide whether to surface
// AdmitReasonRetryExceeded.
func (f *Filter) CheckRequest(obs *Observation, reqType RequestType) bool {
	cfg := f.cfg
	now := f.clock.NowMillis()

	ev := obs.baseEvent(now, acceptEventType(reqType, true))
	accept := true

decide:
	for {
		if reqType == RequestAuth {
			break decide
		}

		if reqType == RequestAssoc {
			if cfg.MinSNR > 0 {
				if thr := SNRToSignal(obs.Node, cfg.MinSNR); obs.Signal < thr {
					accept = false
					ev.Reason = AdmitReasonLowSignal
					ev.HasThreshold = true
					ev.ThresholdCur, ev.ThresholdRef = int64(obs.Signal), int64(thr)
					break decide
				}
			}
			if !cfg.AssocSteering {
				break decide
			}
		}

		if thr := SNRToSignal(obs.Node, cfg.MinConnectSNR); obs.Signal < thr {
			accept = false
			ev.Reason = AdmitReasonLowSignal
			ev.HasThreshold = true
			ev.ThresholdCur, ev.ThresholdRef = int64(obs.Signal), int64(thr)
			break decide
		}

		if reqType == RequestProbe && now-obs.Created < cfg.InitialConnectDelay {
			accept = false
			ev.Reason = AdmitReasonConnectDelay
			ev.HasThreshold = true
			ev.ThresholdCur, ev.ThresholdRef = now-obs.Created, cfg.InitialConnectDelay
			break decide
		}

		if cand, reasons := FindBetter(cfg, now, obs, ReasonSetAll, 0); cand != nil {
			accept = false
			ev.Reason = AdmitReasonBetterCandidate
			ev.NodeTarget = cand.Node.Name
			ev.SelectReasons = reasons
			break decide
		}

		break decide
	}

	ev.Type = acceptEventType(reqType, accept)

	if !accept {
		stats := &obs.Stats[reqType]
		if stats.BlockedCur >= uint32(cfg.MaxRetryBand) {
			ev.Reason = AdmitReasonRetryExceeded
			ev.HasThreshold = true
			ev.ThresholdCur = int64(stats.BlockedCur)
			ev.ThresholdRef = int64(cfg.MaxRetryBand)
		}
	}

	f.sink.Emit(ev)
	return accept
}
