package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dantte-lp/usteerd/internal/server"
	"github.com/dantte-lp/usteerd/internal/steer"
)

const (
	formatJSON  = "json"
	formatTable = "table"
)

// errUnsupportedFormat is returned when the requested output format is not supported.
var errUnsupportedFormat = errors.New("unsupported output format")

func formatNodes(nodes []server.NodeDTO, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalJSON(nodes)
	case formatTable:
		return formatNodesTable(nodes), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func formatNode(node server.NodeDTO, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalJSON(node)
	case formatTable:
		return formatNodeDetail(node), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func formatStations(stations []server.StationDTO, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalJSON(stations)
	case formatTable:
		return formatStationsTable(stations), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func formatStation(station server.StationDTO, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalJSON(station)
	case formatTable:
		return formatStationDetail(station), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func formatEvent(ev steer.DecisionEvent, format string) (string, error) {
	switch format {
	case formatJSON:
		return marshalJSON(ev)
	case formatTable:
		return formatEventLine(ev), nil
	default:
		return "", fmt.Errorf("%w: %q", errUnsupportedFormat, format)
	}
}

func marshalJSON(v any) (string, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal json: %w", err)
	}
	return string(b) + "\n", nil
}

func formatNodesTable(nodes []server.NodeDTO) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tSSID\tFREQ\tSTATIONS\tMAX\tLOAD\tDISABLED")

	for _, n := range nodes {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\t%t\n",
			n.Name, n.Type, n.SSID, n.FreqMHz, n.StationsN, n.MaxAssoc, n.Load, n.Disabled)
	}

	_ = w.Flush()
	return buf.String()
}

func formatNodeDetail(n server.NodeDTO) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "Name:\t%s\n", n.Name)
	fmt.Fprintf(w, "Type:\t%s\n", n.Type)
	fmt.Fprintf(w, "SSID:\t%s\n", n.SSID)
	fmt.Fprintf(w, "BSSID:\t%s\n", n.BSSID)
	fmt.Fprintf(w, "Frequency:\t%d MHz (5GHz: %t)\n", n.FreqMHz, n.Is5GHz)
	fmt.Fprintf(w, "Noise:\t%d dBm\n", n.NoiseDBm)
	fmt.Fprintf(w, "Associated:\t%d / %d\n", n.NAssoc, n.MaxAssoc)
	fmt.Fprintf(w, "Load:\t%d\n", n.Load)
	fmt.Fprintf(w, "Disabled:\t%t\n", n.Disabled)
	fmt.Fprintf(w, "Tracked stations:\t%d\n", n.StationsN)

	_ = w.Flush()
	return buf.String()
}

func formatStationsTable(stations []server.StationDTO) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MAC\tSEEN-2.4G\tSEEN-5G\tNODES")

	for _, s := range stations {
		fmt.Fprintf(w, "%s\t%t\t%t\t%d\n", s.MAC, s.Seen24GHz, s.Seen5GHz, len(s.Observations))
	}

	_ = w.Flush()
	return buf.String()
}

func formatStationDetail(s server.StationDTO) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	fmt.Fprintf(w, "MAC:\t%s\n", s.MAC)
	fmt.Fprintf(w, "Seen 2.4GHz:\t%t\n", s.Seen24GHz)
	fmt.Fprintf(w, "Seen 5GHz:\t%t\n", s.Seen5GHz)
	fmt.Fprintln(w, "---")
	fmt.Fprintln(w, "NODE\tCONNECTED\tSIGNAL\tROAM-STATE\tROAM-TRIES\tKICKS")

	for _, o := range s.Observations {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%d\t%d\n",
			o.Node, o.Connected, o.Signal, o.RoamState, o.RoamTries, o.KickCount)
	}

	_ = w.Flush()
	return buf.String()
}

func formatEventLine(ev steer.DecisionEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d] %s node=%s", ev.Timestamp, ev.Type, ev.NodeCur)
	if ev.HasStation {
		fmt.Fprintf(&b, " station=%s", ev.StationMAC)
	}
	if ev.NodeTarget != "" {
		fmt.Fprintf(&b, " target=%s", ev.NodeTarget)
	}
	if ev.HasSignal {
		fmt.Fprintf(&b, " signal=%d", ev.Signal)
	}
	if ev.Reason != 0 {
		fmt.Fprintf(&b, " reason=%s", ev.Reason)
	}
	return b.String()
}
