package wavio

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/justindarnell/vinyl-transfer-declick/declick"
)

// EventMetadata describes the buffer the events were detected in (§6's
// optional host event-export service).
type EventMetadata struct {
	SampleRate int `json:"sampleRate"`
	Channels   int `json:"channels"`
	FrameCount int `json:"frameCount"`
}

// ExportedEvent is one row of the §6 event-export shape.
type ExportedEvent struct {
	Index       int     `json:"index"`
	Frame       int     `json:"frame"`
	TimeSeconds float64 `json:"timeSeconds"`
	Type        string  `json:"type"`
	Strength    float64 `json:"strength"`
}

// EventReport is the §6 JSON shape: {metadata, events: [...]}.
type EventReport struct {
	Metadata EventMetadata   `json:"metadata"`
	Events   []ExportedEvent `json:"events"`
}

func buildReport(buf declick.AudioBuffer, events []declick.DetectedEvent) EventReport {
	report := EventReport{
		Metadata: EventMetadata{
			SampleRate: buf.SampleRate,
			Channels:   buf.Channels,
			FrameCount: buf.FrameCount(),
		},
		Events: make([]ExportedEvent, len(events)),
	}
	for i, e := range events {
		report.Events[i] = ExportedEvent{
			Index:       i,
			Frame:       e.Frame,
			TimeSeconds: float64(e.Frame) / float64(buf.SampleRate),
			Type:        e.Type.String(),
			Strength:    e.Strength,
		}
	}
	return report
}

// WriteEventsJSON writes the §6 JSON event-export shape.
func WriteEventsJSON(w io.Writer, buf declick.AudioBuffer, events []declick.DetectedEvent) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(buildReport(buf, events))
}

// WriteEventsCSV writes the §6 CSV event-export shape with header
// "Index,Timecode,Seconds,Frame,Type,Strength,SampleRate,Channels".
func WriteEventsCSV(w io.Writer, buf declick.AudioBuffer, events []declick.DetectedEvent) error {
	cw := csv.NewWriter(w)
	header := []string{"Index", "Timecode", "Seconds", "Frame", "Type", "Strength", "SampleRate", "Channels"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for i, e := range events {
		seconds := float64(e.Frame) / float64(buf.SampleRate)
		row := []string{
			strconv.Itoa(i),
			formatTimecode(seconds),
			strconv.FormatFloat(seconds, 'f', 6, 64),
			strconv.Itoa(e.Frame),
			e.Type.String(),
			strconv.FormatFloat(e.Strength, 'f', 6, 64),
			strconv.Itoa(buf.SampleRate),
			strconv.Itoa(buf.Channels),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatTimecode(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	minutes := int(seconds) / 60
	secs := seconds - float64(minutes*60)
	return strconv.Itoa(minutes) + ":" + strconv.FormatFloat(secs, 'f', 3, 64)
}
