package driver

import (
	"encoding/json"
	"fmt"

	"rmspp/internal/diag"
	"rmspp/internal/observ"
	"rmspp/internal/source"
)

type timingPayload struct {
	Kind string `json:"kind"`
	Path string `json:"path,omitempty"`
	observ.Report
}

// appendTimingDiagnostic adds an OBS7001 info entry whose note carries the
// timings as JSON. It is added even when the bag is full.
func appendTimingDiagnostic(bag *diag.Bag, file source.FileID, payload timingPayload) {
	if bag == nil {
		return
	}
	if payload.Kind == "" {
		payload.Kind = "document"
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	sp := source.Span{File: file}
	entry := diag.New(diag.SevInfo, diag.ObsTimings, sp,
		fmt.Sprintf("timings (%s): total %.2f ms", payload.Kind, payload.TotalMS)).
		WithNote(sp, string(data))

	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(bag.Len() + 1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
