package tablebuilder

import (
	"time"
)

// Phase identifies the pipeline stage a progress event belongs to.
type Phase int

const (
	// PhaseDetecting covers shape detection
	PhaseDetecting Phase = iota
	// PhaseReading covers the row counting pass
	PhaseReading
	// PhaseInferring covers type inference sampling
	PhaseInferring
	// PhaseGenerating covers script generation
	PhaseGenerating
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseReading:
		return "reading"
	case PhaseInferring:
		return "inferring"
	case PhaseGenerating:
		return "generating"
	default:
		return "detecting"
	}
}

// ProgressEvent reports pipeline progress. RowsTotal is -1 while the total
// is not yet known.
type ProgressEvent struct {
	Phase         Phase
	RowsProcessed int64
	RowsTotal     int64
}

// progressThrottle is the minimum interval between row-count events. Phase
// transitions are always delivered.
const progressThrottle = 100 * time.Millisecond

// progressEmitter sends events to an optional channel without ever blocking
// the pipeline: a slow or absent consumer drops intermediate events, but
// phase transitions are always offered.
type progressEmitter struct {
	ch       chan<- ProgressEvent
	phase    Phase
	lastSent time.Time
}

func newProgressEmitter(ch chan<- ProgressEvent) *progressEmitter {
	return &progressEmitter{ch: ch, phase: -1}
}

// emit offers an event to the channel. Row-count updates within the same
// phase are time-throttled; a full channel drops the event.
func (e *progressEmitter) emit(ev ProgressEvent) {
	if e.ch == nil {
		return
	}
	transition := ev.Phase != e.phase
	if !transition && time.Since(e.lastSent) < progressThrottle {
		return
	}
	select {
	case e.ch <- ev:
		e.phase = ev.Phase
		e.lastSent = time.Now()
	default:
	}
}
