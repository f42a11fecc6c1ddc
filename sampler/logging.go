package sampler

import (
	"time"

	"github.com/shibukawa/snapplot/relation"
)

// LoggerFunc receives one RenderLogEntry per sampled expression.
type LoggerFunc func(RenderLogEntry)

// RenderLogEntry describes how one expression was sampled.
type RenderLogEntry struct {
	Raw        string
	Normalized string
	Kind       relation.Kind
	Series     int
	Points     int
	StartAt    time.Time
	Duration   time.Duration
	Error      string
}

// Observer records sampling outcomes, typically into metrics.
type Observer interface {
	ObserveSample(kind relation.Kind, failed bool, d time.Duration)
	ObserveFailure(reason string)
}

type sampleLogger struct {
	logger   LoggerFunc
	observer Observer
	entry    RenderLogEntry
}

func (s *Sampler) startLog(raw, normalized string) *sampleLogger {
	if s.opts.Logger == nil && s.opts.Observer == nil {
		return nil
	}

	return &sampleLogger{
		logger:   s.opts.Logger,
		observer: s.opts.Observer,
		entry: RenderLogEntry{
			Raw:        raw,
			Normalized: normalized,
			StartAt:    time.Now(),
		},
	}
}

func (l *sampleLogger) finish(kind relation.Kind, series []Series) {
	if l == nil {
		return
	}

	l.entry.Kind = kind
	l.entry.Series = len(series)
	l.entry.Duration = time.Since(l.entry.StartAt)

	failed := false

	for _, s := range series {
		l.entry.Points += s.Len()

		if s.Err != nil {
			failed = true
			l.entry.Error = s.Err.Error()
		}
	}

	if l.observer != nil {
		l.observer.ObserveSample(kind, failed, l.entry.Duration)

		if failed {
			l.observer.ObserveFailure(failureReason(series[0].Err))
		}
	}

	if l.logger != nil {
		l.logger(l.entry)
	}
}
