// Package normalizer converts a validated Document into report entities.
package normalizer

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"ResearchReporter/internal/domain"
	"ResearchReporter/internal/ports"
)

const (
	defaultTimelineLabel = "Source"
	timelineType         = "event"
	// ImageIndexOffset keeps source images apart from the hero image slot.
	ImageIndexOffset = 10
	imageConcurrency = 4
)

// Normalized holds the entities derived from one document. IDs are assigned;
// article IDs are left to the assembler.
type Normalized struct {
	CitedSources []domain.CitedSource
	RawFacts     []domain.RawFactsGroup
	Perspectives []domain.Perspective
	Timeline     []domain.TimelineItem
}

// Normalizer dedups sources, groups facts and enforces perspective diversity.
type Normalizer struct {
	images ports.ImageResolver
	ids    ports.IDGenerator
	logger *slog.Logger
}

// New wires a normalizer. images may be nil, in which case sources carry no image.
func New(images ports.ImageResolver, ids ports.IDGenerator, logger *slog.Logger) *Normalizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Normalizer{
		images: images,
		ids:    ids,
		logger: logger.With("component", "normalizer"),
	}
}

// Normalize builds report entities from doc. Every URL that is not in allow is dropped.
func (n *Normalizer) Normalize(ctx context.Context, doc domain.Document, allow AllowList) Normalized {
	facts := n.groupFacts(doc.RawFacts, allow)
	perspectives := n.buildPerspectives(doc, allow)
	timeline := n.buildTimeline(doc.TimelineItems, allow)

	candidates := collectSources(doc, facts, perspectives, timeline, allow)
	sources := make([]domain.CitedSource, len(candidates))
	for i, c := range candidates {
		sources[i] = domain.CitedSource{
			ID:          n.ids.NewID(),
			Name:        c.name,
			Type:        c.kind,
			Description: c.description,
			URL:         c.url,
		}
	}
	n.resolveImages(ctx, sources)

	n.logger.Debug("document normalized",
		"facts", len(doc.RawFacts),
		"fact_groups", len(facts),
		"perspectives", len(perspectives),
		"timeline", len(timeline),
		"sources", len(sources),
	)

	return Normalized{
		CitedSources: sources,
		RawFacts:     facts,
		Perspectives: perspectives,
		Timeline:     timeline,
	}
}

func (n *Normalizer) buildTimeline(items []domain.DocTimeline, allow AllowList) []domain.TimelineItem {
	out := make([]domain.TimelineItem, 0, len(items))
	for _, item := range items {
		label := item.Source.String()
		if label == "" {
			label = defaultTimelineLabel
		}
		out = append(out, domain.TimelineItem{
			ID:          n.ids.NewID(),
			Date:        item.Date.String(),
			Title:       item.Title.String(),
			Description: item.Description.String(),
			Type:        timelineType,
			SourceLabel: label,
			SourceURL:   allow.Resolve(item.URL.String()),
		})
	}
	return out
}

// resolveImages fills ImageURL in place. The resolver never fails, so the group never errors.
func (n *Normalizer) resolveImages(ctx context.Context, sources []domain.CitedSource) {
	if n.images == nil || len(sources) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(imageConcurrency)
	for i := range sources {
		g.Go(func() error {
			sources[i].ImageURL = n.images.Resolve(gctx, sources[i].Name, i+ImageIndexOffset)
			return nil
		})
	}
	_ = g.Wait()
}
