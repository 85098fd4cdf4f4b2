package client

import (
	"context"
	"net/url"
	"sort"
	"time"

	"culturemap/internal/models"
	"culturemap/internal/services"
	"culturemap/internal/utils"

	"golang.org/x/sync/errgroup"
)

// summaryFanOut caps concurrent summary lookups for a list page.
const summaryFanOut = 8

// DetailPage is what the front-end renders for one place or event. Item is
// nil when the content service could not be reached.
type DetailPage struct {
	Item     *models.ContentItem  `json:"item"`
	Summary  models.VoteSummary   `json:"summary"`
	Comments services.CommentPage `json:"comments"`
	Degraded []string             `json:"degraded,omitempty"`
}

type ListEntry struct {
	models.ContentItem
	Summary models.VoteSummary `json:"summary"`
}

type ListPage struct {
	Items      []ListEntry `json:"items"`
	Total      int64       `json:"total"`
	Page       int         `json:"page"`
	PerPage    int         `json:"perPage"`
	TotalPages int         `json:"totalPages"`
	Degraded   []string    `json:"degraded,omitempty"`
}

func appendDegraded(list []string, name string, ok bool) []string {
	if ok {
		return list
	}
	for _, n := range list {
		if n == name {
			return list
		}
	}
	return append(list, name)
}

// Page gathers an item, its vote summary and its latest comments in
// parallel. It fails only with apperror.ErrNotFound for a missing or hidden
// item, or a validation error for a zero id; every upstream failure degrades
// the matching section instead.
func (c *Client) Page(ctx context.Context, kind models.Kind, id uint, token string) (*DetailPage, error) {
	target, err := models.NewTarget(string(kind), id)
	if err != nil {
		return nil, err
	}
	var (
		page              DetailPage
		itemErr           error
		sumOK, commentsOK bool
	)

	// A missing item must not cancel the interaction calls: a cancelled call
	// would count against a healthy upstream.
	var g errgroup.Group
	g.Go(func() error {
		page.Item, itemErr = c.Item(ctx, kind, id, token)
		return nil
	})
	g.Go(func() error {
		page.Summary, sumOK = c.Summary(ctx, target)
		return nil
	})
	g.Go(func() error {
		page.Comments, commentsOK = c.Comments(ctx, target)
		return nil
	})
	_ = g.Wait()
	if itemErr != nil {
		return nil, itemErr
	}

	page.Degraded = appendDegraded(page.Degraded, upstreamContent, page.Item != nil)
	page.Degraded = appendDegraded(page.Degraded, upstreamInteractions, sumOK && commentsOK)
	return &page, nil
}

// List returns a page of items, each with its vote summary.
func (c *Client) List(ctx context.Context, kind models.Kind, query url.Values, token string) *ListPage {
	content, contentOK := c.ListContent(ctx, kind, query, token)

	out := &ListPage{
		Items:      make([]ListEntry, len(content.Items)),
		Total:      content.Total,
		Page:       content.Page,
		PerPage:    content.PerPage,
		TotalPages: content.TotalPages,
	}
	out.Degraded = appendDegraded(out.Degraded, upstreamContent, contentOK)

	summariesOK := make([]bool, len(content.Items))
	var g errgroup.Group
	g.SetLimit(summaryFanOut)
	for i, item := range content.Items {
		out.Items[i].ContentItem = item
		target, err := models.NewTarget(string(kind), item.ID)
		if err != nil {
			summariesOK[i] = true
			continue
		}
		g.Go(func() error {
			out.Items[i].Summary, summariesOK[i] = c.Summary(ctx, target)
			return nil
		})
	}
	_ = g.Wait()

	for _, ok := range summariesOK {
		out.Degraded = appendDegraded(out.Degraded, upstreamInteractions, ok)
	}
	return out
}

// SortByPopularity reorders the current page by rating weight and age.
// Ordering across pages is still the content service's.
func (p *ListPage) SortByPopularity(now time.Time) {
	scores := make(map[uint]float64, len(p.Items))
	for _, e := range p.Items {
		scores[e.ID] = utils.PopularityScore(e.CreatedAt, e.Summary.Mean, e.Summary.Count, now)
	}
	sort.SliceStable(p.Items, func(i, j int) bool {
		return scores[p.Items[i].ID] > scores[p.Items[j].ID]
	})
}
