// Package board renders deals and sends the operator's approval decisions.
package board

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/samber/lo"

	"smartdeals/internal/datasync"
	"smartdeals/internal/domain"
	"smartdeals/internal/domain/entity"
	"smartdeals/internal/domain/value"
	"smartdeals/internal/state"
	"smartdeals/pkg/contextx"
	"smartdeals/pkg/errcodes"
	"smartdeals/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type dealWriter interface {
	ApproveDeal(ctx context.Context, id value.DealID) error
	RejectDeal(ctx context.Context, id value.DealID) error
}

type dealSyncer interface {
	RefreshDeals(ctx context.Context) error
}

// Row is one table line: id, source, title, price, score, status.
type Row struct {
	ID     string
	Source string
	Title  string
	Price  string
	Score  string
	Status string
}

type Board struct {
	client dealWriter
	syncer dealSyncer
	deals  *state.Slice[[]entity.Deal]

	// recent holds decisions sent within the duplicate window.
	recent *cache.Cache
}

// New builds a board; a zero window disables duplicate suppression.
func New(client dealWriter, syncer dealSyncer, deals *state.Slice[[]entity.Deal], window time.Duration) *Board {
	b := &Board{
		client: client,
		syncer: syncer,
		deals:  deals,
	}

	if window > 0 {
		b.recent = cache.New(window, 2*window)
	}

	return b
}

// Deals returns the deals in backend order.
func (b *Board) Deals() []entity.Deal {
	return b.deals.Get()
}

func (b *Board) Rows() []Row {
	return lo.Map(b.Deals(), func(d entity.Deal, _ int) Row {
		return NewRow(d)
	})
}

func NewRow(d entity.Deal) Row {
	score := "-"
	if d.Score != nil {
		score = strconv.Itoa(*d.Score)
	}

	return Row{
		ID:     d.ID.String(),
		Source: d.Source,
		Title:  d.Title,
		Price:  strconv.FormatFloat(d.CurrentPrice, 'f', 2, 64),
		Score:  score,
		Status: d.Status.String(),
	}
}

func (b *Board) Find(id value.DealID) (entity.Deal, bool) {
	return lo.Find(b.Deals(), func(d entity.Deal) bool {
		return d.ID == id
	})
}

// Filter applies the backend's list filters to the loaded deals.
func (b *Board) Filter(f entity.DealFilter) []entity.Deal {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	return lo.Filter(b.Deals(), func(d entity.Deal, _ int) bool {
		switch {
		case f.Status != "" && d.Status != f.Status:
			return false
		case f.Source != "" && d.Source != f.Source:
			return false
		case query != "" && !strings.Contains(strings.ToLower(d.Title), query):
			return false
		case f.MinScore != nil && (d.Score == nil || *d.Score < *f.MinScore):
			return false
		default:
			return true
		}
	})
}

// Pending returns the deals still waiting for a decision.
func (b *Board) Pending() []entity.Deal {
	return lo.Filter(b.Deals(), func(d entity.Deal, _ int) bool {
		return d.Status.AwaitsDecision()
	})
}

func (b *Board) Approve(ctx context.Context, id value.DealID) error {
	return b.decide(ctx, entity.ActionApprove, id, b.client.ApproveDeal)
}

func (b *Board) Reject(ctx context.Context, id value.DealID) error {
	return b.decide(ctx, entity.ActionReject, id, b.client.RejectDeal)
}

// decide sends the transition and reloads deals whatever the send returned;
// the status shown always comes from the backend. Decisions on terminal deals
// are still sent.
func (b *Board) decide(
	ctx context.Context,
	action entity.Action,
	id value.DealID,
	send func(context.Context, value.DealID) error,
) error {
	key := action.String() + ":" + id.String()

	if b.recent != nil {
		if err := b.recent.Add(key, struct{}{}, cache.DefaultExpiration); err != nil {
			return domain.NewError(errcodes.DuplicateAction, fmt.Sprintf("%s deal %s already sent", action, id))
		}
	}

	sendErr := send(ctx, id)
	if sendErr != nil && b.recent != nil {
		b.recent.Delete(key)
	}

	if err := b.syncer.RefreshDeals(datasync.ReloadContext(ctx)); err != nil {
		logger(ctx).Warn(
			"deals reload after decision failed",
			slog.String(logx.FieldAction, action.String()),
			logx.DealID(id),
			logx.Error(err),
		)
	}

	if sendErr != nil {
		return fmt.Errorf("%s deal %s: %w", action, id, sendErr)
	}

	return nil
}
