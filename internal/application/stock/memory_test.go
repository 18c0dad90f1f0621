package stock_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/labstock-api/internal/domain"
	"github.com/jhoicas/labstock-api/internal/domain/entity"
	"github.com/jhoicas/labstock-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Infraestructura en memoria para los tests de casos de uso.
//
// memStore emula lo que los tests necesitan de PostgreSQL: los repos devuelven
// copias (como un scan de filas), el runner serializa las "transacciones" con
// un mutex y, ante error del callback, restaura el snapshot previo (rollback).
// ──────────────────────────────────────────────────────────────────────────────

type memStore struct {
	mu        sync.Mutex
	articles  map[string]*entity.Article
	lots      map[string]*entity.Lot
	stocks    map[string]*entity.Stock // clave: companyID|articleID
	movements []*entity.Movement
}

func newMemStore() *memStore {
	return &memStore{
		articles: make(map[string]*entity.Article),
		lots:     make(map[string]*entity.Lot),
		stocks:   make(map[string]*entity.Stock),
	}
}

func stockKey(companyID, articleID string) string {
	return companyID + "|" + articleID
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for id, a := range s.articles {
		cp := *a
		snap.articles[id] = &cp
	}
	for id, l := range s.lots {
		cp := *l
		snap.lots[id] = &cp
	}
	for k, st := range s.stocks {
		cp := *st
		snap.stocks[k] = &cp
	}
	snap.movements = append([]*entity.Movement(nil), s.movements...)
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.articles = snap.articles
	s.lots = snap.lots
	s.stocks = snap.stocks
	s.movements = snap.movements
}

// memTxRunner serializa las transacciones y revierte el estado si el callback
// falla, igual que un ROLLBACK.
type memTxRunner struct {
	store *memStore
}

func (r *memTxRunner) Run(ctx context.Context, fn func(
	lotRepo repository.LotRepository,
	stockRepo repository.StockRepository,
	movRepo repository.MovementRepository,
) error) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	snap := r.store.snapshot()
	err := fn(
		&memLotRepo{store: r.store},
		&memStockRepo{store: r.store},
		&memMovementRepo{store: r.store},
	)
	if err != nil {
		r.store.restore(snap)
	}
	return err
}

// ── Lotes ─────────────────────────────────────────────────────────────────────

type memLotRepo struct {
	store *memStore
}

func (r *memLotRepo) Create(lot *entity.Lot) error {
	if _, ok := r.store.lots[lot.ID]; ok {
		return domain.ErrDuplicate
	}
	cp := *lot
	r.store.lots[lot.ID] = &cp
	return nil
}

func (r *memLotRepo) GetByID(id string) (*entity.Lot, error) {
	l, ok := r.store.lots[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *memLotRepo) ListByArticle(companyID, articleID string) ([]*entity.Lot, error) {
	return r.collect(func(l *entity.Lot) bool {
		return l.CompanyID == companyID && l.ArticleID == articleID && l.DeletedAt == nil
	}), nil
}

func (r *memLotRepo) ListByCompany(companyID string) ([]*entity.Lot, error) {
	return r.collect(func(l *entity.Lot) bool {
		return l.CompanyID == companyID && l.DeletedAt == nil
	}), nil
}

func (r *memLotRepo) LockForArticle(companyID, articleID string) ([]*entity.Lot, error) {
	return r.collect(func(l *entity.Lot) bool {
		return l.CompanyID == companyID && l.ArticleID == articleID &&
			l.DeletedAt == nil && l.RemainingQuantity.IsPositive()
	}), nil
}

func (r *memLotRepo) LockByIDs(companyID string, ids []string) ([]*entity.Lot, error) {
	wanted := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	return r.collect(func(l *entity.Lot) bool {
		_, ok := wanted[l.ID]
		return ok && l.CompanyID == companyID && l.DeletedAt == nil
	}), nil
}

func (r *memLotRepo) UpdateRemaining(lotID string, remaining decimal.Decimal) error {
	l, ok := r.store.lots[lotID]
	if !ok {
		return domain.ErrNotFound
	}
	l.RemainingQuantity = remaining
	return nil
}

func (r *memLotRepo) SumRemainingByArticle(companyID, articleID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range r.store.lots {
		if l.CompanyID == companyID && l.ArticleID == articleID && l.DeletedAt == nil {
			total = total.Add(l.RemainingQuantity)
		}
	}
	return total, nil
}

func (r *memLotRepo) SoftDelete(lotID string, at time.Time) error {
	l, ok := r.store.lots[lotID]
	if !ok || l.DeletedAt != nil {
		return domain.ErrNotFound
	}
	l.DeletedAt = &at
	return nil
}

func (r *memLotRepo) HardDelete(lotID string) error {
	if _, ok := r.store.lots[lotID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.store.lots, lotID)
	return nil
}

// collect devuelve copias ordenadas por ID, igual que ORDER BY id.
func (r *memLotRepo) collect(match func(*entity.Lot) bool) []*entity.Lot {
	out := make([]*entity.Lot, 0)
	for _, l := range r.store.lots {
		if match(l) {
			cp := *l
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ── Agregado de stock ─────────────────────────────────────────────────────────

type memStockRepo struct {
	store *memStore
}

func (r *memStockRepo) GetByArticle(companyID, articleID string) (*entity.Stock, error) {
	st, ok := r.store.stocks[stockKey(companyID, articleID)]
	if !ok {
		return nil, nil
	}
	cp := *st
	return &cp, nil
}

func (r *memStockRepo) GetForUpdateByArticle(companyID, articleID string) (*entity.Stock, error) {
	return r.GetByArticle(companyID, articleID)
}

// Upsert emula ON CONFLICT ... RETURNING id: si ya hay fila para
// (empresa, artículo), la entidad adopta el id de la fila existente.
func (r *memStockRepo) Upsert(stock *entity.Stock) error {
	key := stockKey(stock.CompanyID, stock.ArticleID)
	if existing, ok := r.store.stocks[key]; ok {
		stock.ID = existing.ID
	}
	cp := *stock
	r.store.stocks[key] = &cp
	return nil
}

func (r *memStockRepo) ListByCompany(companyID string) ([]*entity.Stock, error) {
	out := make([]*entity.Stock, 0)
	for _, st := range r.store.stocks {
		if st.CompanyID == companyID {
			cp := *st
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ArticleID < out[j].ArticleID })
	return out, nil
}

// ── Movimientos ───────────────────────────────────────────────────────────────

type memMovementRepo struct {
	store *memStore
}

func (r *memMovementRepo) Create(movement *entity.Movement) error {
	cp := *movement
	r.store.movements = append(r.store.movements, &cp)
	return nil
}

func (r *memMovementRepo) ListByArticle(companyID, articleID string, from, to *time.Time, limit, offset int) ([]*entity.Movement, error) {
	byStock := make(map[string]string) // stockID -> articleID
	for _, st := range r.store.stocks {
		byStock[st.ID] = st.ArticleID
	}
	out := make([]*entity.Movement, 0)
	for _, m := range r.store.movements {
		if m.CompanyID != companyID || byStock[m.StockID] != articleID {
			continue
		}
		if from != nil && m.Date.Before(*from) {
			continue
		}
		if to != nil && m.Date.After(*to) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (r *memMovementRepo) ListByLot(lotID string, limit, offset int) ([]*entity.Movement, error) {
	out := make([]*entity.Movement, 0)
	for _, m := range r.store.movements {
		if m.LotID != nil && *m.LotID == lotID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *memMovementRepo) LastDateForLot(lotID string) (*time.Time, error) {
	var last *time.Time
	for _, m := range r.store.movements {
		if m.LotID == nil || *m.LotID != lotID {
			continue
		}
		t := m.CreatedAt
		if last == nil || t.After(*last) {
			last = &t
		}
	}
	return last, nil
}

func (r *memMovementRepo) CountForLot(lotID string) (int64, error) {
	var count int64
	for _, m := range r.store.movements {
		if m.LotID != nil && *m.LotID == lotID {
			count++
		}
	}
	return count, nil
}

func (r *memMovementRepo) ExitTotalsSince(companyID string, since time.Time) (map[string]decimal.Decimal, error) {
	byStock := make(map[string]string)
	for _, st := range r.store.stocks {
		byStock[st.ID] = st.ArticleID
	}
	totals := make(map[string]decimal.Decimal)
	for _, m := range r.store.movements {
		if m.CompanyID != companyID || m.Type != entity.MovementTypeExit || m.Date.Before(since) {
			continue
		}
		articleID := byStock[m.StockID]
		totals[articleID] = totals[articleID].Add(m.Quantity)
	}
	return totals, nil
}

// ── Artículos ─────────────────────────────────────────────────────────────────

type memArticleRepo struct {
	store *memStore
}

func (r *memArticleRepo) GetByID(id string) (*entity.Article, error) {
	a, ok := r.store.articles[id]
	if !ok {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (r *memArticleRepo) ListByCompany(companyID string) ([]*entity.Article, error) {
	out := make([]*entity.Article, 0)
	for _, a := range r.store.articles {
		if a.CompanyID == companyID {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ── Generador de códigos determinista ─────────────────────────────────────────

type seqCodeGen struct {
	mu sync.Mutex
	n  int
}

func (g *seqCodeGen) next(prefix string, at time.Time) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%s-%04d", prefix, at.Format("20060102"), g.n)
}

func (g *seqCodeGen) LotCode(at time.Time) string      { return g.next("LOT", at) }
func (g *seqCodeGen) MovementCode(at time.Time) string { return g.next("MV", at) }
