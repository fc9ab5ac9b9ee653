package mocks

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

// MockUserRepository is an in-memory UserRepository.
type MockUserRepository struct{ s *Store }

func (r *MockUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := s.data.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &u, nil
}

func (r *MockUserRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *MockUserRepository) update(op string, id int64, apply func(u *domain.User) bool) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("users." + op); err != nil {
		return false, err
	}
	u, ok := s.data.users[id]
	if !ok {
		return false, nil
	}
	if !apply(&u) {
		return false, nil
	}
	u.UpdatedAt = time.Now().UTC()
	s.data.users[id] = u
	return true, nil
}

func (r *MockUserRepository) DeductBalance(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) (bool, error) {
	return r.update("DeductBalance", id, func(u *domain.User) bool { return u.DeductBalance(amount) })
}

func (r *MockUserRepository) AddBalance(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) error {
	ok, err := r.update("AddBalance", id, func(u *domain.User) bool { u.AddBalance(amount); return true })
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *MockUserRepository) FreezeBalance(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) (bool, error) {
	return r.update("FreezeBalance", id, func(u *domain.User) bool { return u.FreezeBalance(amount) })
}

func (r *MockUserRepository) UnfreezeBalance(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) (bool, error) {
	return r.update("UnfreezeBalance", id, func(u *domain.User) bool { return u.UnfreezeBalance(amount) })
}

func (r *MockUserRepository) BurnFrozen(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) (bool, error) {
	return r.update("BurnFrozen", id, func(u *domain.User) bool { return u.BurnFrozen(amount) })
}

// MockCampaignRepository is an in-memory CampaignRepository.
type MockCampaignRepository struct{ s *Store }

func (r *MockCampaignRepository) Create(ctx context.Context, tx usecase.Transaction, c *domain.Campaign) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("campaigns.Create"); err != nil {
		return err
	}
	c.ID = s.id()
	s.data.campaigns[c.ID] = *c
	return nil
}

func (r *MockCampaignRepository) Update(ctx context.Context, tx usecase.Transaction, c *domain.Campaign) error {
	return r.mutate("Update", c.ID, func(stored *domain.Campaign) {
		stored.Name = c.Name
		stored.Description = c.Description
		stored.StartDate = c.StartDate
		stored.EndDate = c.EndDate
	})
}

func (r *MockCampaignRepository) GetByID(ctx context.Context, id int64) (*domain.Campaign, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("campaigns.GetByID"); err != nil {
		return nil, err
	}
	c, ok := s.data.campaigns[id]
	if !ok {
		return nil, domain.ErrCampaignNotFound
	}
	return &c, nil
}

func (r *MockCampaignRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Campaign, error) {
	return r.GetByID(ctx, id)
}

func (r *MockCampaignRepository) mutate(op string, id int64, apply func(c *domain.Campaign)) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("campaigns." + op); err != nil {
		return err
	}
	c, ok := s.data.campaigns[id]
	if !ok {
		return domain.ErrCampaignNotFound
	}
	apply(&c)
	c.UpdatedAt = time.Now().UTC()
	s.data.campaigns[id] = c
	return nil
}

func (r *MockCampaignRepository) AddBudget(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) error {
	return r.mutate("AddBudget", id, func(c *domain.Campaign) { c.Budget = c.Budget.Add(amount) })
}

func (r *MockCampaignRepository) DeductBudget(ctx context.Context, tx usecase.Transaction, id int64, amount decimal.Decimal) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("campaigns.DeductBudget"); err != nil {
		return false, err
	}
	c, ok := s.data.campaigns[id]
	if !ok || !c.DeductBudget(amount) {
		return false, nil
	}
	s.data.campaigns[id] = c
	return true, nil
}

func (r *MockCampaignRepository) ShrinkBudget(ctx context.Context, tx usecase.Transaction, id int64) (decimal.Decimal, error) {
	unused := decimal.Zero
	err := r.mutate("ShrinkBudget", id, func(c *domain.Campaign) {
		if rem := c.RemainingBudget(); rem.IsPositive() {
			unused = rem
			c.Budget = c.Spent
		}
	})
	return unused, err
}

func (r *MockCampaignRepository) SetActive(ctx context.Context, tx usecase.Transaction, id int64, active bool) error {
	return r.mutate("SetActive", id, func(c *domain.Campaign) { c.IsActive = active })
}

func (r *MockCampaignRepository) Delete(ctx context.Context, tx usecase.Transaction, id int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("campaigns.Delete"); err != nil {
		return err
	}
	if _, ok := s.data.campaigns[id]; !ok {
		return domain.ErrCampaignNotFound
	}
	delete(s.data.campaigns, id)
	for _, campaigns := range s.data.links {
		delete(campaigns, id)
	}
	return nil
}

func (r *MockCampaignRepository) list(op string, keep func(c domain.Campaign) bool) ([]*domain.Campaign, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("campaigns." + op); err != nil {
		return nil, err
	}
	var out []*domain.Campaign
	for _, c := range s.data.campaigns {
		if keep(c) {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *MockCampaignRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Campaign, error) {
	out, err := r.list("ListByUser", func(c domain.Campaign) bool { return c.UserID == userID })
	return page(out, limit, offset), err
}

func (r *MockCampaignRepository) ListExpiredOrExhausted(ctx context.Context, now time.Time) ([]*domain.Campaign, error) {
	return r.list("ListExpiredOrExhausted", func(c domain.Campaign) bool {
		return c.IsActive && (c.IsExpired(now) || c.IsExhausted())
	})
}

func (r *MockCampaignRepository) ListAboveSpendRatio(ctx context.Context, ratio decimal.Decimal) ([]*domain.Campaign, error) {
	return r.list("ListAboveSpendRatio", func(c domain.Campaign) bool {
		return c.IsActive && c.Budget.IsPositive() && c.Spent.GreaterThan(c.Budget.Mul(ratio))
	})
}

func (r *MockCampaignRepository) ListServable(ctx context.Context, adSlotID int64, now time.Time) ([]*domain.Campaign, error) {
	r.s.mu.Lock()
	linked := cloneMap(r.s.data.links[adSlotID])
	r.s.mu.Unlock()
	return r.list("ListServable", func(c domain.Campaign) bool {
		return linked[c.ID] && c.IsActive && c.IsRunning(now) && !c.IsExhausted()
	})
}

// MockAdSlotRepository is an in-memory AdSlotRepository.
type MockAdSlotRepository struct{ s *Store }

func (r *MockAdSlotRepository) GetByID(ctx context.Context, id int64) (*domain.AdSlot, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("adslots.GetByID"); err != nil {
		return nil, err
	}
	slot, ok := s.data.adSlots[id]
	if !ok {
		return nil, domain.ErrAdSlotNotFound
	}
	if site, ok := s.data.sites[slot.SiteID]; ok {
		slot.SiteActive = site.IsActive
		slot.SiteUserID = site.UserID
	}
	return &slot, nil
}

func (r *MockAdSlotRepository) AttachCampaign(ctx context.Context, adSlotID, campaignID int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.adSlots[adSlotID]; !ok {
		return domain.ErrAdSlotNotFound
	}
	if _, ok := s.data.campaigns[campaignID]; !ok {
		return domain.ErrCampaignNotFound
	}
	s.link(adSlotID, campaignID)
	return nil
}

func (r *MockAdSlotRepository) DetachCampaign(ctx context.Context, adSlotID, campaignID int64) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data.adSlots[adSlotID]; !ok {
		return domain.ErrAdSlotNotFound
	}
	delete(s.data.links[adSlotID], campaignID)
	return nil
}

// MockSiteRepository is an in-memory SiteRepository.
type MockSiteRepository struct{ s *Store }

func (r *MockSiteRepository) GetByID(ctx context.Context, id int64) (*domain.Site, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	site, ok := s.data.sites[id]
	if !ok {
		return nil, domain.ErrSiteNotFound
	}
	return &site, nil
}

// MockCreativeRepository is an in-memory CreativeRepository.
type MockCreativeRepository struct{ s *Store }

func (r *MockCreativeRepository) ListActiveByCampaigns(ctx context.Context, campaignIDs []int64) (map[int64][]*domain.Creative, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("creatives.ListActiveByCampaigns"); err != nil {
		return nil, err
	}
	wanted := make(map[int64]bool, len(campaignIDs))
	for _, id := range campaignIDs {
		wanted[id] = true
	}
	out := map[int64][]*domain.Creative{}
	for _, c := range s.data.creatives {
		if c.IsActive && wanted[c.CampaignID] {
			c := c
			out[c.CampaignID] = append(out[c.CampaignID], &c)
		}
	}
	return out, nil
}

// MockWithdrawalRepository is an in-memory WithdrawalRepository.
type MockWithdrawalRepository struct{ s *Store }

func (r *MockWithdrawalRepository) Create(ctx context.Context, tx usecase.Transaction, w *domain.Withdrawal) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("withdrawals.Create"); err != nil {
		return err
	}
	w.ID = s.id()
	s.data.withdrawals[w.ID] = *w
	return nil
}

func (r *MockWithdrawalRepository) GetByID(ctx context.Context, id int64) (*domain.Withdrawal, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.data.withdrawals[id]
	if !ok {
		return nil, domain.ErrWithdrawalNotFound
	}
	return &w, nil
}

func (r *MockWithdrawalRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id int64) (*domain.Withdrawal, error) {
	return r.GetByID(ctx, id)
}

func (r *MockWithdrawalRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id int64, from, to domain.WithdrawalStatus, notes string, processedAt *time.Time) (bool, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("withdrawals.UpdateStatus"); err != nil {
		return false, err
	}
	w, ok := s.data.withdrawals[id]
	if !ok || w.Status != from {
		return false, nil
	}
	w.Status = to
	w.Notes = notes
	if processedAt != nil {
		w.ProcessedAt = processedAt
	}
	w.UpdatedAt = time.Now().UTC()
	s.data.withdrawals[id] = w
	return true, nil
}

func (r *MockWithdrawalRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.Withdrawal, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.Withdrawal
	for _, w := range s.data.withdrawals {
		if w.UserID == userID {
			w := w
			out = append(out, &w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

// MockTransactionLogRepository is an in-memory TransactionLogRepository.
type MockTransactionLogRepository struct{ s *Store }

func (r *MockTransactionLogRepository) Create(ctx context.Context, tx usecase.Transaction, l *domain.TransactionLog) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("logs.Create"); err != nil {
		return err
	}
	if l.Type == domain.TransactionTypeDeposit {
		for _, existing := range s.data.logs {
			if existing.Type == l.Type && existing.Reference == l.Reference {
				return domain.ErrDuplicateDeposit
			}
		}
	}
	l.ID = s.id()
	s.data.logs[l.ID] = *l
	return nil
}

func (r *MockTransactionLogRepository) GetByReference(ctx context.Context, reference string, txType domain.TransactionType) (*domain.TransactionLog, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("logs.GetByReference"); err != nil {
		return nil, err
	}
	for _, l := range s.data.logs {
		if l.Reference == reference && l.Type == txType {
			return &l, nil
		}
	}
	return nil, domain.ErrTransactionNotFound
}

func (r *MockTransactionLogRepository) GetByReferenceForUpdate(ctx context.Context, tx usecase.Transaction, reference string, txType domain.TransactionType) (*domain.TransactionLog, error) {
	return r.GetByReference(ctx, reference, txType)
}

func (r *MockTransactionLogRepository) UpdateStatus(ctx context.Context, tx usecase.Transaction, id int64, status domain.TransactionStatus, description string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("logs.UpdateStatus"); err != nil {
		return err
	}
	l, ok := s.data.logs[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	l.Status = status
	l.Description = description
	l.UpdatedAt = time.Now().UTC()
	s.data.logs[id] = l
	return nil
}

func (r *MockTransactionLogRepository) MarkFailed(ctx context.Context, id int64, description string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.data.logs[id]
	if !ok {
		return domain.ErrTransactionNotFound
	}
	l.Status = domain.TransactionStatusFailed
	l.Description = description
	s.data.logs[id] = l
	return nil
}

func (r *MockTransactionLogRepository) List(ctx context.Context, filter domain.TransactionLogFilter) ([]*domain.TransactionLog, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.TransactionLog
	for _, l := range s.data.logs {
		if filter.UserID != 0 && l.UserID != filter.UserID {
			continue
		}
		if filter.Type != "" && l.Type != filter.Type {
			continue
		}
		if filter.Status != "" && l.Status != filter.Status {
			continue
		}
		l := l
		out = append(out, &l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, filter.Limit, filter.Offset), nil
}

// MockReferralRepository is an in-memory ReferralRepository.
type MockReferralRepository struct{ s *Store }

func (r *MockReferralRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.ReferralEarning) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.data.referrals {
		if existing.SourceTransactionID == e.SourceTransactionID {
			return domain.ErrReferralAlreadyPaid
		}
	}
	e.ID = s.id()
	s.data.referrals[e.ID] = *e
	return nil
}

func (r *MockReferralRepository) ListByUser(ctx context.Context, userID int64, limit, offset int) ([]*domain.ReferralEarning, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.ReferralEarning
	for _, e := range s.data.referrals {
		if e.UserID == userID {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

// MockAnalyticsRepository is an in-memory AnalyticsRepository.
type MockAnalyticsRepository struct{ s *Store }

func (r *MockAnalyticsRepository) Create(ctx context.Context, tx usecase.Transaction, e *domain.AnalyticsEvent) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("analytics.Create"); err != nil {
		return err
	}
	e.ID = s.id()
	s.data.events[e.ID] = *e
	return nil
}

func (r *MockAnalyticsRepository) ListByUser(ctx context.Context, userID int64, eventType domain.AnalyticsEventType, limit, offset int) ([]*domain.AnalyticsEvent, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*domain.AnalyticsEvent
	for _, e := range s.data.events {
		if e.UserID == userID && (eventType == "" || e.Type == eventType) {
			e := e
			out = append(out, &e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return page(out, limit, offset), nil
}

// MockLedgerRepository computes ledger totals from the store.
type MockLedgerRepository struct{ s *Store }

func (r *MockLedgerRepository) Totals(ctx context.Context) (*usecase.LedgerTotals, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fail("ledger.Totals"); err != nil {
		return nil, err
	}
	t := &usecase.LedgerTotals{}
	for _, u := range s.data.users {
		t.UserBalance = t.UserBalance.Add(u.Balance)
		t.UserFrozen = t.UserFrozen.Add(u.FrozenBalance)
	}
	for _, c := range s.data.campaigns {
		t.CampaignBudget = t.CampaignBudget.Add(c.Budget)
		t.CampaignSpent = t.CampaignSpent.Add(c.Spent)
	}
	for _, l := range s.data.logs {
		switch {
		case l.Type == domain.TransactionTypeDeposit && l.Status == domain.TransactionStatusCompleted:
			t.CompletedDeposits = t.CompletedDeposits.Add(l.Amount)
		case l.Type == domain.TransactionTypeWithdrawal && l.Status == domain.TransactionStatusCompleted:
			t.ProcessedWithdrawal = t.ProcessedWithdrawal.Add(l.Amount)
		}
	}
	for _, e := range s.data.referrals {
		t.ReferralEarnings = t.ReferralEarnings.Add(e.Amount)
	}
	return t, nil
}

func (r *MockLedgerRepository) CountViolations(ctx context.Context) (int64, int64, error) {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()
	var negative, overspent int64
	for _, u := range s.data.users {
		if u.Balance.IsNegative() || u.FrozenBalance.IsNegative() {
			negative++
		}
	}
	for _, c := range s.data.campaigns {
		if c.Spent.GreaterThan(c.Budget) {
			overspent++
		}
	}
	return negative, overspent, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
