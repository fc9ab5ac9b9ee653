package mocks

import (
	"sync"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
)

// Store is an in-memory database shared by the mock repositories. Balance and budget
// mutators behave like the conditional updates of the real repositories, and
// transactions begun through MockTransactionManager roll back unless committed.
type Store struct {
	mu     sync.Mutex
	nextID int64
	data   storeData

	// FailOn injects an error into the named operation, e.g. "logs.Create".
	FailOn map[string]error
}

type storeData struct {
	users       map[int64]domain.User
	campaigns   map[int64]domain.Campaign
	sites       map[int64]domain.Site
	adSlots     map[int64]domain.AdSlot
	creatives   map[int64]domain.Creative
	links       map[int64]map[int64]bool
	withdrawals map[int64]domain.Withdrawal
	logs        map[int64]domain.TransactionLog
	referrals   map[int64]domain.ReferralEarning
	events      map[int64]domain.AnalyticsEvent
}

func NewStore() *Store {
	return &Store{
		data: storeData{
			users:       map[int64]domain.User{},
			campaigns:   map[int64]domain.Campaign{},
			sites:       map[int64]domain.Site{},
			adSlots:     map[int64]domain.AdSlot{},
			creatives:   map[int64]domain.Creative{},
			links:       map[int64]map[int64]bool{},
			withdrawals: map[int64]domain.Withdrawal{},
			logs:        map[int64]domain.TransactionLog{},
			referrals:   map[int64]domain.ReferralEarning{},
			events:      map[int64]domain.AnalyticsEvent{},
		},
		FailOn: map[string]error{},
	}
}

// Repositories returns mock repositories backed by s.
func (s *Store) Repositories() usecase.Repositories {
	return usecase.Repositories{
		Users:       &MockUserRepository{s: s},
		Campaigns:   &MockCampaignRepository{s: s},
		AdSlots:     &MockAdSlotRepository{s: s},
		Sites:       &MockSiteRepository{s: s},
		Creatives:   &MockCreativeRepository{s: s},
		Withdrawals: &MockWithdrawalRepository{s: s},
		Logs:        &MockTransactionLogRepository{s: s},
		Referrals:   &MockReferralRepository{s: s},
		Analytics:   &MockAnalyticsRepository{s: s},
		Ledger:      &MockLedgerRepository{s: s},
	}
}

func (s *Store) fail(op string) error {
	return s.FailOn[op]
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) snapshot() storeData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.clone()
}

func (s *Store) restore(d storeData) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = d
}

func (d storeData) clone() storeData {
	out := storeData{
		users:       cloneMap(d.users),
		campaigns:   cloneMap(d.campaigns),
		sites:       cloneMap(d.sites),
		adSlots:     cloneMap(d.adSlots),
		creatives:   cloneMap(d.creatives),
		links:       make(map[int64]map[int64]bool, len(d.links)),
		withdrawals: cloneMap(d.withdrawals),
		logs:        cloneMap(d.logs),
		referrals:   cloneMap(d.referrals),
		events:      cloneMap(d.events),
	}
	for slot, campaigns := range d.links {
		out.links[slot] = cloneMap(campaigns)
	}
	return out
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Seeding and inspection helpers.

func (s *Store) AddUser(u domain.User) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == 0 {
		u.ID = s.id()
	}
	if u.Role == "" {
		u.Role = domain.RoleUser
	}
	s.data.users[u.ID] = u
	return u.ID
}

func (s *Store) AddCampaign(c domain.Campaign) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.data.campaigns[c.ID] = c
	return c.ID
}

func (s *Store) AddSite(site domain.Site) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if site.ID == 0 {
		site.ID = s.id()
	}
	s.data.sites[site.ID] = site
	return site.ID
}

func (s *Store) AddAdSlot(slot domain.AdSlot) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slot.ID == 0 {
		slot.ID = s.id()
	}
	s.data.adSlots[slot.ID] = slot
	return slot.ID
}

func (s *Store) AddCreative(c domain.Creative) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == 0 {
		c.ID = s.id()
	}
	s.data.creatives[c.ID] = c
	return c.ID
}

func (s *Store) AddLog(l domain.TransactionLog) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == 0 {
		l.ID = s.id()
	}
	s.data.logs[l.ID] = l
	return l.ID
}

func (s *Store) Link(adSlotID, campaignID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.link(adSlotID, campaignID)
}

func (s *Store) link(adSlotID, campaignID int64) {
	if s.data.links[adSlotID] == nil {
		s.data.links[adSlotID] = map[int64]bool{}
	}
	s.data.links[adSlotID][campaignID] = true
}

func (s *Store) User(id int64) domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.users[id]
}

func (s *Store) Campaign(id int64) (domain.Campaign, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.data.campaigns[id]
	return c, ok
}

func (s *Store) Withdrawal(id int64) domain.Withdrawal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.withdrawals[id]
}

func (s *Store) Linked(adSlotID, campaignID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.links[adSlotID][campaignID]
}

// Logs returns the log rows of the given type ordered by id.
func (s *Store) Logs(t domain.TransactionType) []domain.TransactionLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.TransactionLog
	for id := int64(1); id <= s.nextID; id++ {
		if l, ok := s.data.logs[id]; ok && l.Type == t {
			out = append(out, l)
		}
	}
	return out
}

func (s *Store) Events(t domain.AnalyticsEventType) []domain.AnalyticsEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.AnalyticsEvent
	for id := int64(1); id <= s.nextID; id++ {
		if e, ok := s.data.events[id]; ok && e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) ReferralEarnings() []domain.ReferralEarning {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ReferralEarning, 0, len(s.data.referrals))
	for _, e := range s.data.referrals {
		out = append(out, e)
	}
	return out
}
