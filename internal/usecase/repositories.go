package usecase

// Repositories groups the storage ports shared by the services.
type Repositories struct {
	Users       UserRepository
	Campaigns   CampaignRepository
	AdSlots     AdSlotRepository
	Sites       SiteRepository
	Creatives   CreativeRepository
	Withdrawals WithdrawalRepository
	Logs        TransactionLogRepository
	Referrals   ReferralRepository
	Analytics   AnalyticsRepository
	Ledger      LedgerRepository
}
