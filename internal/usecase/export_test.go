package usecase

import "time"

func (uc *CampaignUseCase) SetClock(now func() time.Time)   { uc.now = now }
func (uc *AdServingUseCase) SetClock(now func() time.Time)  { uc.now = now }
func (uc *WithdrawalUseCase) SetClock(now func() time.Time) { uc.now = now }

func (uc *AdServingUseCase) SetCreativePicker(p CreativePicker) { uc.picker = p }
