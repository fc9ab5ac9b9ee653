package usecase_test

import (
	"strconv"
	"testing"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/smartlink/internal/domain"
	"github.com/iho/smartlink/internal/usecase"
	"github.com/iho/smartlink/internal/usecase/mocks"
)

type fixture struct {
	store *mocks.Store
	txm   *mocks.MockTransactionManager
	repos usecase.Repositories
	idGen *mocks.MockIDGenerator
	log   zerolog.Logger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := mocks.NewStore()
	return &fixture{
		store: store,
		txm:   mocks.NewMockTransactionManager(store),
		repos: store.Repositories(),
		idGen: mocks.NewMockIDGenerator(),
		log:   zerolog.Nop(),
	}
}

func (f *fixture) user(balance string) int64 {
	return f.store.AddUser(domain.User{Email: "u@example.com", Balance: d(balance)})
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func itoa(v int64) string { return strconv.FormatInt(v, 10) }
