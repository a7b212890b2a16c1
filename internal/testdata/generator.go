package testdata

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/jask/jaskrecur/internal/database/repository"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Accounts     *repository.AccountRepo
	Transactions *repository.TransactionRepo
}

// Seed creates a sample account with a year of history containing
// several recurring patterns plus noise. The random source is fixed
// so repeated seeds produce the same data.
func Seed(ctx context.Context, repos Repos) error {
	rng := rand.New(rand.NewSource(42))

	acct := repository.Account{ID: uuid.NewString(), BudgetID: "sample-budget", Name: "Sample Checking", Institution: "Sample Bank"}
	if err := repos.Accounts.Upsert(ctx, acct); err != nil {
		return err
	}

	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	// monthly subscription, fixed amount, same day each month
	for m := 0; m < 12; m++ {
		tx := repository.Transaction{
			ID:          uuid.NewString(),
			AccountID:   acct.ID,
			Date:        start.AddDate(0, m, 14),
			AmountCents: -1599,
			Description: "SPOTIFY P2A4B8C1D9",
			Category:    "Entertainment",
		}
		if err := repos.Transactions.Insert(ctx, tx); err != nil {
			return err
		}
	}

	// weekly groceries, variable amount
	for w := 0; w < 52; w++ {
		amount := int64(8000 + rng.Intn(6000))
		tx := repository.Transaction{
			ID:          uuid.NewString(),
			AccountID:   acct.ID,
			Date:        start.AddDate(0, 0, 4+w*7),
			AmountCents: -amount,
			Description: "WOOLWORTHS 1047 METRO",
			Category:    "Groceries",
		}
		if err := repos.Transactions.Insert(ctx, tx); err != nil {
			return err
		}
	}

	// biweekly salary
	for p := 0; p < 26; p++ {
		tx := repository.Transaction{
			ID:          uuid.NewString(),
			AccountID:   acct.ID,
			Date:        start.AddDate(0, 0, 2+p*14),
			AmountCents: 245000,
			Description: "SALARY ACME PTY LTD 88213377",
			Category:    "Income",
		}
		if err := repos.Transactions.Insert(ctx, tx); err != nil {
			return err
		}
	}

	// quarterly insurance
	for q := 0; q < 4; q++ {
		tx := repository.Transaction{
			ID:          uuid.NewString(),
			AccountID:   acct.ID,
			Date:        start.AddDate(0, q*3, 9),
			AmountCents: -31250,
			Description: "AAMI INSURANCE 0077341902",
			Category:    "Insurance",
		}
		if err := repos.Transactions.Insert(ctx, tx); err != nil {
			return err
		}
	}

	// one-off noise
	descs := []string{"UBER EATS* SUSHI", "AMAZON.COM*XK91B2", "BUNNINGS WAREHOUSE", "BP FUEL 2204", "KMART 1188"}
	for i := 0; i < 30; i++ {
		tx := repository.Transaction{
			ID:          uuid.NewString(),
			AccountID:   acct.ID,
			Date:        start.AddDate(0, 0, rng.Intn(364)),
			AmountCents: -int64(500 + rng.Intn(20000)),
			Description: descs[rng.Intn(len(descs))],
			Category:    "Shopping",
		}
		if err := repos.Transactions.Insert(ctx, tx); err != nil {
			return err
		}
	}
	return nil
}
