package reconcile

import "fmt"

// Result tracks counts and errors from reconciling one poll cycle.
type Result struct {
	HeroesUpserted           int
	PricesUpserted           int
	SuppliesUpserted         int
	ScoresUpserted           int
	TournamentScoresUpserted int
	CardsUpserted            int
	PlayersUpserted          int
	Errors                   []string
}

// Add merges another Result into this one.
func (r *Result) Add(other Result) {
	r.HeroesUpserted += other.HeroesUpserted
	r.PricesUpserted += other.PricesUpserted
	r.SuppliesUpserted += other.SuppliesUpserted
	r.ScoresUpserted += other.ScoresUpserted
	r.TournamentScoresUpserted += other.TournamentScoresUpserted
	r.CardsUpserted += other.CardsUpserted
	r.PlayersUpserted += other.PlayersUpserted
	r.Errors = append(r.Errors, other.Errors...)
}

// AddError records an error message.
func (r *Result) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// AddErrorf records a formatted error message.
func (r *Result) AddErrorf(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

// Summary returns a human-readable summary of the reconcile pass.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"heroes=%d prices=%d supplies=%d scores=%d tournament_scores=%d cards=%d players=%d errors=%d",
		r.HeroesUpserted, r.PricesUpserted, r.SuppliesUpserted,
		r.ScoresUpserted, r.TournamentScoresUpserted,
		r.CardsUpserted, r.PlayersUpserted, len(r.Errors),
	)
}
