package jurisdiction

import (
	"context"

	jerrors "gigpay/internal/jurisdiction/errors"
	"gigpay/internal/laborrule"
	"gigpay/internal/shared/clock"

	"go.uber.org/zap"
)

type Resolver interface {
	// ResolveTax mencari satu yurisdiksi aktif paling spesifik untuk lokasi
	// pekerja: (country,state,city) -> (country,state) -> (country).
	// Match pertama menang; tidak ada merge antar level.
	ResolveTax(ctx context.Context, country string, state, city *string) (*TaxJurisdiction, error)
	// ResolveRules mengembalikan aturan ketenagakerjaan yang berlaku,
	// diurutkan dari yurisdiksi paling spesifik: "CC-SS", "CC", lalu kode
	// blok regional bila negara itu anggota blok.
	ResolveRules(ctx context.Context, country string, state *string) ([]laborrule.LaborLawRule, error)
}

type resolver struct {
	repo     Repository
	ruleRepo laborrule.Repository
	clk      clock.Clock
	logger   *zap.Logger
}

func NewResolver(repo Repository, ruleRepo laborrule.Repository, clk clock.Clock, logger ...*zap.Logger) Resolver {
	l := zap.L().Named("jurisdiction.resolver")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("jurisdiction.resolver")
	}
	return &resolver{repo: repo, ruleRepo: ruleRepo, clk: clk, logger: l}
}

func (r *resolver) ResolveTax(ctx context.Context, country string, state, city *string) (*TaxJurisdiction, error) {
	if country == "" {
		return nil, jerrors.ErrInvalidCountryCode
	}

	// Daftar kandidat eksplisit, paling spesifik dulu. Fold first-match
	// membuat kontrak precedence terlihat dan bisa di-unit-test terpisah.
	candidates := [][2]*string{
		{state, city},
		{state, nil},
		{nil, nil},
	}

	var tried [][2]*string
	for _, cand := range candidates {
		// Lewati kandidat yang identik dengan yang sudah dicoba (mis: city
		// tidak diberikan, sehingga level 1 dan 2 sama).
		if containsTuple(tried, cand) {
			continue
		}
		tried = append(tried, cand)

		j, err := r.repo.FindActiveByTuple(ctx, country, cand[0], cand[1])
		if err != nil {
			if IsNotFound(err) {
				continue
			}
			r.logger.Error("jurisdiction lookup failed",
				zap.String("country", country),
				zap.Error(err),
			)
			return nil, err
		}
		return j, nil
	}

	r.logger.Warn("no tax jurisdiction for location",
		zap.String("country", country),
		zap.Stringp("state", state),
		zap.Stringp("city", city),
	)
	return nil, jerrors.ErrJurisdictionNotFound
}

func (r *resolver) ResolveRules(ctx context.Context, country string, state *string) ([]laborrule.LaborLawRule, error) {
	if country == "" {
		return nil, jerrors.ErrInvalidCountryCode
	}

	codes := CandidateCodes(country, state)
	rules, err := r.ruleRepo.FindEffectiveByJurisdictions(ctx, codes, r.clk.Now())
	if err != nil {
		r.logger.Error("rule lookup failed", zap.String("country", country), zap.Error(err))
		return nil, err
	}
	return rules, nil
}

// CandidateCodes membangun daftar kode yurisdiksi berprioritas untuk sebuah
// lokasi: region ("US-CA") dulu, lalu negara ("US"), lalu blok ("EU").
func CandidateCodes(country string, state *string) []string {
	codes := make([]string, 0, 3)
	if state != nil && *state != "" {
		codes = append(codes, country+"-"+*state)
	}
	codes = append(codes, country)
	if bloc := RegionalBloc(country); bloc != "" {
		codes = append(codes, bloc)
	}
	return codes
}

func containsTuple(list [][2]*string, t [2]*string) bool {
	for _, x := range list {
		if equalTuple(x, t) {
			return true
		}
	}
	return false
}

func equalTuple(a, b [2]*string) bool {
	eq := func(x, y *string) bool {
		if x == nil || *x == "" {
			return y == nil || *y == ""
		}
		return y != nil && *x == *y
	}
	return eq(a[0], b[0]) && eq(a[1], b[1])
}
