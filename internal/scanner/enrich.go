package scanner

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/solana"
	"zombie-scanner/internal/solana/layout"
)

// resolveNFTs fetches Metaplex metadata for candidates and keeps those whose
// name matches a dead collection. Failures skip the candidate.
func (s *Scanner) resolveNFTs(ctx context.Context, log logging.Logger, candidates []nftCandidate) []domain.Asset {
	if len(candidates) == 0 {
		return nil
	}

	results := make([]*domain.Asset, len(candidates))

	var g errgroup.Group
	g.SetLimit(s.cfg.MetadataConcurrency)

	for i, c := range candidates {
		g.Go(func() error {
			md, err := s.fetchMetadata(ctx, c.mint)
			if err != nil {
				log.WithError(err).WithField("mint", c.mint).Warnf("skipping NFT candidate")
				return nil
			}
			if md == nil || !s.catalog.MatchesDeadCollection(md.Name) {
				return nil
			}
			results[i] = nftAsset(c, md)
			return nil
		})
	}
	_ = g.Wait()

	nfts := make([]domain.Asset, 0, len(candidates))
	for _, a := range results {
		if a != nil {
			nfts = append(nfts, *a)
		}
	}
	return nfts
}

// fetchMetadata returns nil, nil when the mint has no metadata account.
func (s *Scanner) fetchMetadata(ctx context.Context, mint string) (*layout.Metadata, error) {
	pda, err := solana.MetadataPDA(mint)
	if err != nil {
		return nil, err
	}

	acct, err := s.ledger.GetAccountInfo(ctx, pda)
	if err != nil {
		return nil, err
	}
	if acct == nil || acct.Owner != solana.MetadataProgramID {
		return nil, nil
	}

	return layout.DecodeMetadata(acct.Data)
}

func nftAsset(c nftCandidate, md *layout.Metadata) *domain.Asset {
	a := &domain.Asset{
		Kind:         domain.AssetKindNonFungible,
		Mint:         c.mint,
		TokenAccount: c.account,
	}
	if md.Name != "" {
		name := md.Name
		a.Name = &name
	}
	if md.Symbol != "" {
		symbol := md.Symbol
		a.Symbol = &symbol
	}
	return a
}

// enrichTokens sets USD value and dormancy on token assets in place and
// returns the unit prices it resolved. Both lookups are best-effort.
func (s *Scanner) enrichTokens(ctx context.Context, log logging.Logger, tokens []domain.Asset) map[string]decimal.Decimal {
	if len(tokens) == 0 {
		return nil
	}

	mints := make([]string, 0, len(tokens))
	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t.Mint]; !ok {
			seen[t.Mint] = struct{}{}
			mints = append(mints, t.Mint)
		}
	}

	prices, err := s.prices.Prices(ctx, mints)
	if err != nil {
		log.WithError(err).Debugf("price lookup failed")
	}
	for i := range tokens {
		p, ok := prices[tokens[i].Mint]
		if !ok || tokens[i].Balance == nil {
			continue
		}
		value := tokens[i].Balance.Mul(p)
		tokens[i].USDValue = &value
	}

	s.lookupDormancy(ctx, log, tokens)
	return prices
}

// lookupDormancy sets DormancyDays on the first DormancyLookbackLimit tokens.
func (s *Scanner) lookupDormancy(ctx context.Context, log logging.Logger, tokens []domain.Asset) {
	limit := s.cfg.DormancyLookbackLimit
	if limit > len(tokens) {
		limit = len(tokens)
	}
	if limit == 0 {
		return
	}

	now := s.nowFn()

	var g errgroup.Group
	g.SetLimit(s.cfg.MetadataConcurrency)

	for i := 0; i < limit; i++ {
		g.Go(func() error {
			days, ok := s.dormancyDays(ctx, tokens[i].TokenAccount, now)
			if !ok {
				log.WithField("account", tokens[i].TokenAccount).Debugf("dormancy unknown")
				return nil
			}
			tokens[i].DormancyDays = &days
			return nil
		})
	}
	_ = g.Wait()
}

// dormancyDays returns whole days since the account's most recent signature.
func (s *Scanner) dormancyDays(ctx context.Context, account string, now time.Time) (int, bool) {
	sigs, err := s.ledger.GetSignaturesForAddress(ctx, account, &solana.SignaturesOpts{Limit: 1})
	if err != nil || len(sigs) == 0 || sigs[0].BlockTime == nil {
		return 0, false
	}

	idle := now.Sub(time.Unix(*sigs[0].BlockTime, 0))
	if idle < 0 {
		return 0, true
	}
	return int(idle / (24 * time.Hour)), true
}
