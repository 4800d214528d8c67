package scanner

import (
	"context"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"zombie-scanner/internal/catalog"
	"zombie-scanner/internal/domain"
	"zombie-scanner/internal/logging"
	"zombie-scanner/internal/scoring"
	"zombie-scanner/internal/solana"
	"zombie-scanner/internal/solana/layout"
)

// UnknownTokenName is shown for allowlisted tokens without display metadata.
const UnknownTokenName = "Unknown Token"

// holding is a decoded, non-empty token account.
type holding struct {
	account string
	mint    string
	amount  uint64
	program string
}

// nftCandidate is a holding that may be a dead-collection NFT.
type nftCandidate struct {
	holding
}

func (s *Scanner) decodeHolding(acct solana.KeyedAccount, program string) (holding, bool) {
	tok, err := layout.DecodeTokenAccount(acct.Account.Data)
	if err != nil {
		s.log.WithError(err).WithField("account", acct.Pubkey).Warnf("skipping undecodable token account")
		return holding{}, false
	}
	if tok.Amount == 0 {
		return holding{}, false
	}
	return holding{
		account: acct.Pubkey,
		mint:    tok.Mint,
		amount:  tok.Amount,
		program: program,
	}, true
}

// partition splits holdings into allowlisted token assets and NFT candidates,
// resolving decimals from mint accounts. Other holdings are dropped. A failed
// mint lookup fails the scan.
func (s *Scanner) partition(ctx context.Context, log logging.Logger, holdings []holding) ([]domain.Asset, []nftCandidate, error) {
	var relevant []holding
	for _, h := range holdings {
		if s.catalog.IsAllowlisted(h.mint) || h.amount == 1 {
			relevant = append(relevant, h)
		}
	}
	if len(relevant) == 0 {
		return []domain.Asset{}, nil, nil
	}

	decimals, err := s.mintDecimals(ctx, log, relevant)
	if err != nil {
		return nil, nil, err
	}

	tokens := make([]domain.Asset, 0, len(relevant))
	var candidates []nftCandidate

	for _, h := range relevant {
		if s.catalog.IsAllowlisted(h.mint) {
			info, _ := s.catalog.Token(h.mint)
			d, ok := decimals[h.mint]
			if !ok && info.Decimals != nil {
				d, ok = *info.Decimals, true
			}
			if !ok {
				log.WithField("mint", h.mint).Warnf("skipping token with unknown decimals")
				continue
			}
			tokens = append(tokens, tokenAsset(h, d, info))
			continue
		}

		if d, ok := decimals[h.mint]; ok && d == 0 {
			candidates = append(candidates, nftCandidate{holding: h})
		}
	}

	return tokens, candidates, nil
}

// mintDecimals fetches the mint accounts of holdings. Missing or undecodable
// mints are absent from the result; a failed lookup is returned as an error.
func (s *Scanner) mintDecimals(ctx context.Context, log logging.Logger, holdings []holding) (map[string]uint8, error) {
	seen := make(map[string]struct{}, len(holdings))
	mints := make([]string, 0, len(holdings))
	for _, h := range holdings {
		if _, ok := seen[h.mint]; ok {
			continue
		}
		seen[h.mint] = struct{}{}
		mints = append(mints, h.mint)
	}

	out := make(map[string]uint8, len(mints))

	ectx, cancel := context.WithTimeout(ctx, s.cfg.EnumerateTimeout)
	accounts, err := s.ledger.GetMultipleAccounts(ectx, mints)
	cancel()
	if err != nil {
		return nil, fmt.Errorf("fetch mint accounts: %w", ledgerTimeout(err))
	}

	for i, acct := range accounts {
		if i >= len(mints) || acct == nil {
			continue
		}
		m, err := layout.DecodeMint(acct.Data)
		if err != nil {
			log.WithError(err).WithField("mint", mints[i]).Warnf("undecodable mint account")
			continue
		}
		out[mints[i]] = m.Decimals
	}
	return out, nil
}

func tokenAsset(h holding, decimals uint8, info catalog.TokenInfo) domain.Asset {
	balance := decimal.NewFromBigInt(new(big.Int).SetUint64(h.amount), -int32(decimals))

	name := info.Name
	if name == "" {
		name = UnknownTokenName
	}

	a := domain.Asset{
		Kind:         domain.AssetKindToken,
		Mint:         h.mint,
		TokenAccount: h.account,
		Name:         &name,
		Balance:      &balance,
		Decimals:     decimals,
	}
	if info.Symbol != "" {
		symbol := info.Symbol
		a.Symbol = &symbol
	}
	return a
}

// classify assigns category and score. prices holds the USD unit price of
// every token mint that resolved one.
func classify(cat *catalog.Catalog, a *domain.Asset, prices map[string]decimal.Decimal) {
	if a.Kind == domain.AssetKindNonFungible {
		a.Category = scoring.ClassifyNFT()
		scoring.ScoreAsset(a)
		return
	}

	balance := decimal.Zero
	if a.Balance != nil {
		balance = *a.Balance
	}
	days := 0
	if a.DormancyDays != nil {
		days = *a.DormancyDays
	}

	var unitPrice *decimal.Decimal
	if p, ok := prices[a.Mint]; ok {
		unitPrice = &p
	}

	a.Category = scoring.Classify(cat, a.Mint, balance, unitPrice, days)
	scoring.ScoreAsset(a)
}
