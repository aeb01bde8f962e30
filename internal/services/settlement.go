package services

import (
	"math"
	"math/bits"

	"wager-ledger/internal/models"
)

// ScaleByOdds returns floor(amount*num/den) computed over a 128-bit product.
func ScaleByOdds(amount, num, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrArithmeticOverflow
	}
	hi, lo := bits.Mul64(amount, num)
	if hi >= den {
		return 0, ErrArithmeticOverflow
	}
	quo, _ := bits.Div64(hi, lo, den)
	return quo, nil
}

// AcceptorStake is what the acceptor deposits to match the creator's stake at
// the bet's odds. It is also the creator's profit on a win.
func AcceptorStake(bet *models.Bet) (uint64, error) {
	return ScaleByOdds(bet.StakeAmount, bet.OddsWin, bet.OddsLose)
}

// Settlement is the computed outcome of resolving an accepted bet.
type Settlement struct {
	Winner          models.Address `json:"winner"`
	Loser           models.Address `json:"loser"`
	WinnerIsCreator bool           `json:"winner_is_creator"`
	Payout          uint64         `json:"payout"`
	AcceptorStake   uint64         `json:"acceptor_stake"`
	Disbursed       uint64         `json:"disbursed"`
}

// settle applies the outcome to both profiles. The profiles are only modified
// when every counter update fits.
func settle(bet *models.Bet, creator, acceptor *models.Profile, winnerIsCreator bool) (*Settlement, error) {
	payout, err := AcceptorStake(bet)
	if err != nil {
		return nil, err
	}
	acceptorStake := payout

	c, a := *creator, *acceptor
	if winnerIsCreator {
		if c.WinsAsCreator, err = incCount(c.WinsAsCreator); err != nil {
			return nil, err
		}
		if c.CreatorProfit, err = addProfit(c.CreatorProfit, payout); err != nil {
			return nil, err
		}
		if a.LossesAsAcceptor, err = incCount(a.LossesAsAcceptor); err != nil {
			return nil, err
		}
		if a.AcceptorProfit, err = subProfit(a.AcceptorProfit, bet.StakeAmount); err != nil {
			return nil, err
		}
	} else {
		if a.WinsAsAcceptor, err = incCount(a.WinsAsAcceptor); err != nil {
			return nil, err
		}
		if a.AcceptorProfit, err = addProfit(a.AcceptorProfit, payout); err != nil {
			return nil, err
		}
		if c.LossesAsCreator, err = incCount(c.LossesAsCreator); err != nil {
			return nil, err
		}
		if c.CreatorProfit, err = subProfit(c.CreatorProfit, bet.StakeAmount); err != nil {
			return nil, err
		}
	}
	if c.CreatorVolume, err = addVolume(c.CreatorVolume, bet.StakeAmount); err != nil {
		return nil, err
	}
	if a.AcceptorVolume, err = addVolume(a.AcceptorVolume, acceptorStake); err != nil {
		return nil, err
	}

	*creator, *acceptor = c, a

	s := &Settlement{
		WinnerIsCreator: winnerIsCreator,
		Payout:          payout,
		AcceptorStake:   acceptorStake,
	}
	if winnerIsCreator {
		s.Winner, s.Loser = bet.Creator, *bet.Acceptor
	} else {
		s.Winner, s.Loser = *bet.Acceptor, bet.Creator
	}
	return s, nil
}

func incCount(v uint32) (uint32, error) {
	if v == math.MaxUint32 {
		return 0, ErrArithmeticOverflow
	}
	return v + 1, nil
}

func addVolume(v, delta uint64) (uint64, error) {
	sum, carry := bits.Add64(v, delta, 0)
	if carry != 0 {
		return 0, ErrArithmeticOverflow
	}
	return sum, nil
}

func addProfit(v int64, delta uint64) (int64, error) {
	if delta > math.MaxInt64 || v > math.MaxInt64-int64(delta) {
		return 0, ErrArithmeticOverflow
	}
	return v + int64(delta), nil
}

func subProfit(v int64, delta uint64) (int64, error) {
	if delta > math.MaxInt64 || v < math.MinInt64+int64(delta) {
		return 0, ErrArithmeticOverflow
	}
	return v - int64(delta), nil
}
