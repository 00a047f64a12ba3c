package engine

// Heuristics are the evaluator weights.
type Heuristics struct {
	LineWeights     []float64 `json:"line_weights" mapstructure:"line_weights"`
	GrowthFactor    float64   `json:"growth_factor" mapstructure:"growth_factor"`
	CompleteLine    float64   `json:"complete_line" mapstructure:"complete_line"`
	OpenBoth        float64   `json:"open_both" mapstructure:"open_both"`
	OpenOne         float64   `json:"open_one" mapstructure:"open_one"`
	Closed          float64   `json:"closed" mapstructure:"closed"`
	ForkBonus       float64   `json:"fork_bonus" mapstructure:"fork_bonus"`
	ForkPenalty     float64   `json:"fork_penalty" mapstructure:"fork_penalty"`
	SwapWinBonus    float64   `json:"swap_win_bonus" mapstructure:"swap_win_bonus"`
	SwapGiftPenalty float64   `json:"swap_gift_penalty" mapstructure:"swap_gift_penalty"`
}

func DefaultHeuristics() Heuristics {
	return Heuristics{
		LineWeights:     []float64{0, 2, 10, 60, 350, 2200},
		GrowthFactor:    4,
		CompleteLine:    200000,
		OpenBoth:        1.9,
		OpenOne:         1.25,
		Closed:          0.75,
		ForkBonus:       15000,
		ForkPenalty:     16000,
		SwapWinBonus:    5000,
		SwapGiftPenalty: 5500,
	}
}

// Evaluator scores positions for one win length.
type Evaluator struct {
	h       Heuristics
	k       int
	weights []float64
}

func NewEvaluator(h Heuristics, k int) *Evaluator {
	return &Evaluator{h: h, k: k, weights: lineWeights(h, k)}
}

// lineWeights returns weights for 0..k marks in a window, the k case
// pinned to CompleteLine.
func lineWeights(h Heuristics, k int) []float64 {
	w := make([]float64, k+1)
	for n := 1; n <= k; n++ {
		switch {
		case n < len(h.LineWeights):
			w[n] = h.LineWeights[n]
		default:
			w[n] = w[n-1] * h.GrowthFactor
		}
	}
	w[k] = h.CompleteLine
	return w
}

func (e *Evaluator) WinLength() int {
	return e.k
}

func (e *Evaluator) openness(openEnds int) float64 {
	switch openEnds {
	case 2:
		return e.h.OpenBoth
	case 1:
		return e.h.OpenOne
	default:
		return e.h.Closed
	}
}

// Evaluate scores s from perspective's point of view: pure K-windows
// weighted by openness, fork pressure, and the swaps on the board that
// win or lose on the spot.
func (e *Evaluator) Evaluate(s *State, perspective Mark) float64 {
	b := s.Board
	k := e.k
	opp := perspective.Opponent()
	score := 0.0
	myThreats, oppThreats := 0, 0

	for r := 0; r < b.rows; r++ {
		for c := 0; c < b.cols; c++ {
			for _, d := range lineDirections {
				end := Pos{r + (k-1)*d[0], c + (k-1)*d[1]}
				if !b.InBounds(end) {
					continue
				}
				mine, theirs, empty := 0, 0, 0
				for t := 0; t < k; t++ {
					switch b.cells[(r+t*d[0])*b.cols+c+t*d[1]] {
					case perspective:
						mine++
					case opp:
						theirs++
					default:
						empty++
					}
				}
				if mine > 0 && theirs > 0 {
					continue
				}
				openEnds := 0
				if b.IsEmpty(Pos{r - d[0], c - d[1]}) {
					openEnds++
				}
				if b.IsEmpty(Pos{end.Row + d[0], end.Col + d[1]}) {
					openEnds++
				}
				threat := 1
				if openEnds == 2 {
					threat = 2
				}
				mul := e.openness(openEnds)
				switch {
				case mine > 0:
					score += e.weights[mine] * mul
					if mine == k-1 && empty == 1 {
						myThreats += threat
					}
				case theirs > 0:
					score -= e.weights[theirs] * mul
					if theirs == k-1 && empty == 1 {
						oppThreats += threat
					}
				}
			}
		}
	}

	if myThreats >= 2 {
		score += e.h.ForkBonus
	}
	if oppThreats >= 2 {
		score -= e.h.ForkPenalty
	}

	myWinSwaps, giftSwaps := 0, 0
	for _, m := range s.LegalSwaps() {
		moverWins, gifts := SwapOutcome(s, m.A, m.B, perspective)
		if moverWins {
			myWinSwaps++
		}
		if gifts {
			giftSwaps++
		}
		if theyWin, _ := SwapOutcome(s, m.A, m.B, opp); theyWin {
			giftSwaps++
		}
	}
	score += float64(myWinSwaps) * e.h.SwapWinBonus
	score -= float64(giftSwaps) * e.h.SwapGiftPenalty
	return score
}
