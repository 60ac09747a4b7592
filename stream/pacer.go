// SPDX-License-Identifier: EPL-2.0

package stream

// pacer turns line frames into client frames without drift. Each call
// returns the client frames that cover the next frames line frames,
// carrying the remainder to the next call.
type pacer struct {
	rate  int
	carry int
}

func (p *pacer) next(lineFrames, lineRate int) int {
	if p.rate == lineRate {
		return lineFrames
	}

	total := p.carry + lineFrames*p.rate
	p.carry = total % lineRate

	return total / lineRate
}
