// Package predictor implements the branch predictor: four selectable
// prediction modes (each a capability-set variant of predict/update) plus
// an optional return-address stack, queried at fetch and trained only at
// commit so that speculation never pollutes the tables.
package predictor

// Mode selects which prediction scheme is active.
type Mode uint8

const (
	ModeOff Mode = iota
	ModeOneBit
	ModeTwoBit
	ModeTwoLevel
)

// ParseMode converts a configuration string to a Mode.
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "off":
		return ModeOff, true
	case "onebit":
		return ModeOneBit, true
	case "twobit":
		return ModeTwoBit, true
	case "twolevel":
		return ModeTwoLevel, true
	default:
		return ModeOff, false
	}
}

// String renders the mode the way it is spelled in configuration.
func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeOneBit:
		return "onebit"
	case ModeTwoBit:
		return "twobit"
	case ModeTwoLevel:
		return "twolevel"
	default:
		return "unknown"
	}
}

const (
	tableBits = 10 // 1024-entry tables for onebit/twobit
	twoLevelHistoryBits = 8 // gshare history width h, per DESIGN.md's pinned answer
)

// Token captures everything a fetch-time prediction mutated speculatively
// (the global history register and any RAS push/pop), so that a squash
// can roll it back to the state immediately before the mispredicting
// branch was fetched.
type Token struct {
	valid bool

	preGHR uint32

	rasPushed bool
	rasPopped bool
	rasBefore []uint32
}

// mode is the capability set {predict, update} implemented once per
// prediction scheme. The global history register and RAS live in
// Predictor itself since only twolevel consults the GHR, but restore
// applies to both uniformly.
type mode interface {
	predict(pc uint32, ghr uint32) bool
	update(pc uint32, ghr uint32, taken bool)
	clone() mode
}

// Predictor is the pluggable branch predictor plus optional RAS.
type Predictor struct {
	mode Mode
	impl mode

	ghr uint32

	rasEnabled bool
	ras        []uint32
	rasDepth   int
}

// New builds a Predictor in the given mode, with the RAS enabled or not.
func New(m Mode, rasEnabled bool) *Predictor {
	p := &Predictor{mode: m, rasEnabled: rasEnabled, rasDepth: 16}
	switch m {
	case ModeOff:
		p.impl = &offMode{}
	case ModeOneBit:
		p.impl = newOneBitMode()
	case ModeTwoBit:
		p.impl = newTwoBitMode()
	case ModeTwoLevel:
		p.impl = newTwoLevelMode()
	default:
		p.impl = &offMode{}
	}
	return p
}

// PredictBranch returns whether a conditional branch at pc is predicted
// taken, and a token to later Update or Restore with. It speculatively
// advances the global history register (consumed only by twolevel).
func (p *Predictor) PredictBranch(pc uint32) (bool, Token) {
	token := Token{valid: true, preGHR: p.ghr}
	taken := p.impl.predict(pc, p.ghr)
	p.ghr = (p.ghr << 1)
	if taken {
		p.ghr |= 1
	}
	return taken, token
}

// PredictSequential returns a token for a non-branch fetch so the cycle
// history's bookkeeping is uniform; it does not touch predictor state.
func (p *Predictor) PredictSequential() Token {
	return Token{valid: true, preGHR: p.ghr}
}

// PushReturn records a call's return address on the RAS, if enabled.
// Returns the (possibly updated) token reflecting the push so a later
// Restore can undo it.
func (p *Predictor) PushReturn(tok Token, returnAddr uint32) Token {
	if !p.rasEnabled {
		return tok
	}
	tok.rasBefore = append([]uint32(nil), p.ras...)
	tok.rasPushed = true
	if len(p.ras) >= p.rasDepth {
		p.ras = p.ras[1:]
	}
	p.ras = append(p.ras, returnAddr)
	return tok
}

// PopReturn pops the RAS for a predicted return, if enabled and
// non-empty. Returns the predicted target, whether the RAS supplied one,
// and the token updated to reflect the pop.
func (p *Predictor) PopReturn(tok Token) (uint32, bool, Token) {
	if !p.rasEnabled || len(p.ras) == 0 {
		return 0, false, tok
	}
	tok.rasBefore = append([]uint32(nil), p.ras...)
	tok.rasPopped = true
	top := p.ras[len(p.ras)-1]
	p.ras = p.ras[:len(p.ras)-1]
	return top, true, tok
}

// Update trains the active mode's table with the resolved outcome. Must
// only be called at commit, never at resolution, per the core's
// correctness discipline: speculation never trains the predictor.
func (p *Predictor) Update(pc uint32, taken bool, token Token) {
	p.impl.update(pc, token.preGHR, taken)
}

// Restore rolls the GHR and RAS back to their state immediately before
// the squashed branch's fetch-time prediction, using that branch's token.
func (p *Predictor) Restore(token Token) {
	if !token.valid {
		return
	}
	p.ghr = token.preGHR
	if token.rasPushed || token.rasPopped {
		p.ras = append([]uint32(nil), token.rasBefore...)
	}
}

// RASEnabled reports whether the return-address stack is active.
func (p *Predictor) RASEnabled() bool { return p.rasEnabled }

// Clone returns an independent deep copy, used for cycle snapshotting.
func (p *Predictor) Clone() *Predictor {
	c := &Predictor{
		mode: p.mode, impl: p.impl.clone(), ghr: p.ghr,
		rasEnabled: p.rasEnabled, rasDepth: p.rasDepth,
		ras: append([]uint32(nil), p.ras...),
	}
	return c
}
