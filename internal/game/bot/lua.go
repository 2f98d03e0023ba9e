package bot

import (
	"fmt"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/z26games/wof/internal/scripting"
)

// LuaPolicy delegates decisions to a sandboxed Lua script defining
//
//	function decide(view) → { action = "spin"|"letter"|"phrase",
//	                          letter = "e", phrase = "..." }
//
// The view table carries category, masked, guessed, wheelValue, vowelsOnly,
// and roundScore. Script errors and malformed decisions log a warning and
// fall back to the wrapped policy, so a broken script never stalls a game.
type LuaPolicy struct {
	mu        sync.Mutex
	state     *lua.LState
	instLimit int
	fallback  Policy
	logger    *zap.Logger
}

// NewLuaPolicy loads path into a fresh sandboxed VM and verifies it defines a
// global decide function. instLimit caps Lua opcodes per call; 0 uses the
// sandbox default.
//
// Precondition: fallback and logger must be non-nil.
func NewLuaPolicy(path string, instLimit int, fallback Policy, logger *zap.Logger) (*LuaPolicy, error) {
	L := scripting.NewSandboxedState(instLimit)
	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("bot: loading policy script %q: %w", path, err)
	}
	if _, ok := L.GetGlobal("decide").(*lua.LFunction); !ok {
		L.Close()
		return nil, fmt.Errorf("bot: policy script %q does not define decide()", path)
	}
	return &LuaPolicy{state: L, instLimit: instLimit, fallback: fallback, logger: logger}, nil
}

// Close releases the Lua VM.
func (p *LuaPolicy) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.Close()
}

// Decide implements Policy. The LState is single-threaded, so calls are
// serialized under the policy's mutex.
func (p *LuaPolicy) Decide(v View) Decision {
	p.mu.Lock()
	defer p.mu.Unlock()

	L := p.state
	// Each call gets its own opcode budget; a runaway call must not starve
	// the ones after it.
	scripting.ArmBudget(L, p.instLimit)

	tbl := L.NewTable()
	L.SetField(tbl, "category", lua.LString(v.Category))
	L.SetField(tbl, "masked", lua.LString(v.Masked))
	L.SetField(tbl, "wheelValue", lua.LNumber(v.WheelValue))
	L.SetField(tbl, "vowelsOnly", lua.LBool(v.VowelsOnly))
	L.SetField(tbl, "roundScore", lua.LNumber(v.RoundScore))
	guessed := L.NewTable()
	for _, l := range v.Guessed {
		guessed.Append(lua.LString(l))
	}
	L.SetField(tbl, "guessed", guessed)

	err := L.CallByParam(lua.P{
		Fn:      L.GetGlobal("decide"),
		NRet:    1,
		Protect: true,
	}, tbl)
	if err != nil {
		p.logger.Warn("bot policy script error, using fallback", zap.Error(err))
		return p.fallback.Decide(v)
	}
	ret := L.Get(-1)
	L.Pop(1)

	dec, ok := decisionFromLua(ret)
	if !ok {
		p.logger.Warn("bot policy script returned malformed decision, using fallback",
			zap.String("returned", ret.String()))
		return p.fallback.Decide(v)
	}
	return dec
}

// decisionFromLua maps a script return value onto a Decision.
func decisionFromLua(v lua.LValue) (Decision, bool) {
	tbl, ok := v.(*lua.LTable)
	if !ok {
		return Decision{}, false
	}
	action, _ := tbl.RawGetString("action").(lua.LString)
	switch strings.ToLower(string(action)) {
	case "spin":
		return Decision{Kind: DecideSpin}, true
	case "letter":
		letter, ok := tbl.RawGetString("letter").(lua.LString)
		if !ok || len(letter) == 0 {
			return Decision{}, false
		}
		return Decision{Kind: DecideLetter, Letter: []rune(strings.ToUpper(string(letter)))[0]}, true
	case "phrase":
		guess, ok := tbl.RawGetString("phrase").(lua.LString)
		if !ok {
			return Decision{}, false
		}
		return Decision{Kind: DecidePhrase, Phrase: string(guess)}, true
	}
	return Decision{}, false
}
