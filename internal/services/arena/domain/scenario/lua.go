package scenario

import (
	"fmt"
	"math"

	"github.com/Shopify/go-lua"
	"github.com/go-viper/mapstructure/v2"

	"github.com/louisbranch/fusionarena/internal/services/arena/domain/team"
)

const battleTypeName = "battle"

// luaScenario accumulates what a script declares before it is decoded.
type luaScenario struct {
	scenario Scenario
	err      error
}

// LoadLua runs a scenario script and validates what it returns. The
// script builds the scenario through the Battle global:
//
//	local b = Battle.new("duel")
//	b:seed(7)
//	b:left({ name = "Red", fusions = { ... } })
//	b:right({ name = "Blue", fusions = { ... } })
//	return b
func LoadLua(path string) (Scenario, error) {
	s, err := loadLua(path)
	if err != nil {
		return Scenario{}, err
	}
	if err := s.Validate(); err != nil {
		return Scenario{}, err
	}
	return s, nil
}

func loadLua(path string) (Scenario, error) {
	state := lua.NewState()
	lua.OpenLibraries(state)
	registerBattleType(state)
	registerExprHelpers(state)

	if err := lua.LoadFile(state, path, ""); err != nil {
		return Scenario{}, invalid("load lua: %v", err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return Scenario{}, invalid("run lua: %v", err)
	}
	if state.TypeOf(-1) != lua.TypeUserData {
		state.Pop(1)
		return Scenario{}, invalid("script must return a Battle")
	}
	ls, ok := state.ToUserData(-1).(*luaScenario)
	state.Pop(1)
	if !ok || ls == nil {
		return Scenario{}, invalid("script returned an invalid Battle")
	}
	if ls.err != nil {
		return Scenario{}, ls.err
	}
	return ls.scenario, nil
}

func registerBattleType(state *lua.State) {
	lua.NewMetaTable(state, battleTypeName)
	state.NewTable()
	lua.SetFunctions(state, battleMethods, 0)
	state.SetField(-2, "__index")
	state.Pop(1)

	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{{Name: "new", Function: battleNew}}, 0)
	state.SetGlobal("Battle")
}

var battleMethods = []lua.RegistryFunction{
	{Name: "seed", Function: battleSeed},
	{Name: "battle_id", Function: battleID},
	{Name: "max_turns", Function: battleMaxTurns},
	{Name: "animation", Function: battleAnimation},
	{Name: "left", Function: battleLeft},
	{Name: "right", Function: battleRight},
}

func battleNew(state *lua.State) int {
	name := lua.OptString(state, 1, "")
	state.PushUserData(&luaScenario{scenario: Scenario{Name: name}})
	lua.SetMetaTableNamed(state, battleTypeName)
	return 1
}

func checkBattle(state *lua.State) *luaScenario {
	if ls, ok := lua.CheckUserData(state, 1, battleTypeName).(*luaScenario); ok && ls != nil {
		return ls
	}
	lua.ArgumentError(state, 1, "battle expected")
	return nil
}

func battleSeed(state *lua.State) int {
	ls := checkBattle(state)
	seed := int64(lua.CheckInteger(state, 2))
	ls.scenario.Seed = &seed
	state.SetTop(1)
	return 1
}

func battleID(state *lua.State) int {
	ls := checkBattle(state)
	id := lua.CheckInteger(state, 2)
	if id < 0 {
		lua.ArgumentError(state, 2, "battle id must not be negative")
	}
	ls.scenario.BattleID = uint64(id)
	state.SetTop(1)
	return 1
}

func battleMaxTurns(state *lua.State) int {
	ls := checkBattle(state)
	ls.scenario.MaxTurns = lua.CheckInteger(state, 2)
	state.SetTop(1)
	return 1
}

func battleAnimation(state *lua.State) int {
	ls := checkBattle(state)
	name := lua.CheckString(state, 2)
	duration := lua.CheckNumber(state, 3)
	if ls.scenario.Animations == nil {
		ls.scenario.Animations = make(map[string]float64)
	}
	ls.scenario.Animations[name] = duration
	state.SetTop(1)
	return 1
}

func battleLeft(state *lua.State) int {
	ls := checkBattle(state)
	lua.CheckType(state, 2, lua.TypeTable)
	ls.setTeam(&ls.scenario.Left, tableToMap(state, 2), "left")
	state.SetTop(1)
	return 1
}

func battleRight(state *lua.State) int {
	ls := checkBattle(state)
	lua.CheckType(state, 2, lua.TypeTable)
	ls.setTeam(&ls.scenario.Right, tableToMap(state, 2), "right")
	state.SetTop(1)
	return 1
}

func (ls *luaScenario) setTeam(dst *team.Team, data map[string]any, side string) {
	var t team.Team
	if err := decodeMap(data, &t); err != nil {
		if ls.err == nil {
			ls.err = invalid("%s team: %v", side, err)
		}
		return
	}
	*dst = t
}

func decodeMap(data map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      out,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return fmt.Errorf("decoder: %w", err)
	}
	return dec.Decode(data)
}

// registerExprHelpers installs the Expr global, shorthands for the
// expression tables effects and modifiers take.
func registerExprHelpers(state *lua.State) {
	state.NewTable()
	lua.SetFunctions(state, []lua.RegistryFunction{
		{Name: "const", Function: exprConst},
		{Name: "var", Function: exprVar},
		{Name: "value", Function: exprOp(team.OpValue)},
		{Name: "ally_count", Function: exprOp(team.OpAllyCount)},
		{Name: "enemy_count", Function: exprOp(team.OpEnemyCount)},
		{Name: "random", Function: exprRandom},
		{Name: "sum", Function: exprNary(team.OpSum)},
		{Name: "mul", Function: exprNary(team.OpMul)},
	}, 0)
	state.SetGlobal("Expr")
}

func pushOp(state *lua.State, op team.ExprOp) {
	state.NewTable()
	state.PushString(string(op))
	state.SetField(-2, "op")
}

func exprConst(state *lua.State) int {
	value := lua.CheckInteger(state, 1)
	pushOp(state, team.OpConst)
	state.PushInteger(value)
	state.SetField(-2, "value")
	return 1
}

func exprVar(state *lua.State) int {
	name := lua.CheckString(state, 1)
	pushOp(state, team.OpVar)
	state.PushString(name)
	state.SetField(-2, "var")
	return 1
}

func exprRandom(state *lua.State) int {
	lo := lua.CheckInteger(state, 1)
	hi := lua.CheckInteger(state, 2)
	pushOp(state, team.OpRandomInt)
	state.PushInteger(lo)
	state.SetField(-2, "min")
	state.PushInteger(hi)
	state.SetField(-2, "max")
	return 1
}

func exprOp(op team.ExprOp) lua.Function {
	return func(state *lua.State) int {
		pushOp(state, op)
		return 1
	}
}

func exprNary(op team.ExprOp) lua.Function {
	return func(state *lua.State) int {
		n := state.Top()
		for i := 1; i <= n; i++ {
			lua.CheckType(state, i, lua.TypeTable)
		}
		pushOp(state, op)
		state.NewTable()
		for i := 1; i <= n; i++ {
			state.PushValue(i)
			state.RawSetInt(-2, i)
		}
		state.SetField(-2, "args")
		return 1
	}
}

func tableToMap(state *lua.State, index int) map[string]any {
	out := map[string]any{}
	if state.TypeOf(index) != lua.TypeTable {
		return out
	}
	index = state.AbsIndex(index)
	state.PushNil()
	for state.Next(index) {
		if state.TypeOf(-2) == lua.TypeString {
			key, _ := state.ToString(-2)
			out[key] = luaToGo(state, -1)
		}
		state.Pop(1)
	}
	return out
}

func luaToGo(state *lua.State, index int) any {
	switch state.TypeOf(index) {
	case lua.TypeString:
		s, _ := state.ToString(index)
		return s
	case lua.TypeNumber:
		n, _ := state.ToNumber(index)
		if n == math.Trunc(n) && math.Abs(n) < 1<<53 {
			return int64(n)
		}
		return n
	case lua.TypeBoolean:
		return state.ToBoolean(index)
	case lua.TypeTable:
		return tableToGo(state, index)
	}
	return nil
}

// tableToGo converts a sequence to []any and any other table to a map.
func tableToGo(state *lua.State, index int) any {
	index = state.AbsIndex(index)
	if n := state.RawLength(index); n > 0 {
		out := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			state.RawGetInt(index, i)
			out = append(out, luaToGo(state, -1))
			state.Pop(1)
		}
		return out
	}
	return tableToMap(state, index)
}
