package team

import (
	"errors"
	"math"
	"strings"
	"testing"

	apperrors "github.com/louisbranch/fusionarena/internal/platform/errors"
)

func knight() Unit {
	return Unit{Name: "knight", Pwr: 3, HP: 10}
}

func TestTeamValidate(t *testing.T) {
	burn := StatusDef{
		Name: "burn",
		Reactions: []Reaction{{
			Trigger: Trigger{Kind: TriggerTurnEnd},
			Effects: []Effect{{Kind: EffectDamage, Target: TargetCaster, Amount: Const(1)}},
		}},
	}

	tests := []struct {
		name    string
		team    Team
		wantErr string
	}{
		{
			name: "valid",
			team: Team{Name: "Red", Fusions: []Fusion{{Slot: 0, Units: []Unit{knight()}}}, Statuses: []StatusDef{burn}},
		},
		{
			name: "empty fusion allowed",
			team: Team{Name: "Red", Fusions: []Fusion{{Slot: 0}}},
		},
		{name: "missing name", team: Team{}, wantErr: "name is required"},
		{
			name:    "duplicate slot",
			team:    Team{Name: "Red", Fusions: []Fusion{{Slot: 1, Units: []Unit{knight()}}, {Slot: 1, Units: []Unit{knight()}}}},
			wantErr: "duplicate slot",
		},
		{
			name:    "zero hp",
			team:    Team{Name: "Red", Fusions: []Fusion{{Units: []Unit{{Name: "ghost", HP: 0}}}}},
			wantErr: "hp must be positive",
		},
		{
			name:    "duplicate status",
			team:    Team{Name: "Red", Statuses: []StatusDef{burn, burn}},
			wantErr: "duplicate status",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.team.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want %q", err, tt.wantErr)
			}
			if apperrors.CodeOf(err) != apperrors.CodeTeamInvalid {
				t.Fatalf("code = %s, want TEAM_INVALID", apperrors.CodeOf(err))
			}
		})
	}
}

func TestReactionValidate(t *testing.T) {
	tests := []struct {
		name     string
		reaction Reaction
		wantErr  bool
	}{
		{
			name: "turn end damage",
			reaction: Reaction{
				Trigger: Trigger{Kind: TriggerTurnEnd},
				Effects: []Effect{{Kind: EffectDamage, Target: TargetFrontEnemy, Amount: Const(2)}},
			},
		},
		{
			name: "stat modifier",
			reaction: Reaction{
				Trigger:  Trigger{Kind: TriggerUpdateStat, Var: "pwr"},
				Modifier: &Expr{Op: OpSum, Args: []Expr{{Op: OpValue}, {Op: OpAllyCount}}},
			},
		},
		{name: "unknown trigger", reaction: Reaction{Trigger: Trigger{Kind: "sunrise"}}, wantErr: true},
		{name: "update stat without var", reaction: Reaction{Trigger: Trigger{Kind: TriggerUpdateStat}, Modifier: Const(1)}, wantErr: true},
		{name: "modifier without value trigger", reaction: Reaction{Trigger: Trigger{Kind: TriggerTurnEnd}, Modifier: Const(1)}, wantErr: true},
		{name: "no effects", reaction: Reaction{Trigger: Trigger{Kind: TriggerBattleStart}}, wantErr: true},
		{
			name: "damage without amount",
			reaction: Reaction{
				Trigger: Trigger{Kind: TriggerBattleStart},
				Effects: []Effect{{Kind: EffectDamage}},
			},
			wantErr: true,
		},
		{
			name: "bad random range",
			reaction: Reaction{
				Trigger: Trigger{Kind: TriggerBattleStart},
				Effects: []Effect{{Kind: EffectHeal, Amount: &Expr{Op: OpRandomInt, Min: 3, Max: 1}}},
			},
			wantErr: true,
		},
		{
			name: "random range too wide",
			reaction: Reaction{
				Trigger: Trigger{Kind: TriggerTurnEnd},
				Effects: []Effect{{Kind: EffectDamage, Target: TargetRandomEnemy, Amount: &Expr{Op: OpRandomInt, Min: -1, Max: math.MaxInt64}}},
			},
			wantErr: true,
		},
		{
			name: "random range at draw limit",
			reaction: Reaction{
				Trigger: Trigger{Kind: TriggerTurnEnd},
				Effects: []Effect{{Kind: EffectDamage, Target: TargetRandomEnemy, Amount: &Expr{Op: OpRandomInt, Min: 1, Max: math.MaxInt64}}},
			},
		},
		{
			name: "unknown target",
			reaction: Reaction{
				Trigger: Trigger{Kind: TriggerBattleStart},
				Effects: []Effect{{Kind: EffectVFX, Name: "flash", Target: "moon"}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.reaction.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestInvalidTeamRendersUserMessage(t *testing.T) {
	err := Team{Name: "Blue", Fusions: []Fusion{{Units: []Unit{{HP: 1}}}}}.Validate()
	var domainErr *apperrors.Error
	if !errors.As(err, &domainErr) {
		t.Fatalf("err %T is not a domain error", err)
	}
	msg := apperrors.UserMessage("en-US", err)
	if !strings.HasPrefix(msg, "The team Blue cannot enter the arena: ") {
		t.Fatalf("message = %q", msg)
	}
}

func TestUnitCount(t *testing.T) {
	tm := Team{Name: "Red", Fusions: []Fusion{{Units: []Unit{knight(), knight()}}, {Slot: 1, Units: []Unit{knight()}}}}
	if got := tm.UnitCount(); got != 3 {
		t.Fatalf("units = %d, want 3", got)
	}
}

func TestRandomSpan(t *testing.T) {
	tests := []struct {
		name   string
		lo, hi int64
		want   int64
	}{
		{name: "single", lo: 4, hi: 4, want: 1},
		{name: "negative", lo: -3, hi: 2, want: 6},
		{name: "inverted", lo: 3, hi: 1, want: 0},
		{name: "widest drawable", lo: 0, hi: math.MaxInt64 - 1, want: math.MaxInt64},
		{name: "overflowing width", lo: -1, hi: math.MaxInt64, want: 0},
		{name: "full range", lo: math.MinInt64, hi: math.MaxInt64, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RandomSpan(tt.lo, tt.hi); got != tt.want {
				t.Fatalf("RandomSpan(%d, %d) = %d, want %d", tt.lo, tt.hi, got, tt.want)
			}
		})
	}
}
