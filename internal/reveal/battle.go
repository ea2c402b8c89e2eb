package reveal

import (
	"time"

	"github.com/ichi0g0y/name-picker/internal/anim"
	"github.com/ichi0g0y/name-picker/internal/lottery"
)

type BattlePhase string

const (
	BattleFighting BattlePhase = "fighting"
	BattleResolved BattlePhase = "resolved"
)

type Contestant struct {
	Name     string  `json:"name"`
	Lives    int     `json:"lives"`
	MaxLives int     `json:"max_lives"`
	Alive    bool    `json:"alive"`
	Opacity  float64 `json:"opacity"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Hit      bool    `json:"hit"`
}

type BattleFrame struct {
	Mode        Mode         `json:"mode"`
	Phase       BattlePhase  `json:"phase"`
	Contestants []Contestant `json:"contestants"`
	Remaining   int          `json:"remaining"`
	Winner      string       `json:"winner,omitempty"`
}

func (BattleFrame) FrameMode() Mode { return ModeBattle }

// Battle eliminates everyone except a pre-drawn survivor, one life at a time.
type Battle struct {
	base
	contestants  []Contestant
	eliminatedAt []time.Duration
	survivor     int
	alive        int
	nextHit      time.Duration
	hits         int
	phase        BattlePhase
}

func NewBattle(cfg Config) (*Battle, error) {
	b, err := newBase(cfg)
	if err != nil {
		return nil, err
	}

	survivor, err := lottery.SelectFromWeights(b.weights, b.cfg.RNG)
	if err != nil {
		return nil, err
	}

	n := len(b.cfg.Entries)
	pos := gridLayout(n, b.cfg.Tuning.Stage, 60)
	bt := &Battle{
		base:         b,
		contestants:  make([]Contestant, n),
		eliminatedAt: make([]time.Duration, n),
		survivor:     survivor,
		alive:        n,
		phase:        BattleFighting,
	}
	for i, e := range b.cfg.Entries {
		// 重み有効時は重みがそのままライフになる
		lives := b.weights[i]
		bt.contestants[i] = Contestant{
			Name:     e.Name,
			Lives:    lives,
			MaxLives: lives,
			Alive:    true,
			Opacity:  1,
			X:        pos[i].X,
			Y:        pos[i].Y,
		}
	}
	bt.nextHit = bt.interval()
	return bt, nil
}

// interval shrinks as more contestants are eliminated.
func (bt *Battle) interval() time.Duration {
	t := bt.cfg.Tuning.Battle
	n := len(bt.contestants)
	frac := float64(n-bt.alive) / float64(n)
	d := time.Duration(float64(t.BaseInterval) * (1 - t.Acceleration*frac))
	if d < t.MinInterval {
		d = t.MinInterval
	}
	return bt.scaled(d)
}

func (bt *Battle) Survivor() int { return bt.survivor }

func (bt *Battle) Hits() int { return bt.hits }

func (bt *Battle) Contestants() []Contestant { return bt.contestants }

// hit picks uniformly among alive contestants other than the survivor.
func (bt *Battle) hit(at time.Duration) {
	candidates := make([]int, 0, bt.alive)
	for i, c := range bt.contestants {
		if c.Alive && i != bt.survivor {
			candidates = append(candidates, i)
		}
	}
	if len(candidates) == 0 {
		return
	}

	idx := candidates[lottery.Intn(bt.cfg.RNG, len(candidates))]
	c := &bt.contestants[idx]
	c.Lives--
	c.Hit = true
	bt.hits++
	if c.Lives <= 0 {
		c.Lives = 0
		c.Alive = false
		bt.alive--
		bt.eliminatedAt[idx] = at
	}
}

func (bt *Battle) Tick(elapsed time.Duration) Step {
	if s, ok := bt.begin(elapsed); !ok {
		return s
	}

	for i := range bt.contestants {
		bt.contestants[i].Hit = false
	}
	for bt.alive > 1 && elapsed >= bt.nextHit {
		at := bt.nextHit
		bt.hit(at)
		bt.nextHit = at + bt.interval()
	}

	fade := bt.scaled(bt.cfg.Tuning.Battle.FadeDuration)
	for i := range bt.contestants {
		c := &bt.contestants[i]
		if !c.Alive {
			c.Opacity = 1 - anim.Progress(elapsed-bt.eliminatedAt[i], fade)
		}
	}

	frame := bt.frame("")
	if bt.alive > 1 {
		return Step{Frame: frame}
	}

	bt.phase = BattleResolved
	winner := bt.contestants[bt.survivor].Name
	return bt.settle(Step{Frame: bt.frame(winner), Winner: winner})
}

func (bt *Battle) frame(winner string) BattleFrame {
	cs := make([]Contestant, len(bt.contestants))
	copy(cs, bt.contestants)
	return BattleFrame{
		Mode:        ModeBattle,
		Phase:       bt.phase,
		Contestants: cs,
		Remaining:   bt.alive,
		Winner:      winner,
	}
}
