package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Level is a suggested difficulty tier.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelRx           Level = "rx"
)

// BlockType is the discriminator of a workout block.
type BlockType string

const (
	BlockAMRAP    BlockType = "amrap"
	BlockForTime  BlockType = "for_time"
	BlockEMOM     BlockType = "emom"
	BlockSets     BlockType = "sets"
	BlockSuperset BlockType = "superset"
)

// DistanceUnit is the unit of Movement.Distance.
type DistanceUnit string

const (
	DistanceMeters     DistanceUnit = "m"
	DistanceKilometers DistanceUnit = "km"
	DistanceMiles      DistanceUnit = "mi"
)

// LoadUnit is the unit of an absolute Load.
type LoadUnit string

const (
	LoadPounds    LoadUnit = "lb"
	LoadKilograms LoadUnit = "kg"
)

// PercentOf is the reference of a relative Load.
type PercentOf string

const (
	PercentOfOneRepMax  PercentOf = "1RM"
	PercentOfBodyweight PercentOf = "BW"
)

// ScoreType is the primary scoring domain of a block.
type ScoreType string

const (
	ScoreReps     ScoreType = "reps"
	ScoreRounds   ScoreType = "rounds"
	ScoreTime     ScoreType = "time"
	ScoreLoad     ScoreType = "load"
	ScoreCalories ScoreType = "calories"
	ScoreDistance ScoreType = "distance"
)

// Workout is a complete, validated workout document.
//
// Optional lists are pointers: nil means the key was absent, a pointer to an
// empty slice is an explicit [].
type Workout struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Level    *Level    `json:"level,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
	Notes    *string   `json:"notes,omitempty"`
	Blocks   Blocks    `json:"blocks"`
	Warmup   *[]string `json:"warmup,omitempty"`
	Cooldown *[]string `json:"cooldown,omitempty"`
}

// Load is a weight prescription, either absolute (Unit) or relative
// (PercentOf). Both may be set; nothing here forbids it.
type Load struct {
	Value     float64    `json:"value"`
	Unit      *LoadUnit  `json:"unit,omitempty"`
	PercentOf *PercentOf `json:"percent_of,omitempty"`
}

// Movement is one exercise prescription.
type Movement struct {
	Name         string        `json:"name"`
	Reps         *int          `json:"reps,omitempty"`
	Distance     *float64      `json:"distance,omitempty"`
	DistanceUnit *DistanceUnit `json:"distance_unit,omitempty"`
	Calories     *int          `json:"calories,omitempty"`
	Time         *Duration     `json:"time,omitempty"`
	Load         *Load         `json:"load,omitempty"`
	Tempo        *string       `json:"tempo,omitempty"`
	Equipment    *[]string     `json:"equipment,omitempty"`
	Notes        *string       `json:"notes,omitempty"`
	Scaling      *[]string     `json:"scaling,omitempty"`
}

// Score describes how a block is scored.
type Score struct {
	Type     ScoreType `json:"type"`
	TieBreak *string   `json:"tie_break,omitempty"`
	Target   *float64  `json:"target,omitempty"`
	Cap      *Duration `json:"cap,omitempty"`
}

// Block is one of AMRAP, ForTime, EMOM, Sets or Superset. The set is closed:
// only types in this package implement it.
type Block interface {
	Kind() BlockType
	Header() BlockHeader
	block()
}

// BlockHeader holds the fields every block carries.
type BlockHeader struct {
	Title string  `json:"title"`
	Notes *string `json:"notes,omitempty"`
	Score *Score  `json:"score,omitempty"`
}

func (h BlockHeader) Header() BlockHeader { return h }
func (BlockHeader) block()                {}

// AMRAP is as many rounds or reps as possible within Duration.
type AMRAP struct {
	BlockHeader
	Duration Duration   `json:"duration"`
	Repeat   int        `json:"repeat"`
	Sequence []Movement `json:"sequence"`
}

// ForTime is prescribed work completed as fast as possible.
type ForTime struct {
	BlockHeader
	Rounds   int        `json:"rounds"`
	TimeCap  *Duration  `json:"time_cap,omitempty"`
	Sequence []Movement `json:"sequence"`
}

// EMOM assigns work to minutes within a fixed window.
type EMOM struct {
	BlockHeader
	Minutes int        `json:"minutes"`
	Slots   []EMOMSlot `json:"slots"`
}

// EMOMSlot maps a 1-based minute selector to work.
type EMOMSlot struct {
	MinuteMod int        `json:"minute_mod"`
	Work      []Movement `json:"work"`
}

// Sets is a strength block of sets x reps for a single exercise.
type Sets struct {
	BlockHeader
	Exercise string      `json:"exercise"`
	Scheme   []SetScheme `json:"scheme"`
}

// SetScheme is one sets x reps line item.
type SetScheme struct {
	Sets int       `json:"sets"`
	Reps int       `json:"reps"`
	Load *Load     `json:"load,omitempty"`
	RPE  *float64  `json:"rpe,omitempty"`
	Rest *Duration `json:"rest,omitempty"`
}

// Superset alternates two movements (A1/A2) for a number of sets.
type Superset struct {
	BlockHeader
	Sets            int         `json:"sets"`
	RestBetweenSets *Duration   `json:"rest_between_sets,omitempty"`
	Pair            [2]Movement `json:"pair"`
}

func (AMRAP) Kind() BlockType    { return BlockAMRAP }
func (ForTime) Kind() BlockType  { return BlockForTime }
func (EMOM) Kind() BlockType     { return BlockEMOM }
func (Sets) Kind() BlockType     { return BlockSets }
func (Superset) Kind() BlockType { return BlockSuperset }

func (b AMRAP) MarshalJSON() ([]byte, error) {
	type plain AMRAP
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		plain
	}{BlockAMRAP, plain(b)})
}

func (b ForTime) MarshalJSON() ([]byte, error) {
	type plain ForTime
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		plain
	}{BlockForTime, plain(b)})
}

func (b EMOM) MarshalJSON() ([]byte, error) {
	type plain EMOM
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		plain
	}{BlockEMOM, plain(b)})
}

func (b Sets) MarshalJSON() ([]byte, error) {
	type plain Sets
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		plain
	}{BlockSets, plain(b)})
}

func (b Superset) MarshalJSON() ([]byte, error) {
	type plain Superset
	return json.Marshal(struct {
		Type BlockType `json:"type"`
		plain
	}{BlockSuperset, plain(b)})
}

// Blocks decodes a JSON array of tagged blocks into concrete variants.
type Blocks []Block

func (bs *Blocks) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(Blocks, 0, len(raws))
	for i, raw := range raws {
		b, err := decodeBlock(raw)
		if err != nil {
			return fmt.Errorf("blocks[%d]: %w", i, err)
		}
		out = append(out, b)
	}
	*bs = out
	return nil
}

func decodeBlock(raw json.RawMessage) (Block, error) {
	var probe struct {
		Type BlockType `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, err
	}
	switch probe.Type {
	case BlockAMRAP:
		return decodeInto[AMRAP](raw)
	case BlockForTime:
		return decodeInto[ForTime](raw)
	case BlockEMOM:
		return decodeInto[EMOM](raw)
	case BlockSets:
		return decodeInto[Sets](raw)
	case BlockSuperset:
		return decodeInto[Superset](raw)
	default:
		return nil, fmt.Errorf("unknown block type %q; expected %s", probe.Type, strings.Join(BlockSchema.Tags(), " | "))
	}
}

func decodeInto[T Block](raw json.RawMessage) (Block, error) {
	var b T
	if err := json.Unmarshal(raw, &b); err != nil {
		return nil, err
	}
	return b, nil
}
