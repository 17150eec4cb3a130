package models

import (
	"github.com/invopop/jsonschema"

	"github.com/claude/wodgen/internal/schema"
)

// WorkoutSchema is the single declaration of the Workout document. Both the
// validator and the generator-facing JSON Schema are derived from it.
var WorkoutSchema = buildWorkoutSchema()

// BlockSchema is the tagged union of block variants inside WorkoutSchema.
var BlockSchema *schema.TaggedUnionNode

func enumOf[T ~string](values ...T) *schema.EnumNode {
	s := make([]string, len(values))
	for i, v := range values {
		s[i] = string(v)
	}
	return schema.Enum(s...)
}

func buildWorkoutSchema() *schema.ObjectNode {
	duration := schema.String().
		Pattern(DurationPattern, "Use ISO-8601 duration, e.g., PT20S, PT5M, PT1H30M").
		Meta("ISO-8601 Duration",
			"Duration in ISO-8601 (PT#H#M#S). Examples: PT20S, PT5M, PT1H30M",
			"PT20S", "PT5M", "PT1H30M")
	positive := schema.Integer().Min(1)
	stringList := schema.Array(schema.String())

	load := schema.Object("Load",
		"Weight prescription either as absolute load with unit or a percent of 1RM/BW",
		schema.Required("value", schema.Number().Min(0), "Numeric load value (non-negative)"),
		schema.Optional("unit", enumOf(LoadPounds, LoadKilograms), "Load unit: pounds or kilograms; null when percent_of is used"),
		schema.Optional("percent_of", enumOf(PercentOfOneRepMax, PercentOfBodyweight),
			"If present, value is interpreted as a percentage of 1RM or bodyweight; null otherwise"),
	)

	movement := schema.Object("Movement",
		"A single exercise prescription. Provide reps, distance(+unit), calories, time, or load as appropriate (unused fields are null).",
		schema.Required("name", schema.String(), "Exercise name (e.g., Pull-up, Row, Air Squat)"),
		schema.Optional("reps", positive, "Repetitions for this movement; null if not applicable"),
		schema.Optional("distance", schema.Number().Min(0), "Distance value; null if not applicable"),
		schema.Optional("distance_unit", enumOf(DistanceMeters, DistanceKilometers, DistanceMiles),
			"Unit for distance (meters, kilometers, miles); null if not applicable"),
		schema.Optional("calories", positive, "Calories for erg work; null if not applicable"),
		schema.Optional("time", duration, "Time budget (ISO-8601); null if not applicable"),
		schema.Optional("load", load, "Load prescription; null if bodyweight / not applicable"),
		schema.Optional("tempo", schema.String(), "Tempo notation, e.g., 30X0; null if not applicable"),
		schema.Optional("equipment", stringList, "Equipment used; null if not applicable"),
		schema.Optional("notes", schema.String(), "Coaching or scaling notes; null if not applicable"),
		schema.Optional("scaling", stringList, "Alternative versions for scaling; null if none"),
	)
	movements := schema.Array(movement).Min(1)

	score := schema.Object("Score",
		"Scoring metadata for a block (domain, tie-break/target/cap are null when not applicable).",
		schema.Required("type", enumOf(ScoreReps, ScoreRounds, ScoreTime, ScoreLoad, ScoreCalories, ScoreDistance),
			"Primary scoring domain for the block"),
		schema.Optional("tie_break", schema.String(), "Tie-break rule; null if not applicable"),
		schema.Optional("target", schema.Number(), "Target number (e.g., desired rounds/reps/time); null if none"),
		schema.Optional("cap", duration, "Time cap for the block (ISO-8601); null if no cap"),
	)

	base := schema.Object("BlockBase", "Fields common to all workout blocks",
		schema.Required("title", schema.String(), "Human-friendly label for this block"),
		schema.Optional("notes", schema.String(), "Notes for this block; null if not applicable"),
		schema.Optional("score", score, "Scoring; include when the block should be scored, null otherwise"),
	)

	amrap := base.Extend("AMRAP", "Complete as many rounds/reps as possible within the duration.",
		schema.Required("duration", duration, "Total AMRAP duration"),
		schema.Default("repeat", positive, 1, "Repeat count (usually 1)"),
		schema.Required("sequence", movements, "Ordered list of movements per round"),
	)

	forTime := base.Extend("ForTime",
		"Complete prescribed work as fast as possible. Time cap is optional (null if not provided).",
		schema.Required("rounds", positive, "Number of rounds of the sequence (use 1 for chipper-style)"),
		schema.Optional("time_cap", duration, "Time cap for the workout; null if no cap"),
		schema.Required("sequence", movements, "Ordered list of movements to complete"),
	)

	slot := schema.Object("EMOMSlot", "",
		schema.Required("minute_mod", positive,
			"1-based minute selector (e.g., 1 for minute 1, 2 for minute 2, or modular pattern like every 3rd minute)"),
		schema.Required("work", movements, "Movements to do on those minutes"),
	)
	emom := base.Extend("EMOM", "Perform prescribed work at specified minutes within a total duration.",
		schema.Required("minutes", positive, "Total EMOM length in minutes"),
		schema.Required("slots", schema.Array(slot).Min(1),
			"Map minute patterns to work. Example: [{ minute_mod:1, work:[...] }, { minute_mod:2, work:[...] }]"),
	)

	line := schema.Object("SetScheme", "",
		schema.Required("sets", positive, "Number of sets in this line item"),
		schema.Required("reps", positive, "Reps per set in this line item"),
		schema.Optional("load", load, "Load prescription per line item; null if not specified"),
		schema.Optional("rpe", schema.Number().Min(1).Max(10), "RPE (1-10); null if not specified"),
		schema.Optional("rest", duration, "Rest between sets (ISO-8601); null if not specified"),
	)
	sets := base.Extend("Sets",
		"Strength block using sets x reps, optionally with load/RPE/rest (null when not applicable).",
		schema.Required("exercise", schema.String(), "Primary exercise for the set scheme (single exercise name only)"),
		schema.Required("scheme", schema.Array(line).Min(1), "One or more set/reps prescriptions"),
	)

	superset := base.Extend("Superset", "Alternate two movements (A1/A2) for the given number of sets.",
		schema.Required("sets", positive, "Number of times the pair is performed"),
		schema.Optional("rest_between_sets", duration, "Rest after each A1/A2 pair (ISO-8601); null if not specified"),
		schema.Required("pair", schema.Array(movement).Len(2), "Exactly two movements: A1 then A2"),
	)

	BlockSchema = schema.TaggedUnion("type", "Block",
		"One workout part: amrap | for_time | emom | sets | superset",
		schema.Variant{Tag: string(BlockAMRAP), Object: amrap},
		schema.Variant{Tag: string(BlockForTime), Object: forTime},
		schema.Variant{Tag: string(BlockEMOM), Object: emom},
		schema.Variant{Tag: string(BlockSets), Object: sets},
		schema.Variant{Tag: string(BlockSuperset), Object: superset},
	)

	return schema.Object("Workout", "A complete workout composed of one or more blocks.",
		schema.Required("id", schema.String(), "Stable identifier for this workout"),
		schema.Required("title", schema.String(), "Display title (e.g., 'Cindy', 'Tuesday Metcon')"),
		schema.Optional("level", enumOf(LevelBeginner, LevelIntermediate, LevelAdvanced, LevelRx),
			"Suggested difficulty level; null if unspecified"),
		schema.Optional("tags", stringList, "Tags for search/filter; null if none"),
		schema.Optional("notes", schema.String(), "Coach notes; null if none"),
		schema.Required("blocks", schema.Array(BlockSchema).Min(1), "One or more blocks comprising the workout"),
		schema.Optional("warmup", stringList, "Warm-up suggestions; null if none"),
		schema.Optional("cooldown", stringList, "Cool-down suggestions; null if none"),
	)
}

// JSONSchema returns the generator-facing schema document for Workout.
// Each call returns a fresh value.
func JSONSchema() *jsonschema.Schema {
	return schema.Document(WorkoutSchema)
}
