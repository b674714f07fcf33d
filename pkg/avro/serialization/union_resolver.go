package serialization

import (
	"github.com/Sokol111/avrocodec/pkg/avro/generic"
	"github.com/Sokol111/avrocodec/pkg/avro/typecheck"
	"github.com/Sokol111/avrocodec/pkg/host"

	hambavro "github.com/hamba/avro/v2"
)

type branchKey struct {
	avroType hambavro.Type
	logical  hambavro.LogicalType
}

type unionBranches map[branchKey]int

func branchesOf(union *hambavro.UnionSchema) unionBranches {
	branches := make(unionBranches, len(union.Types()))
	for i, t := range union.Types() {
		s := generic.Resolve(t)
		avroType := s.Type()
		if avroType == hambavro.Error {
			avroType = hambavro.Record
		}
		key := branchKey{avroType: avroType, logical: generic.LogicalOf(s)}
		if _, ok := branches[key]; !ok {
			branches[key] = i
		}
	}
	return branches
}

func (b unionBranches) find(avroType hambavro.Type, logical hambavro.LogicalType) (int, bool) {
	i, ok := b[branchKey{avroType: avroType, logical: logical}]
	return i, ok
}

// first returns the first of the candidate branches present in the union. If
// more than one is present the choice is ambiguous.
func (b unionBranches) first(field string, candidates string, keys ...branchKey) (int, bool, error) {
	found, index := 0, -1
	for _, k := range keys {
		if i, ok := b[k]; ok {
			found++
			if index < 0 {
				index = i
			}
		}
	}
	if found > 1 {
		return 0, false, typecheck.AmbiguousBranch(field, candidates)
	}
	return index, index >= 0, nil
}

// InferUnionBranch picks the union branch a kdb+ value belongs to from its type.
// It fails when no branch fits or when several structurally compatible branches do.
func InferUnionBranch(field string, union *hambavro.UnionSchema, v host.Value) (int, error) {
	branches := branchesOf(union)
	t := typeOf(v)

	var (
		index int
		ok    bool
		err   error
	)
	switch t {
	case -host.KB:
		index, ok = branches.find(hambavro.Boolean, "")
	case host.KG:
		index, ok, err = branches.first(field, "both bytes and fixed",
			branchKey{hambavro.Bytes, ""}, branchKey{hambavro.Fixed, ""})
	case -host.KF:
		index, ok = branches.find(hambavro.Double, "")
	case -host.KS:
		index, ok = branches.find(hambavro.Enum, "")
	case -host.KE:
		index, ok = branches.find(hambavro.Float, "")
	case -host.KD:
		index, ok = branches.find(hambavro.Int, hambavro.Date)
	case -host.KT:
		index, ok = branches.find(hambavro.Int, hambavro.TimeMillis)
	case -host.KI:
		index, ok = branches.find(hambavro.Int, "")
	case -host.KN:
		index, ok = branches.find(hambavro.Long, hambavro.TimeMicros)
	case -host.KP:
		index, ok, err = branches.first(field, "both timestamp-millis and timestamp-micros",
			branchKey{hambavro.Long, hambavro.TimestampMillis}, branchKey{hambavro.Long, hambavro.TimestampMicros})
	case -host.KJ:
		index, ok = branches.find(hambavro.Long, "")
	case host.Identity:
		index, ok = branches.find(hambavro.Null, "")
	case -host.UU:
		index, ok = branches.find(hambavro.String, hambavro.UUID)
	case host.KC:
		index, ok = branches.find(hambavro.String, "")
	case host.XD:
		index, ok, err = branches.first(field, "both map and record",
			branchKey{hambavro.Map, ""}, branchKey{hambavro.Record, ""})
	case host.KB, host.KF, host.KS, host.KE, host.KD, host.KT, host.KN, host.KP, host.KJ, host.UU:
		index, ok = branches.find(hambavro.Array, "")
	case host.KI:
		index, ok, err = branches.first(field, "both array and fixed(duration)",
			branchKey{hambavro.Fixed, hambavro.Duration}, branchKey{hambavro.Array, ""})
	case host.Mixed:
		index, ok, err = branches.first(field, "two or more of bytes(decimal), fixed(decimal), union or array",
			branchKey{hambavro.Bytes, hambavro.Decimal}, branchKey{hambavro.Fixed, hambavro.Decimal},
			branchKey{hambavro.Union, ""}, branchKey{hambavro.Array, ""})
	}
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, typecheck.UnresolvedBranch(field, int(t))
	}
	return index, nil
}
