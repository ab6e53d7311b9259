package domain

// Reinsert computes the full id sequence that results from moving id to the
// 1-based position pos within ids. Positions beyond the end clamp to the last
// valid position. It returns the new sequence and whether the move changes
// anything; a same-position move returns (nil, false). The second value is
// also false when id is not present in ids.
//
// Single-position moves are expressed as a full reordering on purpose: moving
// one project shifts the effective rank of every project between its old and
// new slots, so the caller must renumber the whole sequence atomically.
func Reinsert(ids []int64, id int64, pos int) ([]int64, bool) {
	cur := -1
	for i, v := range ids {
		if v == id {
			cur = i
			break
		}
	}
	if cur == -1 || pos < 1 {
		return nil, false
	}

	target := pos - 1
	if target > len(ids)-1 {
		target = len(ids) - 1
	}
	if target == cur {
		return nil, false
	}

	out := make([]int64, 0, len(ids))
	out = append(out, ids[:cur]...)
	out = append(out, ids[cur+1:]...)

	out = append(out, 0)
	copy(out[target+1:], out[target:])
	out[target] = id
	return out, true
}
