package store

import "github.com/loomwright/grue/types"

// checkInvariants verifies spec.md §3's nine invariants against a folded
// scratch. Returns the first violation found; nil if all hold.
func checkInvariants(s *scratch) *ApplyError {
	if err := checkNoParentCycles(s); err != nil {
		return err
	}
	if err := checkContainerSurfaceFlags(s); err != nil {
		return err
	}
	if err := checkWornImpliesPlayer(s); err != nil {
		return err
	}
	if err := checkLockOpenExclusive(s); err != nil {
		return err
	}
	if err := checkContainerCapacity(s); err != nil {
		return err
	}
	if err := checkPlayerCapacity(s); err != nil {
		return err
	}
	if err := checkPronounTargetsExist(s); err != nil {
		return err
	}
	if err := checkReferencedEntitiesExist(s); err != nil {
		return err
	}
	return nil
}

// invariant 9: every LocationID/ItemID referenced in an attribute value
// (item-set attributes, or a Parent-typed attribute) exists.
func checkReferencedEntitiesExist(s *scratch) *ApplyError {
	check := func(attrs map[types.AttributeID]types.AttrValue, owner string) *ApplyError {
		for attrID, v := range attrs {
			switch v.Kind {
			case types.AttrKindItemIDSet:
				for id := range v.ItemSet {
					if !s.itemExists(id) {
						return &ApplyError{Kind: ErrInvariantViolated, Invariant: InvariantReferencedEntitiesExist,
							Detail: owner + "." + string(attrID) + " references nonexistent item " + string(id)}
					}
				}
			case types.AttrKindParent:
				if !s.parentExists(v.ParentVal) {
					return &ApplyError{Kind: ErrInvariantViolated, Invariant: InvariantReferencedEntitiesExist,
						Detail: owner + "." + string(attrID) + " references a nonexistent parent"}
				}
			}
		}
		return nil
	}
	for id, it := range s.items {
		if err := check(it.Attributes, string(id)); err != nil {
			return err
		}
	}
	for id, loc := range s.locations {
		if err := check(loc.Attributes, string(id)); err != nil {
			return err
		}
	}
	return nil
}

// checkTouchedMonotonic compares a scratch against the prior live state —
// called separately by Apply since it needs the "before" snapshot, not
// just the folded result.
func checkTouchedMonotonic(before map[types.ItemID]types.Item, after map[types.ItemID]types.Item) *ApplyError {
	for id, prev := range before {
		prevTouched := attrBool(prev.Attributes, types.AttrIsTouched)
		if !prevTouched {
			continue
		}
		cur, ok := after[id]
		if !ok {
			continue
		}
		if !attrBool(cur.Attributes, types.AttrIsTouched) {
			return &ApplyError{
				Kind:      ErrInvariantViolated,
				Invariant: InvariantTouchedMonotonic,
				Detail:    "isTouched reverted to false on " + string(id),
			}
		}
	}
	return nil
}

// invariant 1: every item has exactly one parent (guaranteed by the
// struct shape) and no parent cycles.
func checkNoParentCycles(s *scratch) *ApplyError {
	for id := range s.items {
		seen := map[types.ItemID]struct{}{id: {}}
		cur := id
		for {
			it := s.items[cur]
			if it.Parent.Kind != types.ParentItem {
				break
			}
			next := it.Parent.Item
			if _, ok := seen[next]; ok {
				return &ApplyError{
					Kind:      ErrInvariantViolated,
					Invariant: InvariantSingleParent,
					Detail:    "containment cycle involving " + string(id),
				}
			}
			seen[next] = struct{}{}
			cur = next
		}
	}
	return nil
}

// invariant 2: an item whose parent is a container has that container's
// isContainer set; similarly for surfaces (a surface parent must have
// isSurface set). A parent item must be a container or a surface.
func checkContainerSurfaceFlags(s *scratch) *ApplyError {
	for id, it := range s.items {
		if it.Parent.Kind != types.ParentItem {
			continue
		}
		parent, ok := s.items[it.Parent.Item]
		if !ok {
			continue
		}
		isContainer := attrBool(parent.Attributes, types.AttrIsContainer)
		isSurface := attrBool(parent.Attributes, types.AttrIsSurface)
		if !isContainer && !isSurface {
			return &ApplyError{
				Kind:      ErrInvariantViolated,
				Invariant: InvariantContainerSurfaceFlag,
				Detail:    string(id) + "'s parent " + string(it.Parent.Item) + " is neither container nor surface",
			}
		}
	}
	return nil
}

// invariant 3: isWorn implies parent is Player and isWearable.
func checkWornImpliesPlayer(s *scratch) *ApplyError {
	for id, it := range s.items {
		if !attrBool(it.Attributes, types.AttrIsWorn) {
			continue
		}
		if it.Parent.Kind != types.ParentPlayer {
			return &ApplyError{Kind: ErrInvariantViolated, Invariant: InvariantWornImpliesPlayer,
				Detail: string(id) + " is worn but not carried by the player"}
		}
		if !attrBool(it.Attributes, types.AttrIsWearable) {
			return &ApplyError{Kind: ErrInvariantViolated, Invariant: InvariantWornImpliesPlayer,
				Detail: string(id) + " is worn but not wearable"}
		}
	}
	return nil
}

// invariant 4: isLocked implies isLockable; isOpen and isLocked are
// mutually exclusive.
func checkLockOpenExclusive(s *scratch) *ApplyError {
	for id, it := range s.items {
		locked := attrBool(it.Attributes, types.AttrIsLocked)
		open := attrBool(it.Attributes, types.AttrIsOpen)
		if locked && !attrBool(it.Attributes, types.AttrIsLockable) {
			return &ApplyError{Kind: ErrInvariantViolated, Invariant: InvariantLockOpenExclusive,
				Detail: string(id) + " is locked but not lockable"}
		}
		if locked && open {
			return &ApplyError{Kind: ErrInvariantViolated, Invariant: InvariantLockOpenExclusive,
				Detail: string(id) + " is both open and locked"}
		}
	}
	return nil
}

// invariant 6: sum of size of items parented to a container <= capacity.
func checkContainerCapacity(s *scratch) *ApplyError {
	totals := map[types.ItemID]int{}
	for _, it := range s.items {
		if it.Parent.Kind != types.ParentItem {
			continue
		}
		totals[it.Parent.Item] += attrInt(it.Attributes, types.AttrSize)
	}
	for containerID, total := range totals {
		container, ok := s.items[containerID]
		if !ok {
			continue
		}
		cap, hasCap := container.Attributes[types.AttrCapacity]
		if !hasCap {
			continue
		}
		if total > cap.Int {
			return &ApplyError{Kind: ErrInvariantViolated, Invariant: InvariantContainerCapacity,
				Detail: string(containerID) + " over capacity"}
		}
	}
	return nil
}

// invariant 7: sum of size of items carried by the player <= carrying capacity.
func checkPlayerCapacity(s *scratch) *ApplyError {
	if s.player.CarryingCapacity <= 0 {
		return nil // uncapped
	}
	total := 0
	for _, it := range s.items {
		if it.Parent.Kind == types.ParentPlayer {
			total += attrInt(it.Attributes, types.AttrSize)
		}
	}
	if total > s.player.CarryingCapacity {
		return &ApplyError{Kind: ErrInvariantViolated, Invariant: InvariantPlayerCapacity,
			Detail: "player over carrying capacity"}
	}
	return nil
}

// invariant 8: pronoun targets reference existing items.
func checkPronounTargetsExist(s *scratch) *ApplyError {
	for p, targets := range s.pronouns {
		for id := range targets {
			if !s.itemExists(id) {
				return &ApplyError{Kind: ErrInvariantViolated, Invariant: InvariantPronounTargetsExist,
					Detail: "pronoun " + string(p) + " targets nonexistent item " + string(id)}
			}
		}
	}
	return nil
}

func attrBool(attrs map[types.AttributeID]types.AttrValue, id types.AttributeID) bool {
	v, ok := attrs[id]
	return ok && v.Kind == types.AttrKindBool && v.Bool
}

func attrInt(attrs map[types.AttributeID]types.AttrValue, id types.AttributeID) int {
	v, ok := attrs[id]
	if !ok || v.Kind != types.AttrKindInt {
		return 0
	}
	return v.Int
}
