package model

import "sort"

// IDSet 角色 ID 集合（收藏、已删除）。
// 按值语义使用：With/Without 返回新集合，不修改接收者。
type IDSet map[CharacterID]struct{}

// NewIDSet 由若干 ID 构造集合
func NewIDSet(ids ...CharacterID) IDSet {
	s := make(IDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IDSet) Has(id CharacterID) bool {
	_, ok := s[id]
	return ok
}

func (s IDSet) Len() int { return len(s) }

// Slice 返回排序后的 ID，数字 ID 按数值排序
func (s IDSet) Slice() []CharacterID {
	out := make([]CharacterID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return lessID(out[i], out[j]) })
	return out
}

// With 返回加入 id 后的新集合
func (s IDSet) With(id CharacterID) IDSet {
	out := make(IDSet, len(s)+1)
	for k := range s {
		out[k] = struct{}{}
	}
	out[id] = struct{}{}
	return out
}

// Without 返回移除 id 后的新集合
func (s IDSet) Without(id CharacterID) IDSet {
	out := make(IDSet, len(s))
	for k := range s {
		if k != id {
			out[k] = struct{}{}
		}
	}
	return out
}

// Difference 返回 s 中不在 other 里的 ID
func (s IDSet) Difference(other IDSet) IDSet {
	out := make(IDSet, len(s))
	for k := range s {
		if !other.Has(k) {
			out[k] = struct{}{}
		}
	}
	return out
}

// lessID 数字 ID 按长度再按字典序比较，等价于数值比较
func lessID(a, b CharacterID) bool {
	if isDigits(a) && isDigits(b) && len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func isDigits(id CharacterID) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
