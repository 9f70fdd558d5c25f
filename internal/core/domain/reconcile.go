package domain

import "sort"

// Reconcile переводит displayed из последовательности from в последовательность to.
//
// Пустой displayed заменяется целиком (полная перезагрузка). Иначе записи из from,
// которых нет в to, удаляются, а записи из to, которых еще нет в displayed,
// вставляются на свою позицию по заголовку. Сравнение идет только по ID,
// порядок нетронутых записей не пересчитывается, но их данные берутся из to.
func Reconcile(displayed, from, to []Listing) ([]Listing, DisplayUpdate) {
	if len(displayed) == 0 {
		next := make([]Listing, len(to))
		copy(next, to)
		return next, DisplayUpdate{Kind: UpdateReload}
	}

	var removed []int
	drop := make(map[string]struct{})
	for _, rec := range from {
		if Contains(to, rec.ID) {
			continue
		}
		if pos := IndexOf(displayed, rec.ID); pos >= 0 {
			if _, seen := drop[rec.ID]; !seen {
				drop[rec.ID] = struct{}{}
				removed = append(removed, pos)
			}
		}
	}
	sort.Ints(removed)

	// Оставшиеся записи заменяются версией из to, позиции не меняются
	next := make([]Listing, 0, len(displayed)+len(to))
	for _, rec := range displayed {
		if _, ok := drop[rec.ID]; ok {
			continue
		}
		if idx := IndexOf(to, rec.ID); idx >= 0 {
			rec = to[idx]
		}
		next = append(next, rec)
	}

	c := newTitleCollator()
	var addedIDs []string
	for _, rec := range to {
		if Contains(next, rec.ID) {
			continue
		}
		next, _ = insertSorted(c, next, rec)
		addedIDs = append(addedIDs, rec.ID)
	}

	// Позиции вставок считаем по итоговой последовательности
	added := make([]int, 0, len(addedIDs))
	for _, id := range addedIDs {
		added = append(added, IndexOf(next, id))
	}
	sort.Ints(added)

	if len(removed) == 0 && len(added) == 0 {
		return next, DisplayUpdate{Kind: UpdateNone}
	}
	return next, DisplayUpdate{Kind: UpdateDiff, Removed: removed, Added: nilIfEmpty(added)}
}

func nilIfEmpty(s []int) []int {
	if len(s) == 0 {
		return nil
	}
	return s
}
