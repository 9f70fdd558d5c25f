package domain

import (
	"fmt"
	"strings"
)

// DisplayState - какой набор объявлений сейчас показывается.
type DisplayState string

const (
	StateAll            DisplayState = "all"
	StateFavorites      DisplayState = "favorites"
	StateEmptyFavorites DisplayState = "empty_favorites"
)

// Title - заголовок экрана для состояния.
func (s DisplayState) Title() string {
	switch s {
	case StateAll:
		return "Annonser"
	case StateFavorites:
		return "Favoritter"
	case StateEmptyFavorites:
		return "Tomt"
	default:
		return ""
	}
}

// ParseDisplayState разбирает состояние из строки запроса ("all", "favorites").
func ParseDisplayState(s string) (DisplayState, error) {
	switch DisplayState(strings.ToLower(strings.TrimSpace(s))) {
	case "", StateAll:
		return StateAll, nil
	case StateFavorites:
		return StateFavorites, nil
	case StateEmptyFavorites:
		return StateEmptyFavorites, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDisplayState, s)
}

// UpdateKind - вид изменения отображаемой последовательности.
type UpdateKind string

const (
	UpdateNone   UpdateKind = "none"
	UpdateReload UpdateKind = "reload"
	UpdateDiff   UpdateKind = "diff"
	UpdateItem   UpdateKind = "item"
)

// DisplayUpdate описывает, как слою представления перейти к новой последовательности.
// Removed - позиции в прежней последовательности, Added - позиции в новой.
type DisplayUpdate struct {
	Kind    UpdateKind `json:"kind"`
	Removed []int      `json:"removed,omitempty"`
	Added   []int      `json:"added,omitempty"`
	Item    int        `json:"item,omitempty"`
}

// IsEmpty - true, если перерисовывать нечего.
func (u DisplayUpdate) IsEmpty() bool {
	return u.Kind == "" || u.Kind == UpdateNone
}
