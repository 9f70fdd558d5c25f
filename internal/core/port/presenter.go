package port

import "classifieds-browser/internal/core/domain"

// PresenterPort - слой представления, который получает изменения отображаемого списка.
// Вызовы приходят уже после обновления состояния сессии.
type PresenterPort interface {
	StateChanged(state domain.DisplayState)
	LoadingChanged(loading bool)
	DisplayChanged(update domain.DisplayUpdate, displayed []domain.Listing)
}
