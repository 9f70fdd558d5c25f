package domain

import (
	"slices"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Listing - одно объявление из удаленного каталога.
// Идентичность объявления определяется только полем ID.
type Listing struct {
	ID             string `json:"id"`
	Title          string `json:"title"`
	Location       string `json:"location"`
	Price          *int   `json:"price,omitempty"`
	ImageReference string `json:"imageReference"`

	// Liked - флаг только для представления, в файл не сохраняется
	Liked bool `json:"-"`
}

// HasPrice сообщает, указана ли цена в объявлении.
func (l Listing) HasPrice() bool {
	return l.Price != nil
}

// SameAs сравнивает объявления по идентичности, остальные поля могут отличаться.
func (l Listing) SameAs(other Listing) bool {
	return l.ID == other.ID
}

// FilterPriced отбрасывает объявления без цены.
func FilterPriced(listings []Listing) []Listing {
	result := make([]Listing, 0, len(listings))
	for _, l := range listings {
		if l.HasPrice() {
			result = append(result, l)
		}
	}
	return result
}

// IndexOf возвращает позицию объявления с данным id или -1.
func IndexOf(listings []Listing, id string) int {
	return slices.IndexFunc(listings, func(l Listing) bool { return l.ID == id })
}

// Contains проверяет наличие объявления с данным id.
func Contains(listings []Listing, id string) bool {
	return IndexOf(listings, id) >= 0
}

// Каталог - FINN.no, заголовки сравниваются по норвежскому алфавиту (æ, ø, å в конце).
// В x/text нет норвежских правил, "nb" молча откатывается к корневым;
// датские правила дают тот же порядок.
var titleCollation = language.Danish

// collate.Collator не потокобезопасен, поэтому создаем новый на каждый вызов.
func newTitleCollator() *collate.Collator {
	return collate.New(titleCollation)
}

// SortByTitle возвращает копию, отсортированную по заголовку по возрастанию.
func SortByTitle(listings []Listing) []Listing {
	sorted := make([]Listing, len(listings))
	copy(sorted, listings)

	c := newTitleCollator()
	sort.SliceStable(sorted, func(i, j int) bool {
		return c.CompareString(sorted[i].Title, sorted[j].Title) < 0
	})
	return sorted
}

// InsertSorted вставляет объявление в отсортированную по заголовку последовательность
// и возвращает новую последовательность вместе с позицией вставки.
func InsertSorted(listings []Listing, l Listing) ([]Listing, int) {
	return insertSorted(newTitleCollator(), listings, l)
}

func insertSorted(c *collate.Collator, listings []Listing, l Listing) ([]Listing, int) {
	// Вставляем после равных заголовков, чтобы сохранить порядок поступления
	pos := sort.Search(len(listings), func(i int) bool {
		return c.CompareString(listings[i].Title, l.Title) > 0
	})
	return slices.Insert(listings, pos, l), pos
}
