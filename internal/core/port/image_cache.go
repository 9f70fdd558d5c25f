package port

// ImageCachePort - ограниченный по числу записей кэш изображений.
// Реализация должна быть безопасной для конкурентного доступа.
type ImageCachePort interface {
	Get(imageReference string) ([]byte, bool)
	Add(imageReference string, image []byte)
	Purge()
	Len() int
}
